package watchdog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/safeguardhq/safeguard/internal/domain/person"
	"github.com/safeguardhq/safeguard/internal/logger"
	"github.com/safeguardhq/safeguard/internal/notifier"
	personrepo "github.com/safeguardhq/safeguard/internal/repository/person"
)

var (
	// ErrEmptyIdentifier is returned for a check-in that names nobody.
	ErrEmptyIdentifier = errors.New("identifier is required")
	// ErrNotFound is returned when a status lookup names an unknown person.
	ErrNotFound = errors.New("person not found")
	// ErrContactNotDeliverable is returned for a test alert without phone or credential.
	ErrContactNotDeliverable = errors.New("contact has no phone or delivery key")
)

// onlineHorizon is how recent a check-in must be for the status endpoint to
// report the device as online. Devices ping far more often than once per day.
const onlineHorizon = 10 * time.Minute

// Options tunes a watchdog service.
type Options struct {
	// DefaultWindow seeds the check-in window of newly created records.
	DefaultWindow domain.Window
	// CountryCallingCode resolves national trunk-prefixed contact numbers.
	CountryCallingCode string
	// Clock overrides the wall clock, letting tests simulate day rollover
	// and deadline crossing deterministically.
	Clock func() time.Time
}

// Service is the check-in evaluation and alert-dispatch engine.
//
// It runs one evaluation pass over all person records per RunPass call,
// dispatches at most one alert fan-out per person per calendar day, and
// treats the record store and the delivery provider as collaborators.
type Service struct {
	// repo handles persistent storage of the person record set.
	repo personrepo.Repository
	// sender delivers alert messages to contacts.
	sender notifier.Sender
	// defaultWindow is applied to records created on first check-in.
	defaultWindow domain.Window
	// countryCode is the default country calling code for phone normalization.
	countryCode string
	// now is the injected clock.
	now func() time.Time
	// storeMu serializes load-modify-save cycles against the store. Passes
	// and check-ins both write the whole record set back, so interleaving
	// them would let one side revert the other's mutations on records it
	// never touched.
	storeMu sync.Mutex
}

// NewService creates a watchdog service backed by the provided store and sender.
func NewService(repo personrepo.Repository, sender notifier.Sender, opts *Options) *Service {
	if opts == nil {
		opts = new(Options)
	}

	window := opts.DefaultWindow
	if window.Start == "" {
		window.Start = domain.FallbackWindowStart
	}

	if window.End == "" {
		window.End = domain.FallbackWindowEnd
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		repo:          repo,
		sender:        sender,
		defaultWindow: window,
		countryCode:   opts.CountryCallingCode,
		now:           clock,
	}
}

// CheckIn is one inbound liveness report with the person's current settings.
// Optional fields left nil or empty keep the stored values.
type CheckIn struct {
	// Identifier names the monitored person. When empty, a normalized
	// phone number may serve as the identity instead.
	Identifier string
	// Phone is the person's own phone number.
	Phone string
	// WindowStart and WindowEnd update the default daily window (HH:MM).
	WindowStart string
	WindowEnd   string
	// ActiveDays replaces the monitored weekday set when non-nil.
	ActiveDays []int
	// UseCustomSchedule toggles per-day overrides when non-nil.
	UseCustomSchedule *bool
	// Overrides replaces the per-day windows when non-nil.
	Overrides map[int]domain.Window
	// VacationMode toggles the monitoring exemption when non-nil.
	VacationMode *bool
	// Contacts replaces the alert fan-out list when non-nil.
	Contacts []domain.Contact
	// Battery is the reported battery percentage when non-nil. A pointer
	// keeps a genuine 0% report distinguishable from an absent field.
	Battery *int
}

// RecordCheckIn accepts a liveness report, creating the person record on
// first contact and refreshing its check-in timestamp and settings.
//
// The daily alarm flag and the evaluation date are deliberately left alone:
// a check-in arriving after today's alert was dispatched must not erase the
// fact that the miss occurred.
func (s *Service) RecordCheckIn(ctx context.Context, checkIn *CheckIn) (*domain.Person, error) {
	identifier := strings.TrimSpace(checkIn.Identifier)
	if identifier == "" {
		identifier = domain.NormalizePhone(checkIn.Phone, s.countryCode)
	}

	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	record := records[identifier]
	if record == nil {
		record = &domain.Person{
			Identifier:    identifier,
			DefaultWindow: s.defaultWindow,
			ActiveDays:    []int{0, 1, 2, 3, 4, 5, 6},
		}
		records[identifier] = record
	}

	record.LastCheckIn = s.now().Unix()
	s.applySettings(record, checkIn)

	if err = s.repo.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}

	logger.InfoKV(ctx, "Check-in accepted",
		"identifier", identifier, "battery", record.LastBattery)

	return record.Clone(), nil
}

// applySettings copies the optional configuration fields of a check-in onto the record.
func (s *Service) applySettings(record *domain.Person, checkIn *CheckIn) {
	if checkIn.WindowStart != "" {
		record.DefaultWindow.Start = checkIn.WindowStart
	}

	if checkIn.WindowEnd != "" {
		record.DefaultWindow.End = checkIn.WindowEnd
	}

	if checkIn.ActiveDays != nil {
		record.ActiveDays = append([]int(nil), checkIn.ActiveDays...)
	}

	if checkIn.UseCustomSchedule != nil {
		record.UseCustomSchedule = *checkIn.UseCustomSchedule
	}

	if checkIn.Overrides != nil {
		record.Overrides = make(map[int]domain.Window, len(checkIn.Overrides))
		for day, window := range checkIn.Overrides {
			record.Overrides[day] = window
		}
	}

	if checkIn.VacationMode != nil {
		record.VacationMode = *checkIn.VacationMode
	}

	if checkIn.Contacts != nil {
		record.Contacts = make([]domain.Contact, 0, len(checkIn.Contacts))
		for _, contact := range checkIn.Contacts {
			if contact.ID == "" {
				contact.ID = uuid.NewString()
			}

			record.Contacts = append(record.Contacts, contact)
		}
	}

	if checkIn.Battery != nil {
		record.LastBattery = *checkIn.Battery
	}

	if checkIn.Phone != "" {
		record.LastPhone = domain.NormalizePhone(checkIn.Phone, s.countryCode)
	}
}

// RunPass executes one evaluation pass over all person records and returns
// the number of persons alerted during the pass.
//
// The pass is idempotent under arbitrarily frequent invocation: the daily
// alarm flag is the sole guard against duplicate fan-outs, so running the
// pass twice in a row alerts on the first run and no-ops on the second.
func (s *Service) RunPass(ctx context.Context) (int, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	var (
		now    = s.now()
		today  = now.Format(domain.DateLayout)
		alerts = 0
	)

	for _, record := range records {
		if s.evaluate(ctx, record, now, today) {
			alerts++
		}
	}

	// Batch save; a failure loses this pass's mutations but never the process.
	// A repeated alert on the next pass beats a corrupted store.
	if err = s.repo.Save(ctx, records); err != nil {
		logger.ErrorKV(ctx, "Failed to persist evaluation results", "error", err)
	}

	if alerts > 0 {
		logger.InfoKV(ctx, "Evaluation pass complete", "alerts", alerts, "records", len(records))
	}

	return alerts, nil
}

// evaluate runs the per-person decision and reports whether an alert fan-out
// succeeded for this record.
func (s *Service) evaluate(ctx context.Context, record *domain.Person, now time.Time, today string) bool {
	// Day rollover re-arms the alarm flag before any skip logic, so the
	// invariant holds even for records skipped below.
	if record.LastCheckDate != today {
		record.AlarmSentToday = false
		record.LastCheckDate = today
	}

	decision := domain.ResolveSchedule(record, now)
	if decision.UsedFallback {
		logger.WarnKV(ctx, "Malformed check-in window, using default bounds",
			"identifier", record.Identifier)
	}

	if !decision.Active {
		return false
	}

	// A stale check-in from before today's window start does not count.
	checkedIn := record.LastCheckIn >= decision.Start.Unix()

	switch {
	case now.Before(decision.Deadline):
		// Still inside the grace window.
		return false
	case checkedIn:
		return false
	case record.AlarmSentToday:
		// Already alerted today.
		return false
	}

	delivered := s.dispatch(ctx, record, decision)
	if delivered == 0 {
		// No delivery succeeded (or no deliverable contacts): leave the
		// flag unarmed so the next pass retries today's alert.
		return false
	}

	record.AlarmSentToday = true

	return true
}

// dispatch fans the alert out to every deliverable contact and returns the
// number of successful deliveries. Contact failures are independent.
func (s *Service) dispatch(ctx context.Context, record *domain.Person, decision domain.Decision) int {
	text := alertText(record.Identifier, decision.Deadline)
	delivered := 0

	for i := range record.Contacts {
		contact := &record.Contacts[i]
		if !contact.Deliverable() {
			logger.DebugKV(ctx, "Skipping contact without phone or delivery key",
				"identifier", record.Identifier, "contact", contact.Name)

			continue
		}

		phone := domain.NormalizePhone(contact.Phone, s.countryCode)

		if err := s.sender.Send(ctx, phone, contact.DeliveryKey, text); err != nil {
			logger.WarnKV(ctx, "Alert delivery failed",
				"identifier", record.Identifier, "contact", contact.Name, "error", err)

			continue
		}

		delivered++
	}

	if delivered > 0 {
		logger.InfoKV(ctx, "Alert dispatched",
			"identifier", record.Identifier, "delivered", delivered,
			"deadline", decision.Deadline.Format("15:04"))
	}

	return delivered
}

// alertText builds the deterministic alert message for a missed deadline.
func alertText(identifier string, deadline time.Time) string {
	return fmt.Sprintf(
		"%s has not checked in before %s today. It is probably nothing, but it might be wise to reach out and make sure everything is alright.",
		identifier, deadline.Format("15:04"),
	)
}

// Status is a read-only liveness snapshot for one person.
type Status struct {
	// Identifier is the person's unique key.
	Identifier string `json:"identifier"`
	// LastCheckIn is the unix timestamp of the last accepted check-in.
	LastCheckIn int64 `json:"lastCheckIn"`
	// Online reports whether the device checked in recently.
	Online bool `json:"online"`
	// VacationMode mirrors the monitoring exemption.
	VacationMode bool `json:"vacationMode"`
	// AlarmSentToday mirrors the daily alert flag.
	AlarmSentToday bool `json:"alarmSentToday"`
	// LastBattery is the battery percentage of the last check-in.
	LastBattery int `json:"lastBattery"`
}

// GetStatus returns the liveness snapshot for the given identifier.
func (s *Service) GetStatus(ctx context.Context, identifier string) (*Status, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	record := records[identifier]
	if record == nil {
		return nil, ErrNotFound
	}

	return &Status{
		Identifier:     record.Identifier,
		LastCheckIn:    record.LastCheckIn,
		Online:         s.now().Unix()-record.LastCheckIn <= int64(onlineHorizon.Seconds()),
		VacationMode:   record.VacationMode,
		AlarmSentToday: record.AlarmSentToday,
		LastBattery:    record.LastBattery,
	}, nil
}

// Count returns the number of monitored person records.
func (s *Service) Count(ctx context.Context) (int, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	return len(records), nil
}

// TestAlert sends a one-off probe message to the given contact without
// touching any record state.
func (s *Service) TestAlert(ctx context.Context, contact *domain.Contact) error {
	if !contact.Deliverable() {
		return ErrContactNotDeliverable
	}

	phone := domain.NormalizePhone(contact.Phone, s.countryCode)

	if err := s.sender.Send(ctx, phone, contact.DeliveryKey, "Test message: the safeguard delivery channel works."); err != nil {
		return fmt.Errorf("send test alert: %w", err)
	}

	return nil
}
