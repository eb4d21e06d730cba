package person

import "time"

// DateLayout is the calendar-date format stored in LastCheckDate.
const DateLayout = "2006-01-02"

// Window is a daily check-in interval expressed as HH:MM clock times.
type Window struct {
	// Start is the earliest time of day a check-in counts for the day.
	Start string `json:"startTime"`
	// End is the deadline by which a check-in must have been observed.
	End string `json:"endTime"`
}

// Contact is a single notification target with its own delivery credential.
type Contact struct {
	// ID uniquely identifies the contact within a person's list.
	ID string `json:"id"`
	// Name is a display name, echoed in logs only.
	Name string `json:"name"`
	// Phone is the contact's phone number in any user-supplied format.
	Phone string `json:"phone"`
	// DeliveryKey is the per-contact credential for the delivery provider.
	DeliveryKey string `json:"apiKey"`
}

// Deliverable reports whether the contact can actually be dispatched to.
// Contacts missing a phone or a credential are inert but not an error.
func (c *Contact) Deliverable() bool {
	return c != nil && c.Phone != "" && c.DeliveryKey != ""
}

// Clone returns a copy of the contact.
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}

	cloned := *c

	return &cloned
}

// Person is one monitored individual's full record.
type Person struct {
	// Identifier is the unique key of the record, never empty.
	Identifier string `json:"identifier"`
	// LastCheckIn is the unix timestamp of the most recent accepted check-in.
	LastCheckIn int64 `json:"lastCheckIn"`
	// DefaultWindow is the fallback daily check-in window.
	DefaultWindow Window `json:"defaultWindow"`
	// UseCustomSchedule switches window resolution to the per-day overrides.
	UseCustomSchedule bool `json:"useCustomSchedule"`
	// Overrides maps weekday indices (0=Monday .. 6=Sunday) to windows.
	Overrides map[int]Window `json:"schedules,omitempty"`
	// ActiveDays lists the weekday indices on which monitoring applies.
	// An empty list means every day is monitored.
	ActiveDays []int `json:"activeDays"`
	// VacationMode fully exempts the person from evaluation.
	VacationMode bool `json:"vacationMode"`
	// Contacts is the ordered alert fan-out list.
	Contacts []Contact `json:"contacts"`
	// AlarmSentToday is the sole idempotency guard for the daily alert.
	AlarmSentToday bool `json:"alarmSentToday"`
	// LastCheckDate is the calendar date (YYYY-MM-DD) of the last evaluation.
	LastCheckDate string `json:"lastCheckDate"`
	// LastBattery is the battery percentage reported with the last check-in.
	LastBattery int `json:"lastBattery,omitempty"`
	// LastPhone is the person's own phone number reported with the last check-in.
	LastPhone string `json:"lastPhone,omitempty"`
}

// Clone returns a deep copy of the person record to avoid leaking internal references.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}

	cloned := *p

	if p.Overrides != nil {
		cloned.Overrides = make(map[int]Window, len(p.Overrides))
		for day, window := range p.Overrides {
			cloned.Overrides[day] = window
		}
	}

	if p.ActiveDays != nil {
		cloned.ActiveDays = append([]int(nil), p.ActiveDays...)
	}

	if p.Contacts != nil {
		cloned.Contacts = append([]Contact(nil), p.Contacts...)
	}

	return &cloned
}

// MonitoredOn reports whether the given weekday index is an active monitoring day.
func (p *Person) MonitoredOn(weekday int) bool {
	if len(p.ActiveDays) == 0 {
		return true
	}

	for _, day := range p.ActiveDays {
		if day == weekday {
			return true
		}
	}

	return false
}

// WeekdayIndex converts a time.Time weekday into the Monday-first
// 0..6 index used by ActiveDays and Overrides.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
