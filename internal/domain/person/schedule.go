package person

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default window bounds applied when a stored clock string cannot be parsed.
// A corrupt record falls back here instead of silently losing monitoring.
const (
	FallbackWindowStart = "07:00"
	FallbackWindowEnd   = "08:30"
)

// Decision is the outcome of resolving a person's schedule for one day.
type Decision struct {
	// Active reports whether the person is monitored at all on this day.
	Active bool
	// Start is the absolute window start on the reference day.
	Start time.Time
	// Deadline is the absolute window end on the reference day.
	Deadline time.Time
	// UsedFallback is set when a malformed window forced the default bounds.
	UsedFallback bool
}

// ResolveSchedule maps a person and a reference instant to the effective
// monitoring decision for that calendar day.
//
// Vacation mode and non-monitored weekdays yield an inactive decision.
// Otherwise the per-day override (when custom scheduling is on) or the
// default window is anchored to now's date. Malformed clock strings never
// fail the resolution; the fallback bounds are used and flagged instead.
func ResolveSchedule(p *Person, now time.Time) Decision {
	if p.VacationMode {
		return Decision{}
	}

	weekday := WeekdayIndex(now)
	if !p.MonitoredOn(weekday) {
		return Decision{}
	}

	window := p.DefaultWindow
	if p.UseCustomSchedule {
		if override, ok := p.Overrides[weekday]; ok {
			window = override
		}
	}

	decision := Decision{Active: true}

	startHour, startMinute, err := parseClock(window.Start)
	if err != nil {
		startHour, startMinute, _ = parseClock(FallbackWindowStart)
		decision.UsedFallback = true
	}

	endHour, endMinute, err := parseClock(window.End)
	if err != nil {
		endHour, endMinute, _ = parseClock(FallbackWindowEnd)
		decision.UsedFallback = true
	}

	decision.Start = atClock(now, startHour, startMinute)
	decision.Deadline = atClock(now, endHour, endMinute)

	return decision
}

// parseClock splits an HH:MM string into hour and minute components.
func parseClock(s string) (int, int, error) {
	hourPart, minutePart, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, fmt.Errorf("clock %q: missing separator", s)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, 0, fmt.Errorf("clock %q: %w", s, err)
	}

	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, 0, fmt.Errorf("clock %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q: out of range", s)
	}

	return hour, minute, nil
}

// atClock anchors an hour and minute to the calendar date of the reference instant.
func atClock(reference time.Time, hour, minute int) time.Time {
	return time.Date(
		reference.Year(), reference.Month(), reference.Day(),
		hour, minute, 0, 0,
		reference.Location(),
	)
}
