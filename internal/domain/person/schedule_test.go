package person

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 2026-03-04 is a Wednesday (weekday index 2).
var wednesday = time.Date(2026, 3, 4, 8, 31, 0, 0, time.UTC)

// TestResolveSchedule_Inactive verifies vacation mode and non-monitored days.
func TestResolveSchedule_Inactive(t *testing.T) {
	t.Parallel()

	// Vacation mode wins over everything.
	p := &Person{
		VacationMode:  true,
		DefaultWindow: Window{Start: "07:00", End: "08:30"},
	}
	require.False(t, ResolveSchedule(p, wednesday).Active)

	// Wednesday is not an active day.
	p = &Person{
		ActiveDays:    []int{5, 6},
		DefaultWindow: Window{Start: "07:00", End: "08:30"},
	}
	require.False(t, ResolveSchedule(p, wednesday).Active)
}

// TestResolveSchedule_DefaultWindow verifies window anchoring to the reference day.
func TestResolveSchedule_DefaultWindow(t *testing.T) {
	t.Parallel()

	p := &Person{DefaultWindow: Window{Start: "07:00", End: "08:30"}}

	d := ResolveSchedule(p, wednesday)
	require.True(t, d.Active)
	require.False(t, d.UsedFallback)
	require.Equal(t, time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC), d.Start)
	require.Equal(t, time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC), d.Deadline)
}

// TestResolveSchedule_CustomOverride verifies per-weekday windows are only used
// when custom scheduling is enabled and an override exists for the day.
func TestResolveSchedule_CustomOverride(t *testing.T) {
	t.Parallel()

	p := &Person{
		DefaultWindow:     Window{Start: "07:00", End: "08:30"},
		UseCustomSchedule: true,
		Overrides:         map[int]Window{2: {Start: "10:00", End: "11:15"}},
	}

	d := ResolveSchedule(p, wednesday)
	require.True(t, d.Active)
	require.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), d.Start)
	require.Equal(t, time.Date(2026, 3, 4, 11, 15, 0, 0, time.UTC), d.Deadline)

	// Custom flag off -> override ignored.
	p.UseCustomSchedule = false
	d = ResolveSchedule(p, wednesday)
	require.Equal(t, time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC), d.Start)

	// Custom flag on but no override for the day -> default window.
	p.UseCustomSchedule = true
	p.Overrides = map[int]Window{5: {Start: "10:00", End: "11:15"}}
	d = ResolveSchedule(p, wednesday)
	require.Equal(t, time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC), d.Start)
}

// TestResolveSchedule_MalformedFallback verifies corrupt clock strings fall
// back to the default bounds and keep the day evaluable.
func TestResolveSchedule_MalformedFallback(t *testing.T) {
	t.Parallel()

	cases := []Window{
		{Start: "seven", End: "08:30"},
		{Start: "07:00", End: "25:99"},
		{Start: "", End: ""},
		{Start: "07", End: "08:30"},
	}
	for _, window := range cases {
		d := ResolveSchedule(&Person{DefaultWindow: window}, wednesday)
		require.True(t, d.Active)
		require.True(t, d.UsedFallback)
		require.False(t, d.Start.IsZero())
		require.False(t, d.Deadline.IsZero())
	}

	// Only the corrupt bound is replaced.
	d := ResolveSchedule(&Person{DefaultWindow: Window{Start: "06:15", End: "garbage"}}, wednesday)
	require.True(t, d.UsedFallback)
	require.Equal(t, time.Date(2026, 3, 4, 6, 15, 0, 0, time.UTC), d.Start)
	require.Equal(t, time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC), d.Deadline)
}

// TestParseClock exercises boundary values directly.
func TestParseClock(t *testing.T) {
	t.Parallel()

	hour, minute, err := parseClock("23:59")
	require.NoError(t, err)
	require.Equal(t, 23, hour)
	require.Equal(t, 59, minute)

	_, _, err = parseClock("24:00")
	require.Error(t, err)

	_, _, err = parseClock("12:60")
	require.Error(t, err)

	_, _, err = parseClock("-1:30")
	require.Error(t, err)
}
