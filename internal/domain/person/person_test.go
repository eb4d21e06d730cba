package person

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestContactDeliverable verifies that contacts missing a phone or credential are inert.
func TestContactDeliverable(t *testing.T) {
	t.Parallel()

	require.False(t, (*Contact)(nil).Deliverable())
	require.False(t, (&Contact{Phone: "+31612345678"}).Deliverable())
	require.False(t, (&Contact{DeliveryKey: "123456"}).Deliverable())
	require.True(t, (&Contact{Phone: "+31612345678", DeliveryKey: "123456"}).Deliverable())
}

// TestPersonClone verifies that Clone deep-copies maps, slices and contacts.
func TestPersonClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Person)(nil).Clone())

	p := &Person{
		Identifier:        "henk",
		LastCheckIn:       1700000000,
		DefaultWindow:     Window{Start: "07:00", End: "08:30"},
		UseCustomSchedule: true,
		Overrides:         map[int]Window{5: {Start: "09:00", End: "10:30"}},
		ActiveDays:        []int{0, 1, 2, 3, 4},
		Contacts: []Contact{
			{ID: "c1", Name: "Anna", Phone: "+31612345678", DeliveryKey: "123456"},
		},
		LastCheckDate: "2026-03-03",
	}

	c := p.Clone()
	require.Equal(t, p, c)
	require.NotSame(t, p, c)

	// Mutating the clone must not touch the original.
	c.Overrides[5] = Window{Start: "11:00", End: "12:00"}
	c.ActiveDays[0] = 6
	c.Contacts[0].Phone = "changed"

	require.Equal(t, Window{Start: "09:00", End: "10:30"}, p.Overrides[5])
	require.Equal(t, 0, p.ActiveDays[0])
	require.Equal(t, "+31612345678", p.Contacts[0].Phone)
}

// TestMonitoredOn verifies active-day membership with the empty-list default.
func TestMonitoredOn(t *testing.T) {
	t.Parallel()

	// Empty list monitors every day.
	p := new(Person)
	for day := 0; day < 7; day++ {
		require.True(t, p.MonitoredOn(day))
	}

	p = &Person{ActiveDays: []int{0, 1, 2, 3, 4}}
	require.True(t, p.MonitoredOn(4))
	require.False(t, p.MonitoredOn(5))
	require.False(t, p.MonitoredOn(6))
}

// TestWeekdayIndex verifies the Monday-first 0..6 conversion.
func TestWeekdayIndex(t *testing.T) {
	t.Parallel()

	// 2026-03-02 is a Monday.
	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7; offset++ {
		require.Equal(t, offset, WeekdayIndex(monday.AddDate(0, 0, offset)))
	}
}
