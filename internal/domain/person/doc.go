// Package person contains core domain types for the watchdog business logic.
//
// It defines Person (one monitored individual's record), Contact and Window
// with Clone helpers to avoid leaking internal references, the schedule
// resolver that maps a person and a day to an effective check-in window,
// and phone number normalization.
package person
