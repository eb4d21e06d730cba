// Package watchdog implements the check-in evaluation and alert-dispatch
// engine.
//
// One evaluation pass resolves each person's daily window, compares the last
// observed check-in against it, and fans an alert out to the person's
// contacts at most once per missed calendar day. The daily alarm flag is the
// sole idempotency guard, so passes may run arbitrarily often. The record
// store, the delivery provider and the clock are injected collaborators.
package watchdog
