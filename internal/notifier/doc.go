// Package notifier defines the outbound message-delivery capability and its
// CallMeBot WhatsApp implementation.
//
// Delivery attempts are bounded by a timeout and each attempt is independent;
// the watchdog treats any returned error as a failed attempt for that
// contact only.
package notifier
