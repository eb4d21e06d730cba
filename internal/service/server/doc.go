// Package server wires the safeguard HTTP server: configuration, the person
// store, the delivery provider, the watchdog engine, the Echo transport and
// the optional in-process evaluation trigger.
package server
