// Package api implements the watchdog HTTP transport on Echo.
//
// It is a thin layer over a Service interface: check-in ingestion, the
// evaluation trigger, status snapshots, a delivery probe and a health
// endpoint. No decision logic lives here.
package api
