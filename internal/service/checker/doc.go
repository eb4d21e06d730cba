// Package checker implements the external evaluation trigger: a fixed
// interval loop that invokes the server's check-all endpoint and logs the
// returned alert summary.
package checker
