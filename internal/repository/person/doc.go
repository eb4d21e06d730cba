// Package personrepo implements persistence for the person record set.
//
// Two backends share the Repository interface the watchdog service depends
// on: a JSON file on disk with atomic replacement, and a single Redis key.
// Both treat a missing or corrupt store as an empty record set.
package personrepo
