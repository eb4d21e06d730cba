// Package config defines settings used by the safeguard binaries and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the HTTP listen address, the person store selection
// (JSON file or Redis), the delivery provider endpoint and the default
// check-in window.
package config
