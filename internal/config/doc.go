// Package config provides environment-based configuration.
//
// Loads from environment variables with sensible defaults, validates the
// required ones, and parses durations and integers up front so the rest of
// the application never sees raw strings.
package config
