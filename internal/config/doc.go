// Package config defines the release pipeline settings and provides helpers
// to load, validate and save them in YAML format.
//
// Every field defaults to the historical fixed constant, so running without a
// config file behaves exactly like the original hard-coded procedure.
package config
