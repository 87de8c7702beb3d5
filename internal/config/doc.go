// Package config loads and validates shelve configuration.
//
// Configuration lives in a TOML file (default ~/.config/shelve/config.toml).
// Load applies defaults, decodes the file over them, normalizes derived
// values, and validates the result so the rest of the program can trust
// every field.
package config
