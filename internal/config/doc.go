// Package config loads, normalizes, and validates bobbin configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI commands need: external tool binaries, conversion encoder and
// quality settings, subtitle model selection, and speedup parameters.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
