// Package config loads, defaults, and validates the TOML configuration for
// the ingestion pipeline and its external collaborators.
package config
