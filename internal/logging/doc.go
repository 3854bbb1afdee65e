// Package logging builds the slog loggers used across the pipeline and
// provides the attribute helpers shared by every component.
package logging
