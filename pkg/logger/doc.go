// Package logger builds slog loggers with a consistent configuration
// surface: JSON or text output, level selection, static attributes, and a
// no-op logger for components that default to silence.
package logger
