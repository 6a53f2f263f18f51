// Package logging builds the slog loggers used across lectern.
//
// Two handler formats are supported: a console handler that renders
// "TIMESTAMP LEVEL component: message k=v" lines for interactive use, and a
// JSON handler for machine consumption. Output always goes to stdout and is
// mirrored into <log_dir>/lectern.log when a log directory is configured.
package logging
