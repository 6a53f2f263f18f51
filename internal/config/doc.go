// Package config loads, normalizes, and validates lectern configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LECTERN_COURSE_URL. The Config type centralizes every knob the pipeline and
// CLI need, so data directories, audio targets, and external binary names are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
