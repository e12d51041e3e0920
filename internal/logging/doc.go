// Package logging assembles the structured slog loggers used across
// splitcast. It owns the console and JSON handlers, level and output
// plumbing, and context helpers that tag log lines with run IDs and stage
// names. Prefer these constructors over hand-rolled slog setup so every
// component emits data with the same shape.
package logging
