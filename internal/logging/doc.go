// Package logging assembles the structured slog loggers used across shelve.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so transaction code automatically
// tags log lines with plan IDs and stage names. A no-op logger is provided
// for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
