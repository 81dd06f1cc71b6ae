// Package logging assembles structured slog loggers and formatting helpers used
// across sift.
//
// It owns the console and JSON handlers, level and output plumbing (including
// the rotating log file under paths.log_dir), standardized field keys, and the
// progress sampler used by long copies. NewNop provides a silent logger for
// tests and wiring code that cannot fail.
package logging
