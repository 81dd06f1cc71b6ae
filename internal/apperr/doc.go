// Package apperr defines the error markers shared by every sift package.
//
// Errors are classified by wrapping them with one of the sentinel markers via
// Wrap, which keeps both the marker and the underlying cause reachable through
// errors.Is. The CLI translates the marker into a process exit status with
// ExitCode, so packages never pick exit codes themselves.
package apperr
