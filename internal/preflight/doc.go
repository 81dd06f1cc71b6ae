// Package preflight provides readiness checks for the filesystem paths and
// external binaries sift depends on.
//
// The "sift doctor" command prints every result. The transfer command runs
// the same checks before touching any file and refuses to start when one
// fails.
package preflight
