// Package scancache persists the inventory produced by a scan so transfer
// runs can reuse it without probing every file again.
//
// The cache is a single JSON document keyed by a schema version and the
// incoming root it was built from. A mismatch in either is reported as a
// structured *Error rather than silently ignored.
package scancache
