// Package inventory scans the incoming root and assembles the item list the
// transfer stage consumes.
//
// A build walks the root for regular files, probes each with ffprobe, marks
// sample and duplicate variants, and renders a proposed name from the item's
// derived facts and tier. The result is written to the scan cache and read
// back, so a later run can reuse it without probing again.
package inventory
