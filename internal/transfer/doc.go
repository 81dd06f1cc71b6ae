// Package transfer moves inventory items into the outgoing tree.
//
// Each item lands at outgoing_root/<media type>/<tier folder>/<proposed
// name>. Before writing, the engine looks for the name (or a numbered
// duplicate of it) already present in the destination directory, or the
// whole tier folder in strict mode, and skips the item if one is found. A
// literal collision with a different file is either renamed to the first
// free "name (n).ext" or skipped. Every item yields exactly one Detail; a
// failing item never stops the run.
package transfer
