// Package variants detects samples, trailers, and shorter duplicate copies
// of the same title so the transfer stage can skip them.
package variants
