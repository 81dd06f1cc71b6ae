// Package facts derives the classification facts tier rules are written
// against: resolution bucket, HDR, codecs, channel count, and problem audio.
package facts
