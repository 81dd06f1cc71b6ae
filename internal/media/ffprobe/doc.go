// Package ffprobe runs ffprobe and reduces its JSON output to the compact
// Summary sift caches per file.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Summary: best video stream, best audio stream, and container totals
//
// Inspect never interprets failures beyond producing a readable error; the
// caller records that text on the item via Failed.
package ffprobe
