package inventory

import (
	"sift/internal/media/ffprobe"
)

// Item is one incoming file as recorded in the scan cache.
type Item struct {
	RelPath      string          `json:"relpath"`
	Path         string          `json:"path"`
	Size         int64           `json:"size"`
	MtimeNS      int64           `json:"mtime_ns"`
	FFprobe      ffprobe.Summary `json:"ffprobe"`
	SkipReason   string          `json:"skip_reason,omitempty"`
	ProposedName string          `json:"proposed_name,omitempty"`
}

// Inventory is the scan result handed to the transfer stage.
type Inventory struct {
	GeneratedAtUTC string `json:"generated_at_utc"`
	IncomingRoot   string `json:"incoming_root"`
	Count          int    `json:"count"`
	Errors         int    `json:"errors"`
	Items          []Item `json:"items"`
	// FromCache is set when the inventory was read without rescanning.
	FromCache bool `json:"-"`
}
