package transfer

import (
	"sift/internal/facts"
)

// Actions recorded on a Detail.
const (
	ActionCopied = "copied"
	ActionMoved  = "moved"
	ActionSkip   = "skip"
	ActionFail   = "fail"
)

// Reasons the engine assigns. Variant reasons come from the inventory.
const (
	ReasonFFprobeNotOK     = "ffprobe_not_ok"
	ReasonAlreadyProcessed = "already_processed"
	ReasonSourceMissing    = "source_missing"
	ReasonSameFile         = "already_present_samefile"
	ReasonCollision        = "collision"
)

// Detail is the outcome for one inventory item.
type Detail struct {
	RelPath      string       `json:"relpath"`
	Src          string       `json:"src"`
	Dst          string       `json:"dst,omitempty"`
	ProposedName string       `json:"proposed_name,omitempty"`
	Action       string       `json:"action"`
	Reason       string       `json:"reason,omitempty"`
	ExistingPath string       `json:"existing_path,omitempty"`
	MediaType    string       `json:"media_type,omitempty"`
	TierID       string       `json:"tier_id,omitempty"`
	Facts        *facts.Facts `json:"facts,omitempty"`
	Bytes        int64        `json:"bytes,omitempty"`
}

// Result aggregates a transfer run.
type Result struct {
	Mode    string   `json:"mode"`
	DryRun  bool     `json:"dry_run"`
	Copied  int      `json:"copied"`
	Moved   int      `json:"moved"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Details []Detail `json:"details"`
}

func (r *Result) add(d Detail) {
	switch d.Action {
	case ActionCopied:
		r.Copied++
	case ActionMoved:
		r.Moved++
	case ActionSkip:
		r.Skipped++
	case ActionFail:
		r.Failed++
	}
	r.Details = append(r.Details, d)
}

// Planned counts dry-run details.
func (r Result) Planned() int {
	n := 0
	for _, d := range r.Details {
		if d.Action == dryRunAction(r.Mode) {
			n++
		}
	}
	return n
}

// Bytes totals the bytes written by copies, including move fallbacks.
func (r Result) Bytes() int64 {
	var total int64
	for _, d := range r.Details {
		total += d.Bytes
	}
	return total
}

func dryRunAction(mode string) string {
	return mode + "_dry_run"
}
