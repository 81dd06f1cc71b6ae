package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sift/internal/transfer"
)

// Report is the JSON document written for one transfer run.
type Report struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Mode      string            `json:"mode"`
	DryRun    bool              `json:"dry_run"`
	Copied    int               `json:"copied"`
	Moved     int               `json:"moved"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Details   []transfer.Detail `json:"details"`
}

// New assembles a report from a transfer result.
func New(runID string, startedAt time.Time, result transfer.Result) Report {
	details := result.Details
	if details == nil {
		details = []transfer.Detail{}
	}
	return Report{
		RunID:     runID,
		StartedAt: startedAt.UTC(),
		Mode:      result.Mode,
		DryRun:    result.DryRun,
		Copied:    result.Copied,
		Moved:     result.Moved,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
		Details:   details,
	}
}

// WriteJSON writes the report to path, replacing any existing file
// atomically.
func WriteJSON(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

// Line is one JSONL record: a detail tagged with its run.
type Line struct {
	RunID  string `json:"run_id"`
	Mode   string `json:"mode"`
	DryRun bool   `json:"dry_run"`
	transfer.Detail
}

// AppendJSONL appends one line per detail to path.
func AppendJSONL(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open jsonl report: %w", err)
	}
	enc := json.NewEncoder(f)
	for _, d := range r.Details {
		if err := enc.Encode(Line{RunID: r.RunID, Mode: r.Mode, DryRun: r.DryRun, Detail: d}); err != nil {
			f.Close()
			return fmt.Errorf("append jsonl report: %w", err)
		}
	}
	return f.Close()
}
