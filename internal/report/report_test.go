package report_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sift/internal/report"
	"sift/internal/transfer"
)

func sampleResult() transfer.Result {
	return transfer.Result{
		Mode:    "copy",
		Copied:  1,
		Skipped: 1,
		Details: []transfer.Detail{
			{RelPath: "a.mkv", Src: "/in/a.mkv", Dst: "/out/a.mkv", Action: transfer.ActionCopied, Bytes: 10},
			{RelPath: "b.mkv", Src: "/in/b.mkv", Action: transfer.ActionSkip, Reason: transfer.ReasonSourceMissing},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	r := report.New("run-1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), sampleResult())

	if err := report.WriteJSON(path, r); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"run_id", "mode", "dry_run", "copied", "moved", "skipped", "failed", "details"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("report missing %q: %s", key, data)
		}
	}
	if decoded["run_id"] != "run-1" || decoded["copied"].(float64) != 1 {
		t.Fatalf("unexpected report: %s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestNewNeverEmitsNullDetails(t *testing.T) {
	r := report.New("run", time.Now(), transfer.Result{Mode: "move"})
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Details []any `json:"details"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil || decoded.Details == nil {
		t.Fatalf("details should be an empty list: %s", data)
	}
}

func TestAppendJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfer.jsonl")
	r := report.New("run-1", time.Now(), sampleResult())
	for range 2 {
		if err := report.AppendJSONL(path, r); err != nil {
			t.Fatalf("AppendJSONL: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	var lines []report.Line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line report.Line
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[1].RunID != "run-1" || lines[1].Reason != transfer.ReasonSourceMissing || lines[1].RelPath != "b.mkv" {
		t.Fatalf("unexpected line: %+v", lines[1])
	}
}
