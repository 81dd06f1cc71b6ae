package preflight

import (
	"context"
	"path/filepath"

	"sift/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Incoming", cfg.Paths.Incoming, Read),
		CheckCreatableDirectory("Outgoing root", cfg.Paths.OutgoingRoot),
		CheckCreatableDirectory("Metadata cache", cfg.Paths.MetadataCache),
	}
	if cfg.Reporting.HistoryDB != "" {
		results = append(results, CheckCreatableDirectory("History", filepath.Dir(cfg.Reporting.HistoryDB)))
	}
	if cfg.Reporting.WriteJSONLReport {
		results = append(results, CheckCreatableDirectory("JSONL report", filepath.Dir(cfg.Reporting.ReportPath)))
	}
	results = append(results, CheckFFprobe(ctx, cfg.FFprobe))
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
