package inventory

import (
	"context"
	"time"

	"sift/internal/config"
	"sift/internal/media/ffprobe"
)

// Prober produces a technical summary for one file. Failures are reported
// inside the summary, never as an error.
type Prober interface {
	Probe(ctx context.Context, path string) ffprobe.Summary
}

// FFprobeRunner probes files with the configured ffprobe binary.
type FFprobeRunner struct {
	Bin     string
	Args    []string
	Timeout time.Duration
}

// NewFFprobeRunner builds a runner from the [ffprobe] section.
func NewFFprobeRunner(cfg config.FFprobe) FFprobeRunner {
	return FFprobeRunner{
		Bin:     cfg.Bin,
		Args:    cfg.Args,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Probe runs ffprobe with an optional per-file timeout.
func (r FFprobeRunner) Probe(ctx context.Context, path string) ffprobe.Summary {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	result, err := ffprobe.Inspect(ctx, r.Bin, r.Args, path)
	if err != nil {
		return ffprobe.Failed(err.Error())
	}
	return ffprobe.Summarize(result)
}
