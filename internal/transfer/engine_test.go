package transfer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/fileutil"
	"sift/internal/inventory"
	"sift/internal/logging"
	"sift/internal/media/ffprobe"
	"sift/internal/testsupport"
	"sift/internal/transfer"
	"sift/internal/variants"
)

func hdSummary() ffprobe.Summary {
	return ffprobe.Summary{
		OK:              true,
		Container:       "matroska,webm",
		DurationSeconds: 6000,
		Video:           &ffprobe.VideoSummary{Codec: "h264", Width: 1920, Height: 1080, FPS: 24},
		Audio:           &ffprobe.AudioSummary{Codec: "aac", Channels: 2},
		StreamCounts:    ffprobe.StreamCounts{Video: 1, Audio: 1},
	}
}

func newItem(t *testing.T, cfg *config.Config, rel, proposed string) inventory.Item {
	t.Helper()
	path := filepath.Join(cfg.Paths.Incoming, rel)
	testsupport.WriteFile(t, path, 3000)
	return inventory.Item{
		RelPath:      rel,
		Path:         path,
		Size:         3000,
		FFprobe:      hdSummary(),
		ProposedName: proposed,
	}
}

func standardDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.OutgoingRoot, "movies", "T3_Standard")
}

func run(t *testing.T, cfg *config.Config, items []inventory.Item, opts transfer.Options) transfer.Result {
	t.Helper()
	engine := transfer.NewEngine(cfg, logging.NewNop())
	result, err := engine.Run(context.Background(), items, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result
}

func onlyDetail(t *testing.T, result transfer.Result) transfer.Detail {
	t.Helper()
	if len(result.Details) != 1 {
		t.Fatalf("expected 1 detail, got %d: %+v", len(result.Details), result.Details)
	}
	return result.Details[0]
}

func TestRunCopiesIntoTierFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) {
		c.IO.ChunkSizeBytes = 1024
	}))
	item := newItem(t, cfg, "Film.2001.mkv", "Film (2001) [1080p H264 2.0ch].mkv")

	result := run(t, cfg, []inventory.Item{item}, transfer.Options{})

	if result.Copied != 1 || result.Failed != 0 || result.Mode != "copy" || result.DryRun {
		t.Fatalf("unexpected result: %+v", result)
	}
	d := onlyDetail(t, result)
	want := filepath.Join(standardDir(cfg), "Film (2001) [1080p H264 2.0ch].mkv")
	if d.Dst != want || d.Action != transfer.ActionCopied {
		t.Fatalf("detail = %+v, want dst %q", d, want)
	}
	if d.TierID != "T3" || d.MediaType != "movies" || d.Facts == nil || d.Facts.Res != "1080p" {
		t.Fatalf("routing not recorded: %+v", d)
	}
	if d.ProposedName != filepath.Base(want) || d.Bytes != 3000 {
		t.Fatalf("detail = %+v", d)
	}
	info, err := os.Stat(want)
	if err != nil || info.Size() != 3000 {
		t.Fatalf("destination missing or short: %v", err)
	}
	testsupport.RequireSameContent(t, item.Path, want)
}

func TestRunSkipsAlreadyProcessed(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		strict   bool
	}{
		{"exact name", "movie.mkv", false},
		{"numbered duplicate", "movie (2).mkv", false},
		{"strict subtree", filepath.Join("older", "movie.mkv"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) {
				c.IO.StrictExistingScan = tt.strict
			}))
			existing := filepath.Join(standardDir(cfg), tt.existing)
			testsupport.WriteFile(t, existing, 10)
			item := newItem(t, cfg, "movie.mkv", "")

			result := run(t, cfg, []inventory.Item{item}, transfer.Options{})

			if result.Skipped != 1 || result.Copied != 0 {
				t.Fatalf("unexpected result: %+v", result)
			}
			d := onlyDetail(t, result)
			if d.Reason != transfer.ReasonAlreadyProcessed || d.ExistingPath != existing {
				t.Fatalf("detail = %+v, want existing %q", d, existing)
			}
		})
	}
}

func TestRunIgnoresSubtreeWithoutStrictMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(standardDir(cfg), "older", "movie.mkv"), 10)
	item := newItem(t, cfg, "movie.mkv", "")

	result := run(t, cfg, []inventory.Item{item}, transfer.Options{})
	if result.Copied != 1 {
		t.Fatalf("expected copy, got %+v", result.Details)
	}
}

func TestRunTwiceIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	items := []inventory.Item{newItem(t, cfg, "movie.mkv", "Movie [1080p].mkv")}

	first := run(t, cfg, items, transfer.Options{})
	if first.Copied != 1 {
		t.Fatalf("first run: %+v", first.Details)
	}
	second := run(t, cfg, items, transfer.Options{})
	if second.Copied != 0 || second.Skipped != 1 || second.Details[0].Reason != transfer.ReasonAlreadyProcessed {
		t.Fatalf("second run: %+v", second.Details)
	}
}

func TestRunSameNameTwiceInOneRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	items := []inventory.Item{
		newItem(t, cfg, "a/movie.mkv", "Movie [1080p].mkv"),
		newItem(t, cfg, "b/movie.mkv", "Movie [1080p].mkv"),
	}

	for _, dryRun := range []bool{true, false} {
		result := run(t, cfg, items, transfer.Options{DryRun: dryRun})
		if result.Skipped != 1 || result.Details[1].Reason != transfer.ReasonAlreadyProcessed {
			t.Fatalf("dry_run=%v: %+v", dryRun, result.Details)
		}
	}
}

func TestRunCollision(t *testing.T) {
	tests := []struct {
		name    string
		dedupe  bool
		action  string
		reason  string
		dstBase string
	}{
		{"dedupe", true, transfer.ActionCopied, "", "movie (1).mkv"},
		{"skip", false, transfer.ActionSkip, transfer.ReasonCollision, "movie.mkv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) {
				c.IO.DedupeOnCollision = tt.dedupe
			}))
			// A directory holds the name without counting as a processed file.
			if err := os.MkdirAll(filepath.Join(standardDir(cfg), "movie.mkv"), 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			item := newItem(t, cfg, "movie.mkv", "")

			d := onlyDetail(t, run(t, cfg, []inventory.Item{item}, transfer.Options{}))
			if d.Action != tt.action || d.Reason != tt.reason || filepath.Base(d.Dst) != tt.dstBase {
				t.Fatalf("detail = %+v", d)
			}
			info, err := os.Stat(filepath.Join(standardDir(cfg), "movie.mkv"))
			if err != nil || !info.IsDir() {
				t.Fatalf("existing entry was replaced: %v", err)
			}
		})
	}
}

func TestRunSameFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	item := newItem(t, cfg, "movie.mkv", "")
	if err := os.MkdirAll(standardDir(cfg), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(item.Path, filepath.Join(standardDir(cfg), "movie.mkv")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	d := onlyDetail(t, run(t, cfg, []inventory.Item{item}, transfer.Options{}))
	if d.Action != transfer.ActionSkip || d.Reason != transfer.ReasonSameFile {
		t.Fatalf("detail = %+v", d)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode("move"))
	item := newItem(t, cfg, "movie.mkv", "")

	result := run(t, cfg, []inventory.Item{item}, transfer.Options{DryRun: true})

	d := onlyDetail(t, result)
	if d.Action != "move_dry_run" || !result.DryRun || result.Planned() != 1 {
		t.Fatalf("detail = %+v", d)
	}
	if result.Copied+result.Moved+result.Skipped+result.Failed != 0 {
		t.Fatalf("dry run should not count transfers: %+v", result)
	}
	if _, err := os.Stat(cfg.Paths.OutgoingRoot); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created the outgoing root: %v", err)
	}
	if _, err := os.Stat(item.Path); err != nil {
		t.Fatalf("dry run touched the source: %v", err)
	}
}

func TestRunMoves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	item := newItem(t, cfg, "movie.mkv", "")

	result := run(t, cfg, []inventory.Item{item}, transfer.Options{Mode: "MOVE"})

	d := onlyDetail(t, result)
	if result.Moved != 1 || d.Action != transfer.ActionMoved || result.Mode != "move" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(item.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source still present: %v", err)
	}
	if _, err := os.Stat(d.Dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestRunMoveFailsWhenSourceCannotBeRemoved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	item := newItem(t, cfg, "movie.mkv", "")
	t.Cleanup(transfer.SetMoveFile(func(ctx context.Context, src, dst string, chunkSize int, progress fileutil.ProgressFunc) (bool, error) {
		if _, err := fileutil.CopyWithProgress(ctx, src, dst, chunkSize, progress); err != nil {
			return true, err
		}
		return true, fmt.Errorf("remove source after copy: %w", &os.PathError{Op: "remove", Path: src, Err: os.ErrPermission})
	}))

	result := run(t, cfg, []inventory.Item{item}, transfer.Options{Mode: "move"})

	d := onlyDetail(t, result)
	if result.Failed != 1 || result.Moved != 0 || d.Action != transfer.ActionFail {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(d.Reason, "exception: PathError: remove source after copy") {
		t.Fatalf("reason = %q", d.Reason)
	}
	testsupport.RequireSameContent(t, item.Path, d.Dst)
}

func TestRunSkipsAndFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sample := newItem(t, cfg, "sample.mkv", "")
	sample.SkipReason = variants.ReasonTooShort
	unprobed := newItem(t, cfg, "broken.mkv", "")
	unprobed.FFprobe = ffprobe.Failed("ffprobe exited 1")
	missing := inventory.Item{RelPath: "gone.mkv", Path: filepath.Join(cfg.Paths.Incoming, "gone.mkv"), FFprobe: hdSummary()}
	escaping := newItem(t, cfg, "escape.mkv", "../../escape.mkv")
	ok := newItem(t, cfg, "fine.mkv", "")

	result := run(t, cfg, []inventory.Item{sample, unprobed, missing, escaping, ok}, transfer.Options{OnlyOKProbe: true})

	if result.Skipped != 3 || result.Failed != 1 || result.Copied != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	wantReasons := []string{variants.ReasonTooShort, transfer.ReasonFFprobeNotOK, transfer.ReasonSourceMissing}
	for i, want := range wantReasons {
		if result.Details[i].Reason != want {
			t.Fatalf("detail %d reason = %q, want %q", i, result.Details[i].Reason, want)
		}
	}
	if !strings.HasPrefix(result.Details[3].Reason, "destination_error: ") {
		t.Fatalf("escape reason = %q", result.Details[3].Reason)
	}
}

func TestRunRecordsPerItemException(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) {
		c.IO.Mkdirs = false
	}))
	item := newItem(t, cfg, "movie.mkv", "")

	result := run(t, cfg, []inventory.Item{item}, transfer.Options{})

	d := onlyDetail(t, result)
	if result.Failed != 1 || d.Action != transfer.ActionFail {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(d.Reason, "exception: PathError: ") {
		t.Fatalf("reason = %q", d.Reason)
	}
	if d.TierID == "" || d.Facts == nil {
		t.Fatalf("failure lost routing context: %+v", d)
	}
}

func TestRunRejectsInvalidMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := transfer.NewEngine(cfg, logging.NewNop())
	_, err := engine.Run(context.Background(), nil, transfer.Options{Mode: "link"})
	if !errors.Is(err, apperr.ErrInvalidMode) || apperr.ExitCode(err) != apperr.ExitInvalidMode {
		t.Fatalf("expected invalid mode, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	item := newItem(t, cfg, "movie.mkv", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := transfer.NewEngine(cfg, logging.NewNop())
	result, err := engine.Run(ctx, []inventory.Item{item}, transfer.Options{})
	if !errors.Is(err, context.Canceled) || len(result.Details) != 0 {
		t.Fatalf("expected cancellation before any item, got %v %+v", err, result)
	}
}
