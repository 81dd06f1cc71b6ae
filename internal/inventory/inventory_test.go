package inventory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sift/internal/apperr"
	"sift/internal/config"
	"sift/internal/inventory"
	"sift/internal/logging"
	"sift/internal/testsupport"
	"sift/internal/variants"
)

func TestScanFilesFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.mkv", "a.mp4", "c.txt", "nested/d.MKV"} {
		testsupport.WriteFile(t, filepath.Join(root, name), 4)
	}

	tests := []struct {
		name    string
		onlyExt []string
		limit   int
		want    []string
	}{
		{"all", nil, 0, []string{"a.mp4", "b.mkv", "c.txt", "nested/d.MKV"}},
		{"extensions", []string{"mp4", ".mkv"}, 0, []string{"a.mp4", "b.mkv", "nested/d.MKV"}},
		{"blank extensions ignored", []string{" ", ""}, 0, []string{"a.mp4", "b.mkv", "c.txt", "nested/d.MKV"}},
		{"limit", []string{"mp4", ".mkv"}, 1, []string{"a.mp4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := inventory.ScanFiles(root, tt.onlyExt, tt.limit)
			if err != nil {
				t.Fatalf("ScanFiles: %v", err)
			}
			if len(paths) != len(tt.want) {
				t.Fatalf("got %d paths %v, want %v", len(paths), paths, tt.want)
			}
			for i, want := range tt.want {
				if paths[i] != filepath.Join(root, want) {
					t.Fatalf("paths[%d] = %q, want %q", i, paths[i], filepath.Join(root, want))
				}
			}
		})
	}
}

func TestScanFilesRejectsBadRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.mkv")
	testsupport.WriteFile(t, file, 1)

	tests := []struct {
		root string
		want string
	}{
		{filepath.Join(dir, "missing"), "does not exist"},
		{file, "is not a directory"},
	}
	for _, tt := range tests {
		_, err := inventory.ScanFiles(tt.root, nil, 0)
		if !errors.Is(err, apperr.ErrConfiguration) {
			t.Fatalf("ScanFiles(%q) error = %v, want configuration error", tt.root, err)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("error %q missing %q", err, tt.want)
		}
		if apperr.ExitCode(err) != apperr.ExitConfiguration {
			t.Fatalf("exit code = %d", apperr.ExitCode(err))
		}
	}
}

type fixture struct {
	cfg    *config.Config
	probes string
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) fixture {
	t.Helper()
	base := t.TempDir()
	probes := filepath.Join(base, "probes")
	stub := testsupport.InstallFFprobeStub(t, probes)
	opts = append(opts, testsupport.WithConfig(func(c *config.Config) {
		c.FFprobe.Bin = stub
	}))
	cfg := testsupport.NewConfig(t, opts...)
	if err := os.MkdirAll(cfg.Paths.Incoming, 0o755); err != nil {
		t.Fatalf("mkdir incoming: %v", err)
	}
	return fixture{cfg: cfg, probes: probes}
}

func (f fixture) addFile(t *testing.T, rel string, spec *testsupport.ProbeSpec) {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(f.cfg.Paths.Incoming, rel), 16)
	if spec != nil {
		testsupport.WriteProbe(t, f.probes, filepath.Base(rel), *spec)
	}
}

func (f fixture) build(t *testing.T, opts inventory.BuildOptions) *inventory.Inventory {
	t.Helper()
	builder := inventory.NewBuilder(f.cfg, nil, logging.NewNop())
	inv, err := builder.Build(context.Background(), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return inv
}

func findItem(t *testing.T, inv *inventory.Inventory, rel string) inventory.Item {
	t.Helper()
	for _, item := range inv.Items {
		if item.RelPath == rel {
			return item
		}
	}
	t.Fatalf("item %q not in inventory", rel)
	return inventory.Item{}
}

func TestBuildProbesAndProposesNames(t *testing.T) {
	f := newFixture(t)
	episode := "Big Brother AU S16E12 720p WEB H264-JFF[EZTVx.to].mkv"
	f.addFile(t, episode, &testsupport.ProbeSpec{
		Width: 1280, Height: 720, VideoCodec: "h264", FrameRate: "25/1",
		AudioCodec: "aac", Channels: 2, DurationSeconds: 2700, BitRate: 3_000_000,
	})
	f.addFile(t, "broken.mkv", nil)

	inv := f.build(t, inventory.BuildOptions{Rescan: true})

	if inv.Count != 2 || inv.Errors != 1 {
		t.Fatalf("count=%d errors=%d, want 2 and 1", inv.Count, inv.Errors)
	}
	if inv.IncomingRoot != f.cfg.Paths.Incoming {
		t.Fatalf("incoming root = %q", inv.IncomingRoot)
	}
	if inv.Items[0].RelPath != episode || inv.Items[1].RelPath != "broken.mkv" {
		// "B" sorts before "b".
		t.Fatalf("unexpected order: %q, %q", inv.Items[0].RelPath, inv.Items[1].RelPath)
	}

	item := findItem(t, inv, episode)
	if !item.FFprobe.OK || item.Size != 16 || item.MtimeNS == 0 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if want := "Big Brother AU - S16E12 [720p H264 2.0ch].mkv"; item.ProposedName != want {
		t.Fatalf("proposed name = %q, want %q", item.ProposedName, want)
	}

	broken := findItem(t, inv, "broken.mkv")
	if broken.FFprobe.OK || broken.FFprobe.Error == "" {
		t.Fatalf("expected failed probe, got %+v", broken.FFprobe)
	}

	if _, err := os.Stat(f.cfg.ScanCachePath()); err != nil {
		t.Fatalf("scan cache not written: %v", err)
	}
}

func TestBuildReusesCacheUntilRescan(t *testing.T) {
	f := newFixture(t)
	f.addFile(t, "Film.2001.mkv", &testsupport.ProbeSpec{
		Width: 1920, Height: 1080, VideoCodec: "hevc", AudioCodec: "eac3", Channels: 6, DurationSeconds: 6000,
	})
	first := f.build(t, inventory.BuildOptions{})
	if first.Count != 1 {
		t.Fatalf("first count = %d", first.Count)
	}

	if err := os.Remove(filepath.Join(f.cfg.Paths.Incoming, "Film.2001.mkv")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cached := f.build(t, inventory.BuildOptions{})
	if cached.Count != 1 || !cached.FromCache {
		t.Fatalf("expected cached inventory, got %+v", cached)
	}
	if cached.Items[0].ProposedName != first.Items[0].ProposedName {
		t.Fatalf("cached name %q != %q", cached.Items[0].ProposedName, first.Items[0].ProposedName)
	}

	fresh := f.build(t, inventory.BuildOptions{Rescan: true})
	if fresh.Count != 0 || len(fresh.Items) != 0 {
		t.Fatalf("rescan should see an empty root, got %+v", fresh)
	}
}

func TestBuildRejectsCacheFromOtherRoot(t *testing.T) {
	f := newFixture(t)
	f.build(t, inventory.BuildOptions{})

	other := *f.cfg
	other.Paths.Incoming = filepath.Join(testsupport.BaseDir(f.cfg), "elsewhere")
	builder := inventory.NewBuilder(&other, nil, logging.NewNop())
	_, err := builder.Build(context.Background(), inventory.BuildOptions{})
	if !errors.Is(err, apperr.ErrCache) {
		t.Fatalf("expected cache error, got %v", err)
	}
	if apperr.ExitCode(err) != apperr.ExitInventory {
		t.Fatalf("exit code = %d", apperr.ExitCode(err))
	}
}

func TestBuildMarksVariants(t *testing.T) {
	f := newFixture(t, testsupport.WithSampleDetection(300, true))
	full := testsupport.ProbeSpec{Width: 1920, Height: 1080, VideoCodec: "h264", AudioCodec: "aac", Channels: 2, DurationSeconds: 7200}
	shorter := full
	shorter.Width, shorter.Height, shorter.DurationSeconds = 1280, 720, 7000
	sample := full
	sample.DurationSeconds = 60
	audioOnly := testsupport.ProbeSpec{NoVideo: true, AudioCodec: "flac", Channels: 2, DurationSeconds: 3000}

	f.addFile(t, "Movie.2020.1080p.mkv", &full)
	f.addFile(t, "Movie.2020.720p.mkv", &shorter)
	f.addFile(t, "Movie.2020.sample.mkv", &sample)
	f.addFile(t, "Soundtrack.mkv", &audioOnly)

	inv := f.build(t, inventory.BuildOptions{Rescan: true})

	want := map[string]string{
		"Movie.2020.1080p.mkv":  "",
		"Movie.2020.720p.mkv":   variants.ReasonShorterVariant,
		"Movie.2020.sample.mkv": variants.ReasonTooShort,
		"Soundtrack.mkv":        variants.ReasonNoVideoStream,
	}
	for rel, reason := range want {
		if got := findItem(t, inv, rel).SkipReason; got != reason {
			t.Fatalf("%s skip reason = %q, want %q", rel, got, reason)
		}
	}
}

func TestBuildHonorsContextCancel(t *testing.T) {
	f := newFixture(t)
	f.addFile(t, "a.mkv", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	builder := inventory.NewBuilder(f.cfg, nil, logging.NewNop())
	if _, err := builder.Build(ctx, inventory.BuildOptions{Rescan: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
