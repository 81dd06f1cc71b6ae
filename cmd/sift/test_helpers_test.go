package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sift/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	incoming   string
	outgoing   string
	cache      string
	historyDB  string
	probes     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "sift.toml"),
		incoming:   filepath.Join(base, "incoming"),
		outgoing:   filepath.Join(base, "library"),
		cache:      filepath.Join(base, "cache"),
		historyDB:  filepath.Join(base, "state", "history.db"),
		probes:     filepath.Join(base, "probes"),
	}
	if err := os.MkdirAll(env.incoming, 0o755); err != nil {
		t.Fatalf("mkdir incoming: %v", err)
	}
	stub := testsupport.InstallFFprobeStub(t, env.probes)
	env.writeConfig(t, stub, "")
	return env
}

// writeConfig renders the env's config file. extra is appended verbatim.
func (e *cliTestEnv) writeConfig(t *testing.T, ffprobeBin, extra string) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\nincoming = %q\noutgoing_root = %q\nmetadata_cache = %q\n\n", e.incoming, e.outgoing, e.cache)
	fmt.Fprintf(&b, "[ffprobe]\nbin = %q\n\n", ffprobeBin)
	fmt.Fprintf(&b, "[reporting]\nhistory_db = %q\n", e.historyDB)
	b.WriteString(extra)
	if err := os.WriteFile(e.configPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// addEpisode drops a 720p episode into incoming and returns the name the
// library copy gets.
func (e *cliTestEnv) addEpisode(t *testing.T) string {
	t.Helper()
	const name = "Big Brother AU S16E12 720p WEB H264-JFF.mkv"
	testsupport.WriteFile(t, filepath.Join(e.incoming, name), 64)
	testsupport.WriteProbe(t, e.probes, name, testsupport.ProbeSpec{
		Width: 1280, Height: 720, VideoCodec: "h264", FrameRate: "25/1",
		AudioCodec: "aac", Channels: 2, DurationSeconds: 2700, BitRate: 3_000_000,
	})
	return "Big Brother AU - S16E12 [720p H264 2.0ch].mkv"
}

func (e *cliTestEnv) tierDir(mediaType, folder string) string {
	return filepath.Join(e.outgoing, mediaType, folder)
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--log-level", "error"}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q\nfull output:\n%s", substr, output)
	}
}
