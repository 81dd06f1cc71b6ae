package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ProbeSpec describes the streams a stub ffprobe reports for one file.
type ProbeSpec struct {
	Width, Height   int
	VideoCodec      string
	ColorTransfer   string
	FrameRate       string
	AudioCodec      string
	AudioProfile    string
	Channels        int
	DurationSeconds float64
	BitRate         int64
	NoVideo         bool
}

// ProbeJSON renders spec in ffprobe's -print_format json shape.
func ProbeJSON(t testing.TB, spec ProbeSpec) []byte {
	t.Helper()

	var streams []map[string]any
	if !spec.NoVideo {
		video := map[string]any{
			"codec_type":     "video",
			"codec_name":     spec.VideoCodec,
			"width":          spec.Width,
			"height":         spec.Height,
			"avg_frame_rate": spec.FrameRate,
		}
		if spec.ColorTransfer != "" {
			video["color_transfer"] = spec.ColorTransfer
		}
		streams = append(streams, video)
	}
	if spec.AudioCodec != "" {
		streams = append(streams, map[string]any{
			"codec_type":  "audio",
			"codec_name":  spec.AudioCodec,
			"profile":     spec.AudioProfile,
			"channels":    spec.Channels,
			"sample_rate": "48000",
		})
	}
	payload := map[string]any{
		"format": map[string]any{
			"format_name": "matroska,webm",
			"duration":    formatFloat(spec.DurationSeconds),
			"bit_rate":    formatFloat(float64(spec.BitRate)),
		},
		"streams": streams,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal probe json: %v", err)
	}
	return data
}

func formatFloat(v float64) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// InstallFFprobeStub writes a shell script that answers probes from JSON
// files in dir named after the probed file's base name plus ".json". Files
// without a fixture fail the way ffprobe does on unreadable input. It
// returns the script path.
func InstallFFprobeStub(t testing.TB, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("ffprobe stub requires a POSIX shell")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir probe dir: %v", err)
	}
	script := "#!/bin/sh\n" +
		"for last; do :; done\n" +
		"fixture=\"" + dir + "/$(basename \"$last\").json\"\n" +
		"if [ -f \"$fixture\" ]; then cat \"$fixture\"; exit 0; fi\n" +
		"echo \"$last: Invalid data found when processing input\" >&2\n" +
		"exit 1\n"
	path := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}
	return path
}

// WriteProbe stores the fixture the stub returns for files named name.
func WriteProbe(t testing.TB, dir, name string, spec ProbeSpec) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir probe dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), ProbeJSON(t, spec), 0o644); err != nil {
		t.Fatalf("write probe fixture: %v", err)
	}
}
