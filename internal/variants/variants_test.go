package variants_test

import (
	"testing"

	"sift/internal/config"
	"sift/internal/media/ffprobe"
	"sift/internal/variants"
)

func options(minDuration float64, preferLongest bool) config.SampleDetection {
	return config.SampleDetection{
		Enabled:              true,
		MinDurationSeconds:   minDuration,
		PreferLongestVariant: preferLongest,
		MinVideoStreams:      1,
	}
}

func candidate(rel string, duration float64, videos int) variants.Candidate {
	return variants.Candidate{
		RelPath: rel,
		Summary: &ffprobe.Summary{
			OK:              true,
			DurationSeconds: duration,
			StreamCounts:    ffprobe.StreamCounts{Video: videos, Audio: 1},
		},
	}
}

func TestNormalizeStemRemovesNoise(t *testing.T) {
	tests := map[string]string{
		"Movie.Name.2023.SAMPLE":  "movie name 2023",
		"Movie [720p] (Sample)":   "movie",
		"Movie_Trailer_1080p":     "movie",
		"Movie.Name.2023.[GROUP]": "movie name 2023",
		"Amélie.2001.4K.Extras":   "amelie 2001",
		"[Only Brackets]":         "",
	}
	for in, want := range tests {
		if got := variants.NormalizeStem(in); got != want {
			t.Fatalf("NormalizeStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkSkipsShortFiles(t *testing.T) {
	reasons := variants.Mark(options(300, true), []variants.Candidate{
		candidate("short.mkv", 120, 1),
		candidate("long.mkv", 6000, 1),
	})
	if reasons[0] != variants.ReasonTooShort {
		t.Fatalf("expected short file skipped, got %q", reasons[0])
	}
	if reasons[1] != "" {
		t.Fatalf("expected long file kept, got %q", reasons[1])
	}
}

func TestMarkKeepsUnknownDuration(t *testing.T) {
	reasons := variants.Mark(options(300, false), []variants.Candidate{
		candidate("stream-dump.ts", 0, 1),
	})
	if reasons[0] != "" {
		t.Fatalf("expected file without a reported duration kept, got %q", reasons[0])
	}
}

func TestMarkSkipsNoVideo(t *testing.T) {
	reasons := variants.Mark(options(300, true), []variants.Candidate{candidate("audio_only.mkv", 6000, 0)})
	if reasons[0] != variants.ReasonNoVideoStream {
		t.Fatalf("expected no_video_stream, got %q", reasons[0])
	}
}

func TestMarkPrefersLongestVariant(t *testing.T) {
	candidates := []variants.Candidate{
		candidate("Movie.2023.1080p.mkv", 7200, 1),
		candidate("Movie.2023.Sample.mkv", 300, 1),
		candidate("extras/Movie.2023.[TRAILER].mkv", 180, 1),
		candidate("Other.2020.mkv", 90, 1),
	}
	reasons := variants.Mark(options(60, true), candidates)
	want := []string{"", variants.ReasonShorterVariant, variants.ReasonShorterVariant, ""}
	for i := range want {
		if reasons[i] != want[i] {
			t.Fatalf("candidate %d: got %q, want %q", i, reasons[i], want[i])
		}
	}
}

func TestMarkKeepsDurationTies(t *testing.T) {
	reasons := variants.Mark(options(60, true), []variants.Candidate{
		candidate("Movie.2023.1080p.mkv", 7200, 1),
		candidate("Movie.2023.2160p.mkv", 7200, 1),
		candidate("Movie.2023.720p.mkv", 7100, 1),
	})
	if reasons[0] != "" || reasons[1] != "" {
		t.Fatalf("expected tied longest variants kept, got %v", reasons)
	}
	if reasons[2] != variants.ReasonShorterVariant {
		t.Fatalf("expected shorter variant skipped, got %q", reasons[2])
	}
}

func TestMarkPreferLongestDisabledKeepsAll(t *testing.T) {
	reasons := variants.Mark(options(60, false), []variants.Candidate{
		candidate("Movie.2023.1080p.mkv", 7200, 1),
		candidate("Movie.2023.Sample.mkv", 300, 1),
	})
	if reasons[0] != "" || reasons[1] != "" {
		t.Fatalf("expected both kept, got %v", reasons)
	}
}

func TestMarkDisabled(t *testing.T) {
	opts := options(300, true)
	opts.Enabled = false
	reasons := variants.Mark(opts, []variants.Candidate{candidate("short.mkv", 30, 1)})
	if reasons[0] != "" {
		t.Fatalf("expected no marking when disabled, got %q", reasons[0])
	}
}

func TestMarkLeavesFailedProbesAndExistingReasons(t *testing.T) {
	failed := variants.Candidate{RelPath: "broken.mkv", Summary: &ffprobe.Summary{OK: false, Error: "boom"}}
	existing := candidate("Movie.2023.mkv", 10, 1)
	existing.SkipReason = "manual"
	reasons := variants.Mark(options(300, true), []variants.Candidate{failed, existing, candidate("Movie.2023.Cut.mkv", 400, 1)})
	if reasons[0] != "" {
		t.Fatalf("expected failed probe untouched, got %q", reasons[0])
	}
	if reasons[1] != "manual" {
		t.Fatalf("expected existing reason kept, got %q", reasons[1])
	}
	if reasons[2] != "" {
		t.Fatalf("expected surviving item kept, got %q", reasons[2])
	}
}
