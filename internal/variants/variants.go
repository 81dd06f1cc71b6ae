package variants

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"sift/internal/config"
	"sift/internal/media/ffprobe"
	"sift/internal/textutil"
)

// Skip reasons assigned by Mark.
const (
	ReasonNoVideoStream  = "no_video_stream"
	ReasonTooShort       = "sample_too_short"
	ReasonShorterVariant = "sample_shorter_variant"
)

var (
	bracketedPattern  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	separatorsPattern = regexp.MustCompile(`[._\-]+`)
	noisePattern      = regexp.MustCompile(`(?i)\b(sample|trailer|extras?|bonus|featurettes?)\b`)
	resolutionPattern = regexp.MustCompile(`(?i)\b(\d{3,4}[pi]|[248]k)\b`)
)

// Candidate is the view of an inventory item the grouper needs.
type Candidate struct {
	RelPath    string
	Summary    *ffprobe.Summary
	SkipReason string
}

// Mark returns one skip reason per candidate; an empty string means keep.
// Candidates that already carry a reason keep it and take no part in
// grouping. Candidates without a successful probe are left for the transfer
// stage to judge.
func Mark(opts config.SampleDetection, candidates []Candidate) []string {
	reasons := make([]string, len(candidates))
	for i, c := range candidates {
		reasons[i] = c.SkipReason
	}
	if !opts.Enabled {
		return reasons
	}

	var survivors []int
	for i, c := range candidates {
		if reasons[i] != "" || c.Summary == nil || !c.Summary.OK {
			continue
		}
		switch {
		case c.Summary.StreamCounts.Video < opts.MinVideoStreams:
			reasons[i] = ReasonNoVideoStream
		case c.Summary.DurationSeconds > 0 && c.Summary.DurationSeconds < opts.MinDurationSeconds:
			reasons[i] = ReasonTooShort
		default:
			survivors = append(survivors, i)
		}
	}
	if !opts.PreferLongestVariant {
		return reasons
	}

	groups := make(map[string][]int)
	var order []string
	for _, i := range survivors {
		key := NormalizeStem(stemOf(candidates[i].RelPath))
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		longest := 0.0
		for _, i := range members {
			if d := candidates[i].Summary.DurationSeconds; d > longest {
				longest = d
			}
		}
		for _, i := range members {
			if candidates[i].Summary.DurationSeconds < longest {
				reasons[i] = ReasonShorterVariant
			}
		}
	}
	return reasons
}

// NormalizeStem reduces a file stem to the title key variants are grouped
// by: bracketed text, noise words, and resolution tokens are removed, and
// separators become single spaces.
func NormalizeStem(stem string) string {
	key := bracketedPattern.ReplaceAllString(stem, " ")
	key = separatorsPattern.ReplaceAllString(key, " ")
	key = noisePattern.ReplaceAllString(key, " ")
	key = resolutionPattern.ReplaceAllString(key, " ")
	key = textutil.FoldTitle(key)
	return strings.TrimSpace(textutil.CollapseWhitespace(key))
}

func stemOf(relPath string) string {
	base := path.Base(filepath.ToSlash(relPath))
	return strings.TrimSuffix(base, path.Ext(base))
}
