package facts

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"sift/internal/config"
	"sift/internal/logging"
	"sift/internal/media/ffprobe"
)

// Resolution buckets.
const (
	Res2160p = "2160p"
	Res1080p = "1080p"
	Res720p  = "720p"
	ResSD    = "SD"
)

// Fact keys usable in tier requires tables.
const (
	KeyRes              = "res"
	KeyHDR              = "hdr"
	KeyVCodec           = "vcodec"
	KeyACodec           = "acodec"
	KeyMinAudioChannels = "min_audio_channels"
	KeyProblemAudio     = "problem_audio"
)

// Facts are the classification attributes derived from a probe summary.
type Facts struct {
	Res              string `json:"res"`
	HDR              bool   `json:"hdr"`
	VCodec           string `json:"vcodec,omitempty"`
	ACodec           string `json:"acodec,omitempty"`
	MinAudioChannels int    `json:"min_audio_channels"`
	ProblemAudio     bool   `json:"problem_audio"`
}

// Unknown is the fact set used when probing failed.
func Unknown() Facts {
	return Facts{Res: ResSD}
}

// Fact implements tiers.FactSource. Missing codecs and unknown keys are nil.
func (f Facts) Fact(key string) any {
	switch key {
	case KeyRes:
		return f.Res
	case KeyHDR:
		return f.HDR
	case KeyVCodec:
		return optional(f.VCodec)
	case KeyACodec:
		return optional(f.ACodec)
	case KeyMinAudioChannels:
		return f.MinAudioChannels
	case KeyProblemAudio:
		return f.ProblemAudio
	default:
		return nil
	}
}

func optional(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// Deriver turns probe summaries into Facts. Patterns that fail to compile
// are dropped when the Deriver is built, so they never match.
type Deriver struct {
	horizontal4K    int
	vertical        map[string]int
	hdrTransfers    map[string]struct{}
	hdrPatterns     []*regexp.Regexp
	problemCodecs   map[string]struct{}
	problemPatterns []*regexp.Regexp
}

// NewDeriver compiles the classification settings. logger may be nil.
func NewDeriver(cls config.Classification, logger *slog.Logger) *Deriver {
	logger = logging.NewComponentLogger(logger, "facts")
	return &Deriver{
		horizontal4K:    cls.Horizontal4KThreshold,
		vertical:        cls.VerticalThresholds,
		hdrTransfers:    lowerSet(cls.HDRColorTransfer),
		hdrPatterns:     compileAll(logger, "classification.hdr_side_data_regex", cls.HDRSideDataRegex),
		problemCodecs:   lowerSet(cls.ProblemAudioCodecs),
		problemPatterns: compileAll(logger, "classification.problem_audio_profile_regex", cls.ProblemAudioProfileRegex),
	}
}

// Derive computes Facts for a summary. A nil or failed summary yields Unknown.
func (d *Deriver) Derive(summary *ffprobe.Summary) Facts {
	if summary == nil || !summary.OK {
		return Unknown()
	}
	f := Facts{Res: ResSD}
	if v := summary.Video; v != nil {
		f.Res = d.resolution(v.Width, v.Height)
		f.HDR = d.isHDR(v)
		f.VCodec = v.Codec
	}
	if a := summary.Audio; a != nil {
		f.ACodec = a.Codec
		f.MinAudioChannels = a.Channels
		f.ProblemAudio = d.isProblemAudio(a)
	}
	return f
}

func (d *Deriver) resolution(width, height int) string {
	if width > 0 && d.horizontal4K > 0 && width >= d.horizontal4K {
		return Res2160p
	}
	if height <= 0 {
		return ResSD
	}
	for _, bucket := range []string{Res2160p, Res1080p, Res720p} {
		if threshold, ok := d.vertical[bucket]; ok && height >= threshold {
			return bucket
		}
	}
	return ResSD
}

func (d *Deriver) isHDR(v *ffprobe.VideoSummary) bool {
	if _, ok := d.hdrTransfers[strings.ToLower(v.ColorTransfer)]; ok && v.ColorTransfer != "" {
		return true
	}
	var parts []string
	if v.Profile != "" {
		parts = append(parts, v.Profile)
	}
	parts = append(parts, v.SideDataTypes...)
	keys := make([]string, 0, len(v.Tags))
	for k := range v.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+v.Tags[k])
	}
	return anyMatch(d.hdrPatterns, strings.ToLower(strings.Join(parts, " | ")))
}

func (d *Deriver) isProblemAudio(a *ffprobe.AudioSummary) bool {
	if _, ok := d.problemCodecs[strings.ToLower(a.Codec)]; ok && a.Codec != "" {
		return true
	}
	var parts []string
	for _, p := range []string{a.Codec, a.Profile} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return anyMatch(d.problemPatterns, strings.ToLower(strings.Join(parts, " ")))
}

func anyMatch(patterns []*regexp.Regexp, blob string) bool {
	for _, re := range patterns {
		if re.MatchString(blob) {
			return true
		}
	}
	return false
}

func compileAll(logger *slog.Logger, setting string, exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			logging.WarnWithContext(logger, "ignoring invalid pattern", "invalid_pattern",
				logging.String("setting", setting),
				logging.String("pattern", expr),
				logging.Error(err),
				logging.String(logging.FieldImpact, "pattern never matches"),
				logging.String(logging.FieldErrorHint, "fix the regular expression in the config file"),
			)
			continue
		}
		out = append(out, re)
	}
	return out
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
