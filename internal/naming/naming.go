package naming

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"sift/internal/config"
	"sift/internal/facts"
	"sift/internal/media/ffprobe"
	"sift/internal/textutil"
	"sift/internal/tiers"
)

var (
	sxePattern        = regexp.MustCompile(`(?i)\bs\s*(\d{1,2})\s*[._ -]?\s*e\s*(\d{1,3})\b`)
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	separatorsPattern = regexp.MustCompile(`[._\-]+`)
	openingSpace      = regexp.MustCompile(`([\[(])\s+`)
	closingSpace      = regexp.MustCompile(`\s+([\])])`)
	emptyBrackets     = regexp.MustCompile(`\[\s*\]`)
	emptyParens       = regexp.MustCompile(`\(\s*\)`)
)

// ErrMissingRelPath is returned when an item has no relative path to name.
var ErrMissingRelPath = errors.New("inventory item missing relpath")

// Input is everything needed to name one item.
type Input struct {
	RelPath string
	Summary *ffprobe.Summary
	Facts   facts.Facts
	Tier    tiers.Def
}

// Renderer expands the movie and tv templates.
type Renderer struct {
	naming    config.Naming
	flags     config.Flags
	judgement map[string]struct{}
}

// NewRenderer captures the naming and flag settings.
func NewRenderer(naming config.Naming, flags config.Flags) *Renderer {
	judgement := make(map[string]struct{}, len(flags.JudgementFlags))
	for _, flag := range flags.JudgementFlags {
		judgement[flag] = struct{}{}
	}
	return &Renderer{naming: naming, flags: flags, judgement: judgement}
}

// Render returns the proposed file name for in. Odd templates produce odd
// names rather than errors; only a missing relative path fails.
func (r *Renderer) Render(in Input) (string, error) {
	rel := filepath.ToSlash(strings.TrimSpace(in.RelPath))
	if rel == "" {
		return "", ErrMissingRelPath
	}
	base := path.Base(rel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ext = strings.TrimPrefix(ext, ".")

	var title, year, show, season2, episode2 string
	template := r.naming.MovieTemplate
	if m := sxePattern.FindStringSubmatchIndex(stem); m != nil {
		template = r.naming.TVTemplate
		season, _ := strconv.Atoi(stem[m[2]:m[3]])
		episode, _ := strconv.Atoi(stem[m[4]:m[5]])
		season2 = fmt.Sprintf("%02d", season)
		episode2 = fmt.Sprintf("%02d", episode)
		show = cleanTitle(stem[:m[0]])
		if show == "" && r.naming.FallbackToStem {
			show = stem
		}
	} else {
		if m := yearPattern.FindStringIndex(stem); m != nil {
			year = stem[m[0]:m[1]]
			title = cleanTitle(stem[:m[0]])
		}
		if title == "" && r.naming.FallbackToStem {
			title = stem
		}
	}

	channels := in.Facts.MinAudioChannels
	audioChannels := ""
	if channels != 0 {
		audioChannels = strconv.Itoa(channels)
	}
	hdr := ""
	if in.Facts.HDR {
		hdr = "HDR"
	}
	acodecTag := codecTag(r.naming.ACodecMap, in.Facts.ACodec)

	replacer := strings.NewReplacer(
		"{title}", title,
		"{year}", year,
		"{show}", show,
		"{season2}", season2,
		"{episode2}", episode2,
		"{stem}", stem,
		"{res}", in.Facts.Res,
		"{hdr_sep}", r.naming.HDRSep,
		"{hdr}", hdr,
		"{vcodec_tag}", codecTag(r.naming.VCodecMap, in.Facts.VCodec),
		"{acodec_tag}", acodecTag,
		"{audio_tag}", AudioTag(channels),
		"{audio_codec}", acodecTag,
		"{audio_channels}", audioChannels,
		"{flags_sep}", r.naming.FlagsSep,
		"{flags}", strings.Join(r.Flags(in), " "),
		"{ext}", ext,
	)
	name := replacer.Replace(template)

	name = textutil.CollapseWhitespace(name)
	name = openingSpace.ReplaceAllString(name, "$1")
	name = closingSpace.ReplaceAllString(name, "$1")
	name = emptyBrackets.ReplaceAllString(name, "")
	name = emptyParens.ReplaceAllString(name, "")
	name = strings.TrimSpace(textutil.CollapseWhitespace(name))
	if ext == "" {
		// "{ext}" rendered empty leaves the template's dot behind.
		name = strings.TrimSpace(strings.TrimRight(name, "."))
	}

	if r.naming.Sanitize {
		name = textutil.SanitizeFileName(name)
	}
	suffix := ""
	if ext != "" {
		suffix = "." + ext
	}
	return textutil.TruncateKeepingExt(name, suffix, r.naming.MaxFilenameLen), nil
}

// Flags returns the presentational flags for in: tier flags that are not
// judgement flags, then HFR and low bitrate when their triggers hold.
func (r *Renderer) Flags(in Input) []string {
	var out []string
	for _, flag := range in.Tier.Flags {
		if _, skip := r.judgement[flag]; !skip {
			out = append(out, flag)
		}
	}
	if in.Summary == nil {
		return out
	}
	if r.flags.EnableHFRFlag && in.Summary.Video != nil && in.Summary.Video.FPS > r.flags.HFRFPSThreshold {
		out = append(out, r.flags.HFRFlagName)
	}
	if r.flags.EnableLowBitrateFlag {
		threshold := r.flags.LowBitrateThresholds[in.Facts.Res]
		bps := in.Summary.OverallBitrateBPS
		if threshold > 0 && bps > 0 && bps < threshold {
			out = append(out, r.flags.LowBitrateFlagName)
		}
	}
	return out
}

// AudioTag labels a channel count: 7.1ch, 5.1ch, N.0ch, or empty.
func AudioTag(channels int) string {
	switch {
	case channels >= 8:
		return "7.1ch"
	case channels >= 6:
		return "5.1ch"
	case channels >= 1:
		return strconv.Itoa(channels) + ".0ch"
	default:
		return ""
	}
}

func codecTag(mapping map[string]string, codec string) string {
	if codec == "" {
		return ""
	}
	if tag, ok := mapping[strings.ToLower(codec)]; ok {
		return tag
	}
	return strings.ToUpper(codec)
}

func cleanTitle(prefix string) string {
	return strings.TrimSpace(separatorsPattern.ReplaceAllString(strings.TrimSpace(prefix), " "))
}
