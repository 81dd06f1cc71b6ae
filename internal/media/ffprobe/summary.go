package ffprobe

import (
	"fmt"
	"sort"
)

// Summary is the compact technical description stored per inventory item.
// Zero numeric fields mean the probe did not report the value.
type Summary struct {
	OK                bool          `json:"ok"`
	Error             string        `json:"error,omitempty"`
	Container         string        `json:"container,omitempty"`
	DurationSeconds   float64       `json:"duration_s,omitempty"`
	OverallBitrateBPS int64         `json:"overall_bitrate_bps,omitempty"`
	SizeBytesProbe    int64         `json:"size_bytes_probe,omitempty"`
	Video             *VideoSummary `json:"video,omitempty"`
	Audio             *AudioSummary `json:"audio,omitempty"`
	StreamCounts      StreamCounts  `json:"stream_counts"`
}

// VideoSummary describes the best video stream.
type VideoSummary struct {
	Codec          string            `json:"codec,omitempty"`
	Profile        string            `json:"profile,omitempty"`
	Width          int               `json:"width,omitempty"`
	Height         int               `json:"height,omitempty"`
	PixFmt         string            `json:"pix_fmt,omitempty"`
	BitRateBPS     int64             `json:"bit_rate_bps,omitempty"`
	FPS            float64           `json:"fps,omitempty"`
	ColorSpace     string            `json:"color_space,omitempty"`
	ColorTransfer  string            `json:"color_transfer,omitempty"`
	ColorPrimaries string            `json:"color_primaries,omitempty"`
	ColorRange     string            `json:"color_range,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
	SideDataTypes  []string          `json:"side_data_types,omitempty"`
}

// AudioSummary describes the best audio stream.
type AudioSummary struct {
	Codec         string `json:"codec,omitempty"`
	Profile       string `json:"profile,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channel_layout,omitempty"`
	SampleRateHz  int    `json:"sample_rate_hz,omitempty"`
	BitRateBPS    int64  `json:"bit_rate_bps,omitempty"`
}

// StreamCounts records how many streams of each kind the container holds.
type StreamCounts struct {
	Video int `json:"video"`
	Audio int `json:"audio"`
}

// Failed returns the summary recorded when probing a file failed.
func Failed(message string) Summary {
	return Summary{OK: false, Error: message}
}

// Summarize reduces a full probe result to a Summary. The best video stream
// has the largest pixel area, then the greatest height; the best audio
// stream has the most channels, then the highest bit rate. Ties keep the
// earlier stream.
func Summarize(r Result) Summary {
	videos := r.streamsOfType("video")
	audios := r.streamsOfType("audio")

	summary := Summary{
		OK:                true,
		Container:         r.Format.FormatName,
		DurationSeconds:   r.DurationSeconds(),
		OverallBitrateBPS: r.BitRate(),
		SizeBytesProbe:    r.SizeBytes(),
		StreamCounts:      StreamCounts{Video: len(videos), Audio: len(audios)},
	}
	if best, ok := bestVideo(videos); ok {
		summary.Video = summarizeVideo(best)
	}
	if best, ok := bestAudio(audios); ok {
		summary.Audio = &AudioSummary{
			Codec:         best.CodecName,
			Profile:       best.Profile,
			Channels:      best.Channels,
			ChannelLayout: best.ChannelLayout,
			SampleRateHz:  int(parseInt(best.SampleRate)),
			BitRateBPS:    parseInt(best.BitRate),
		}
	}
	return summary
}

func summarizeVideo(s Stream) *VideoSummary {
	fps := parseRatio(s.AvgFrameRate)
	if fps == 0 {
		fps = parseRatio(s.RFrameRate)
	}
	video := &VideoSummary{
		Codec:          s.CodecName,
		Profile:        s.Profile,
		Width:          s.Width,
		Height:         s.Height,
		PixFmt:         s.PixFmt,
		BitRateBPS:     parseInt(s.BitRate),
		FPS:            fps,
		ColorSpace:     s.ColorSpace,
		ColorTransfer:  s.ColorTransfer,
		ColorPrimaries: s.ColorPrimaries,
		ColorRange:     s.ColorRange,
	}
	if len(s.Tags) > 0 {
		video.Tags = make(map[string]string, len(s.Tags))
		for k, v := range s.Tags {
			video.Tags[k] = fmt.Sprint(v)
		}
	}
	seen := make(map[string]struct{})
	for _, sd := range s.SideDataList {
		if sd.Type == "" {
			continue
		}
		if _, dup := seen[sd.Type]; dup {
			continue
		}
		seen[sd.Type] = struct{}{}
		video.SideDataTypes = append(video.SideDataTypes, sd.Type)
	}
	sort.Strings(video.SideDataTypes)
	return video
}

func bestVideo(streams []Stream) (Stream, bool) {
	if len(streams) == 0 {
		return Stream{}, false
	}
	best := streams[0]
	for _, s := range streams[1:] {
		area, bestArea := s.Width*s.Height, best.Width*best.Height
		if area > bestArea || (area == bestArea && s.Height > best.Height) {
			best = s
		}
	}
	return best, true
}

func bestAudio(streams []Stream) (Stream, bool) {
	if len(streams) == 0 {
		return Stream{}, false
	}
	best := streams[0]
	for _, s := range streams[1:] {
		if s.Channels > best.Channels || (s.Channels == best.Channels && parseInt(s.BitRate) > parseInt(best.BitRate)) {
			best = s
		}
	}
	return best, true
}
