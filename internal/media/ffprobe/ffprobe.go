package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultArgs are passed to ffprobe when no arguments are configured.
var DefaultArgs = []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams"}

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index          int            `json:"index"`
	CodecName      string         `json:"codec_name"`
	CodecType      string         `json:"codec_type"`
	CodecTag       string         `json:"codec_tag_string"`
	Profile        string         `json:"profile"`
	Duration       string         `json:"duration"`
	BitRate        string         `json:"bit_rate"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	PixFmt         string         `json:"pix_fmt"`
	AvgFrameRate   string         `json:"avg_frame_rate"`
	RFrameRate     string         `json:"r_frame_rate"`
	ColorSpace     string         `json:"color_space"`
	ColorTransfer  string         `json:"color_transfer"`
	ColorPrimaries string         `json:"color_primaries"`
	ColorRange     string         `json:"color_range"`
	SampleRate     string         `json:"sample_rate"`
	Channels       int            `json:"channels"`
	ChannelLayout  string         `json:"channel_layout"`
	Tags           map[string]any `json:"tags"`
	SideDataList   []SideData     `json:"side_data_list"`
}

// SideData is one entry of a stream's side_data_list.
type SideData struct {
	Type string `json:"side_data_type"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes binary with args followed by path and decodes the JSON
// response. Empty args fall back to DefaultArgs. The error text is suitable
// for recording on an inventory item.
func Inspect(ctx context.Context, binary string, args []string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if len(args) == 0 {
		args = DefaultArgs
	}

	cmdArgs := append(append([]string(nil), args...), path)
	cmd := exec.CommandContext(ctx, binary, cmdArgs...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Result{}, fmt.Errorf("ffprobe not found: %s", binary)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("ffprobe interrupted: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return Result{}, errors.New(msg)
			}
			return Result{}, fmt.Errorf("ffprobe exited %d", exitErr.ExitCode())
		}
		return Result{}, fmt.Errorf("ffprobe exec error: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe output was not valid JSON: %w", err)
	}
	return result, nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return len(r.streamsOfType("video"))
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return len(r.streamsOfType("audio"))
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	return parseInt(r.Format.Size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	return parseInt(r.Format.BitRate)
}

func (r Result) streamsOfType(kind string) []Stream {
	var out []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			out = append(out, stream)
		}
	}
	return out
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

func parseInt(value string) int64 {
	return int64(parseFloat(value))
}

// parseRatio handles ffprobe frame rates such as "24000/1001".
func parseRatio(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return parseFloat(num)
	}
	n, d := parseFloat(num), parseFloat(den)
	if n == 0 || d == 0 {
		return 0
	}
	return n / d
}
