package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// bytesSuffix marks integer attributes the console renders as IEC sizes.
// The JSON handler keeps the raw number.
const bytesSuffix = "_bytes"

// runIDWidth is how much of a run id the console shows.
const runIDWidth = 8

// plainValue renders v without quoting.
func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func formatValue(key string, v slog.Value) string {
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		if strings.HasSuffix(key, bytesSuffix) && v.Int64() >= 0 {
			return compactBytes(uint64(v.Int64()))
		}
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		if strings.HasSuffix(key, bytesSuffix) {
			return compactBytes(v.Uint64())
		}
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(consoleTimestampLayout)
	}
	s := plainValue(v)
	if key == FieldRunID && len(s) > runIDWidth {
		s = s[:runIDWidth]
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

// compactBytes renders "1.5 GiB" as "1.5GiB" so the value needs no quotes.
func compactBytes(n uint64) string {
	return strings.ReplaceAll(humanize.IBytes(n), " ", "")
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}
