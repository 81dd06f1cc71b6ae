package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultChunkSize is used when callers pass a non-positive chunk size.
const DefaultChunkSize = 1024 * 1024

// Progress reports how far a copy has come.
type Progress struct {
	Copied  int64
	Total   int64
	Elapsed time.Duration
}

// Percent returns completion in the range [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Copied) * 100 / float64(p.Total)
}

// BytesPerSecond returns the average throughput so far.
func (p Progress) BytesPerSecond() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Copied) / p.Elapsed.Seconds()
}

// Remaining estimates the time left at the current throughput.
func (p Progress) Remaining() time.Duration {
	rate := p.BytesPerSecond()
	if rate <= 0 || p.Copied >= p.Total {
		return 0
	}
	return time.Duration(float64(p.Total-p.Copied) / rate * float64(time.Second))
}

// Replaced in tests to simulate cross-device moves and removal failures.
var (
	rename     = os.Rename
	removeFile = os.Remove
)

// ProgressFunc receives a report after every chunk.
type ProgressFunc func(Progress)

// CopyWithProgress streams src to dst in chunkSize pieces and then applies
// the source's permissions and modification time to dst. dst must not
// exist. On any failure, including cancellation between chunks, the partial
// dst is removed.
func CopyWithProgress(ctx context.Context, src, dst string, chunkSize int, progress ProgressFunc) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	written, err := copyChunks(ctx, in, out, info.Size(), chunkSize, progress)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = copyMetadata(dst, info)
	}
	if err != nil {
		_ = os.Remove(dst)
		return written, err
	}
	return written, nil
}

func copyChunks(ctx context.Context, in io.Reader, out io.Writer, total int64, chunkSize int, progress ProgressFunc) (int64, error) {
	start := time.Now()
	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if progress != nil {
				progress(Progress{Copied: written, Total: total, Elapsed: time.Since(start)})
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

func copyMetadata(dst string, info os.FileInfo) error {
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve mode: %w", err)
	}
	// A zero access time leaves it unchanged.
	if err := os.Chtimes(dst, time.Time{}, info.ModTime()); err != nil {
		return fmt.Errorf("preserve times: %w", err)
	}
	return nil
}

// Move renames src to dst, falling back to a chunked copy and source removal
// when they sit on different filesystems. copied reports whether the
// fallback ran. If the source cannot be removed after copying, the error is
// returned and both files remain.
func Move(ctx context.Context, src, dst string, chunkSize int, progress ProgressFunc) (copied bool, err error) {
	err = rename(src, dst)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return false, err
	}
	if _, err := CopyWithProgress(ctx, src, dst, chunkSize, progress); err != nil {
		return true, err
	}
	if err := removeFile(src); err != nil {
		return true, fmt.Errorf("remove source after copy: %w", err)
	}
	return true, nil
}

// SameFile reports whether a and b name the same file on disk.
func SameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
