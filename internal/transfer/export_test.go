package transfer

import (
	"context"

	"sift/internal/fileutil"
)

// SetMoveFile swaps the move implementation until the returned func runs.
func SetMoveFile(f func(ctx context.Context, src, dst string, chunkSize int, progress fileutil.ProgressFunc) (bool, error)) func() {
	orig := moveFile
	moveFile = f
	return func() { moveFile = orig }
}
