package runlock_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sift/internal/apperr"
	"sift/internal/runlock"
)

func TestAcquireIsExclusive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "library")

	first, err := runlock.Acquire(root)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := os.Stat(first.Path()); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}

	if _, err := runlock.Acquire(root); !errors.Is(err, apperr.ErrLocked) {
		t.Fatalf("second Acquire error = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := runlock.Acquire(root)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = again.Release()
}
