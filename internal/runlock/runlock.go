package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"sift/internal/apperr"
)

// FileName is the lock file created inside the outgoing root.
const FileName = ".sift.lock"

// Lock is an exclusive advisory lock on an outgoing root.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock for root without blocking. It fails with
// apperr.ErrLocked when another process holds it.
func Acquire(root string) (*Lock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create outgoing root: %w", err)
	}
	path := filepath.Join(root, FileName)
	l := &Lock{path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, apperr.Wrap(apperr.ErrLocked, "runlock", "acquire", "another sift transfer is writing to "+root, nil)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
