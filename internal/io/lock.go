package ioutils

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName guards an output tree against concurrent runs.
const LockFileName = ".playlist-organizer.lock"

// LockOutput takes an exclusive lock on the output directory, creating it
// if needed. The returned function releases the lock.
// The CLI and the TUI take the same lock.
func LockOutput(dir string) (func(), error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another playlist-organizer run is using %s", dir)
	}
	return func() { _ = lock.Unlock() }, nil
}
