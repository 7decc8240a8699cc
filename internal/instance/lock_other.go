//go:build !unix

package instance

import (
	"errors"
	"fmt"
	"os"
)

// lockFile falls back to exclusive creation. A lock file whose recorded
// owner has exited is stale and taken over.
func lockFile(path, pidPath string) (*os.File, error) {
	f, err := createExclusive(path)
	if errors.Is(err, ErrLocked) && ownerGone(pidPath) {
		_ = os.Remove(path)
		f, err = createExclusive(path)
	}
	return f, err
}

func createExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("instance: create %s: %w", path, err)
	}
	return f, nil
}

func unlockFile(f *os.File, path string) error {
	if f == nil {
		return nil
	}
	err := f.Close()
	_ = os.Remove(path)
	return err
}

// processAlive relies on FindProcess opening a handle, which fails for an
// exited process on Windows.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
