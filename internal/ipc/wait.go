package ipc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrTimeout is returned when the server socket does not appear in time.
var ErrTimeout = errors.New("ipc: timeout waiting for server")

// WaitForServer blocks until the socket at path exists or timeout elapses.
// It covers the window between another instance taking the instance lock
// and that instance starting its server.
func WaitForServer(ctx context.Context, path string, timeout time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ipc: watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ipc: watch %s: %w", filepath.Dir(path), err)
	}

	// checked after the watch is armed so a socket created in between is not missed
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return ErrTimeout
		case event, ok := <-watcher.Events:
			if !ok {
				return ErrTimeout
			}
			if filepath.Clean(event.Name) == filepath.Clean(path) && event.Op&fsnotify.Create != 0 {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrTimeout
			}
			if err != nil {
				return fmt.Errorf("ipc: watch: %w", err)
			}
		}
	}
}
