// Package instance enforces one running instance per user.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// ErrLocked is returned by Acquire when another process holds the lock.
var ErrLocked = errors.New("instance: lock held by another process")

// Checker owns the per-user lock file while the instance runs.
type Checker struct {
	name string
	dir  string
	lock *os.File
	held bool
}

// New prepares a checker for name inside dir. Nothing is locked yet.
func New(name, dir string) *Checker {
	return &Checker{name: name, dir: dir}
}

// LockPath returns the path of the lock file.
func (c *Checker) LockPath() string {
	return filepath.Join(c.dir, c.name+".lock")
}

// PIDPath returns the path of the sidecar file naming the owner.
func (c *Checker) PIDPath() string {
	return filepath.Join(c.dir, c.name+".pid")
}

// IsAnotherRunning tries to take the lock and reports whether another
// process already holds it. Errors other than contention are returned.
func (c *Checker) IsAnotherRunning() (bool, error) {
	err := c.Acquire()
	if errors.Is(err, ErrLocked) {
		return true, nil
	}
	return false, err
}

// Acquire takes the lock and records the current PID.
func (c *Checker) Acquire() error {
	if c.held {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("instance: create %s: %w", c.dir, err)
	}
	f, err := lockFile(c.LockPath(), c.PIDPath())
	if err != nil {
		return err
	}
	c.lock = f
	c.held = true

	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := renameio.WriteFile(c.PIDPath(), []byte(pid), 0o600); err != nil {
		_ = c.Release()
		return fmt.Errorf("instance: record pid: %w", err)
	}
	return nil
}

// OwnerPID returns the PID recorded by the lock owner, or 0 when unknown.
func (c *Checker) OwnerPID() int {
	return readPID(c.PIDPath())
}

func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}

// ownerGone reports whether the PID file names a process that has exited.
// An unknown owner is assumed alive.
func ownerGone(pidPath string) bool {
	pid := readPID(pidPath)
	return pid != 0 && !processAlive(pid)
}

// Release drops the lock and removes the PID file. It is safe to call when
// the lock is not held.
func (c *Checker) Release() error {
	if !c.held {
		return nil
	}
	c.held = false
	_ = os.Remove(c.PIDPath())
	err := unlockFile(c.lock, c.LockPath())
	c.lock = nil
	return err
}
