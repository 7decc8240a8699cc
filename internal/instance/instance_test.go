//go:build unix

package instance

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestChecker_SecondCheckerSeesFirst(t *testing.T) {
	dir := t.TempDir()

	first := New("codehost-tester", dir)
	running, err := first.IsAnotherRunning()
	require.NoError(t, err)
	require.False(t, running)
	assert.Equal(t, os.Getpid(), first.OwnerPID())

	second := New("codehost-tester", dir)
	running, err = second.IsAnotherRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), second.OwnerPID(), "owner pid is visible to the loser")

	require.NoError(t, first.Release())

	running, err = second.IsAnotherRunning()
	require.NoError(t, err)
	assert.False(t, running, "lock is free after release")
	require.NoError(t, second.Release())
}

func TestChecker_ReleaseIsIdempotent(t *testing.T) {
	c := New("codehost-tester", t.TempDir())
	require.NoError(t, c.Release())
	require.NoError(t, c.Acquire())
	require.NoError(t, c.Acquire())
	require.NoError(t, c.Release())
	require.NoError(t, c.Release())

	_, err := os.Stat(c.LockPath())
	assert.NoError(t, err, "the lock file stays in place")
	_, err = os.Stat(c.PIDPath())
	assert.True(t, os.IsNotExist(err))
}

func TestChecker_ReleaseKeepsWaitersOnTheSameFile(t *testing.T) {
	dir := t.TempDir()

	owner := New("codehost-tester", dir)
	require.NoError(t, owner.Acquire())

	// A starting process has opened the lock file but not locked it yet.
	waiter, err := os.OpenFile(owner.LockPath(), os.O_RDWR, 0o600)
	require.NoError(t, err)
	t.Cleanup(func() { _ = waiter.Close() })

	require.NoError(t, owner.Release())
	require.NoError(t, unix.Flock(int(waiter.Fd()), unix.LOCK_EX|unix.LOCK_NB))

	late := New("codehost-tester", dir)
	running, err := late.IsAnotherRunning()
	require.NoError(t, err)
	assert.True(t, running, "the waiter holds the only lock")
}
