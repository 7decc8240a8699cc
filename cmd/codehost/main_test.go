package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/codehost/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"--log-format=xml"})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "run() should return an ExitError when validation fails")
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "invalid log-format")
}

func TestRun_Script(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "hello.script")
	require.NoError(t, os.WriteFile(script, []byte("log {\n  message = upper(\"hello from script\")\n}\n"), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{
		"--user-data-dir", filepath.Join(dir, "userdata"),
		"--no-ipc",
		"--multiple-instance",
		"--script", script,
	})

	require.NoError(t, err)
	require.Contains(t, out.String(), "HELLO FROM SCRIPT")
}

func TestRun_ScriptWithUnknownOptionStillRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "noop.script")
	require.NoError(t, os.WriteFile(script, []byte("log {\n  message = \"done\"\n}\n"), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{
		"--user-data-dir", filepath.Join(dir, "userdata"),
		"--no-ipc",
		"--multiple-instance",
		"--plugin-only-switch",
		"--script", script,
	})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Unknown command-line option.")
	require.Contains(t, out.String(), "done")
}
