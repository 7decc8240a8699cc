package scripting

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/codehost/internal/config"
	hclconfig "github.com/specialistvlad/codehost/internal/hcl"
	"github.com/specialistvlad/codehost/internal/uservars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opened struct {
	path string
	line int
}

type recordingOpener struct {
	files []opened
	fail  bool
}

func (r *recordingOpener) OpenFile(path string, line int) bool {
	r.files = append(r.files, opened{path, line})
	return !r.fail
}

func loadScript(t *testing.T, src string) *config.Script {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.script")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	s, err := hclconfig.NewLoader().LoadScript(context.Background(), path)
	require.NoError(t, err)
	return s
}

func newRunner(opener Opener, vars *uservars.Manager) *Runner {
	r := NewRunner(opener, vars)
	r.Environ = func() []string { return []string{"HOME=/home/dev", "BAD-NAME=x"} }
	return r
}

func TestRun_ActionsInOrder(t *testing.T) {
	t.Parallel()

	s := loadScript(t, `
uservar {
  name  = "out"
  value = "${env.HOME}/out"
}
open {
  path = format("%s/%s", uservar.out, lower("MAIN.GO"))
  line = 12
}
open {
  path = "rel.txt"
}
log {
  message = upper(join(",", ["a", "b"]))
}
`)
	vars := uservars.NewManager(nil, config.DefaultUserVarSet)
	opener := &recordingOpener{}

	require.NoError(t, newRunner(opener, vars).Run(context.Background(), s))

	v, ok := vars.Lookup("out", "")
	require.True(t, ok)
	assert.Equal(t, "/home/dev/out", v)
	require.Len(t, opener.files, 2)
	assert.Equal(t, opened{"/home/dev/out/main.go", 12}, opener.files[0])
	assert.Equal(t, opened{filepath.Join(filepath.Dir(s.Path), "rel.txt"), 0}, opener.files[1])
}

func TestRun_CollectsErrorsAndContinues(t *testing.T) {
	t.Parallel()

	s := loadScript(t, `
exec {
  command = "exit 3"
}
exec {
  command = "echo ok > done.txt"
}
`)
	err := newRunner(&recordingOpener{}, nil).Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit 3")
	_, statErr := os.Stat(filepath.Join(filepath.Dir(s.Path), "done.txt"))
	require.NoError(t, statErr)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "valid", src: `log { message = trimspace(" x ") }`},
		{name: "unknown action", src: `shout { message = "x" }`, wantErr: `unknown action "shout"`},
		{name: "missing attribute", src: `open { line = 1 }`, wantErr: `requires "path"`},
		{name: "extra attribute", src: `log {
  message = "x"
  level   = "warn"
}`, wantErr: `does not accept "level"`},
		{name: "unknown function", src: `log { message = reverse("x") }`, wantErr: `unknown function "reverse"`},
		{name: "unknown variable", src: `log { message = var.x }`, wantErr: `unknown variable "var"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Check(loadScript(t, tc.src))
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidScript)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_InvalidScriptRunsNothing(t *testing.T) {
	t.Parallel()

	s := loadScript(t, `
open { path = "a.txt" }
log { message = nope() }
`)
	opener := &recordingOpener{}
	err := newRunner(opener, nil).Run(context.Background(), s)
	require.ErrorIs(t, err, ErrInvalidScript)
	assert.Empty(t, opener.files)
}

func TestRun_OpenFailure(t *testing.T) {
	t.Parallel()

	s := loadScript(t, `open { path = "/nowhere" }`)
	err := newRunner(&recordingOpener{fail: true}, nil).Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open /nowhere")
}
