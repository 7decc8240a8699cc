package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	t.Parallel()

	s, err := NewLoader().LoadSettings(context.Background(), filepath.Join(t.TempDir(), "nope.conf.hcl"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestLoadSettings_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "default.conf.hcl", `
active_uservar_set = "work"

environment {
  single_instance = false
}

locale {
  enable   = true
  language = "de_DE"
}

uservar_set "work" {
  var "wx" {
    base    = "/opt/wx"
    members = { include = "/opt/wx/include" }
  }
}

debugger "gdb" {
  config "Default" {
    executable = "gdb"
    args       = ["-q"]
  }
}
`)

	s, err := NewLoader().LoadSettings(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, s.Environment.SingleInstance)
	assert.True(t, s.Environment.UseIPC, "absent attributes keep their defaults")
	assert.True(t, s.Environment.ShowSplash)
	assert.True(t, s.Locale.Enable)
	assert.Equal(t, "de_DE", s.Locale.Language)
	assert.Equal(t, "work", s.ActiveUserVarSet)

	wantSets := []*config.UserVarSet{{
		Name: "work",
		Vars: []*config.UserVar{{Name: "wx", Base: "/opt/wx", Members: map[string]string{"include": "/opt/wx/include"}}},
	}}
	if diff := cmp.Diff(wantSets, s.UserVarSets); diff != "" {
		t.Errorf("user variable sets mismatch (-want +got):\n%s", diff)
	}

	wantDebuggers := []*config.DebuggerSettings{{
		Plugin:  "gdb",
		Configs: []*config.DebuggerConfig{{Name: "Default", Executable: "gdb", Args: []string{"-q"}}},
	}}
	if diff := cmp.Diff(wantDebuggers, s.Debuggers); diff != "" {
		t.Errorf("debuggers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_InvalidHCL(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.conf.hcl", `environment {`)
	_, err := NewLoader().LoadSettings(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestSaveSettings_LoadsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "work.conf.hcl")

	s := config.DefaultSettings()
	s.App.DataPath = "/usr/share/codehost"
	s.App.Version = "1.2.0"
	s.Environment.RaiseViaIPC = false
	s.Locale.Language = "fr"
	s.UserVarSets = []*config.UserVarSet{{
		Name: "default",
		Vars: []*config.UserVar{
			{Name: "boost", Base: "/opt/boost", Members: map[string]string{"lib": "/opt/boost/lib"}},
			{Name: "plain", Base: "x"},
		},
	}}
	s.Debuggers = []*config.DebuggerSettings{{
		Plugin:  "gdb",
		Configs: []*config.DebuggerConfig{{Name: "Default", Executable: "gdb"}},
	}}

	loader := NewLoader()
	require.NoError(t, loader.SaveSettings(ctx, path, s))

	got, err := loader.LoadSettings(ctx, path)
	require.NoError(t, err)

	if diff := cmp.Diff(s, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("settings mismatch after save/load (-want +got):\n%s", diff)
	}
}

func TestLoadProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "hello/hello.chproj", `
project "hello" {
  target "Debug" {
    build = ["go build ./..."]
    clean = ["rm -rf bin"]
  }
  target "Release" {
    work_dir = "cmd"
    build    = ["go build -trimpath ./..."]
    env      = { CGO_ENABLED = "0" }
  }
}
`)

	p, err := NewLoader().LoadProject(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "hello", p.Name)
	assert.Equal(t, path, p.Path)
	assert.Equal(t, "Debug", p.ActiveTarget, "first target is active by default")
	require.Len(t, p.Targets, 2)
	assert.Equal(t, filepath.Join(dir, "hello"), p.Targets[0].WorkDir)
	assert.Equal(t, filepath.Join(dir, "hello", "cmd"), p.Targets[1].WorkDir)
	assert.Equal(t, map[string]string{"CGO_ENABLED": "0"}, p.Targets[1].Env)
}

func TestLoadProject_NoProjectBlock(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "empty.chproj", `# nothing`)
	_, err := NewLoader().LoadProject(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project block")
}

func TestLoadWorkspace_ResolvesProjects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "all.chws", `
workspace "all" {
  projects = ["hello/hello.chproj", "/abs/lib.chproj"]
}
`)

	ws, err := NewLoader().LoadWorkspace(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "all", ws.Name)
	assert.Equal(t, []string{filepath.Join(dir, "hello", "hello.chproj"), "/abs/lib.chproj"}, ws.Projects)
}

func TestLoadScript_KeepsBlockOrder(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "run.script", `
log { message = "one" }
open {
  path = "main.go"
  line = 3
}
log { message = "two" }
`)

	s, err := NewLoader().LoadScript(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, "log", s.Actions[0].Kind)
	assert.Equal(t, "open", s.Actions[1].Kind)
	assert.Contains(t, s.Actions[1].Attributes, "line")
	assert.Equal(t, "log", s.Actions[2].Kind)
}

func TestLoadScript_RejectsNestedBlocks(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.script", `
exec {
  inner { x = 1 }
}
`)
	_, err := NewLoader().LoadScript(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be nested")
}
