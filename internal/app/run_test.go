package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/instance"
	"github.com/specialistvlad/codehost/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func projectFile(t *testing.T, dir string, build ...string) string {
	t.Helper()
	content := "project \"hello\" {\n  active_target = \"Debug\"\n  target \"Debug\" {\n    build = ["
	for i, b := range build {
		if i > 0 {
			content += ", "
		}
		content += "\"" + b + "\""
	}
	content += "]\n  }\n  target \"Release\" {\n    build = [\"echo release-build\"]\n  }\n}\n"
	return writeFile(t, filepath.Join(dir, "hello"+ProjectExt), content)
}

func batchConfig(project string) *Config {
	return &Config{
		Build:     true,
		Documents: []string{project},
		Args:      []string{"--build", project},
	}
}

func TestRun_BatchBuildReturnsCompilerExitCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		build    []string
		wantCode int
	}{
		{name: "success", build: []string{"echo building"}, wantCode: 0},
		{name: "failure", build: []string{"echo building", "exit 3"}, wantCode: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			proj := projectFile(t, t.TempDir(), tc.build...)
			a, out := SetupAppTest(t, batchConfig(proj), Deps{})

			code, err := a.Run(testContext(t))
			require.NoError(t, err)
			assert.Equal(t, tc.wantCode, code)
			assert.Contains(t, out.String(), "Building 'hello.chproj' (target '')")
			assert.Contains(t, out.String(), "building")
			assert.Contains(t, out.String(), "\a")
		})
	}
}

func TestRun_BatchBuildNotify(t *testing.T) {
	t.Parallel()

	proj := projectFile(t, t.TempDir(), "true")
	cfg := batchConfig(proj)
	cfg.BatchBuildNotify = true
	a, out := SetupAppTest(t, cfg, Deps{})

	code, err := a.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Batch build ended.")
	assert.Contains(t, out.String(), "Process exited with status code 0.")
}

func TestRun_BatchWithoutCompiler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		safeMode bool
		modules  []plugin.Module
	}{
		{name: "no modules", modules: []plugin.Module{}},
		{name: "safe mode", safeMode: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			proj := projectFile(t, t.TempDir(), "true")
			cfg := batchConfig(proj)
			cfg.SafeMode = tc.safeMode
			a, out := SetupAppTest(t, cfg, Deps{Modules: tc.modules})

			code, err := a.Run(testContext(t))
			require.NoError(t, err)
			assert.Equal(t, exitNoCompiler, code)
			assert.Contains(t, out.String(), "No compiler plugin loaded")
		})
	}
}

func TestRun_BatchAsksForTarget(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		target    string
		choice    string
		ok        bool
		wantBuild bool
	}{
		{name: "chosen", target: "ask", choice: "Release", ok: true, wantBuild: true},
		{name: "any case", target: "ASK", choice: "Release", ok: true, wantBuild: true},
		{name: "cancelled", target: "ask"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			proj := projectFile(t, t.TempDir(), "true")
			cfg := batchConfig(proj)
			cfg.Target = tc.target

			var offered []string
			choose := func(_ context.Context, _ string, options []string) (string, bool, error) {
				offered = options
				return tc.choice, tc.ok, nil
			}
			a, out := SetupAppTest(t, cfg, Deps{Choose: choose})

			code, err := a.Run(testContext(t))
			require.NoError(t, err)
			assert.Equal(t, 0, code)
			assert.Equal(t, []string{"all", "Debug", "Release"}, offered)
			if tc.wantBuild {
				assert.Contains(t, out.String(), "(target 'Release')")
				assert.Contains(t, out.String(), "release-build")
			} else {
				assert.NotContains(t, out.String(), "Building '")
			}
		})
	}
}

func TestRun_BatchAskWithoutActiveProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ws := writeFile(t, filepath.Join(dir, "empty"+WorkspaceExt), `
workspace "empty" {
  projects = []
}
`)
	cfg := batchConfig(ws)
	cfg.Target = "ask"
	asked := false
	choose := func(context.Context, string, []string) (string, bool, error) {
		asked = true
		return "", false, nil
	}
	a, out := SetupAppTest(t, cfg, Deps{Choose: choose})

	code, err := a.Run(testContext(t))
	require.NoError(t, err)
	assert.False(t, asked)
	assert.Contains(t, out.String(), "No active project to choose a target from")
	assert.Contains(t, out.String(), "Building 'empty"+WorkspaceExt+"' (target '')")
	assert.Equal(t, 1, code, "an empty workspace has nothing to build")
}

func TestRun_BatchWorkspaceUnknownTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	projectFile(t, dir, "echo hello-build")
	writeFile(t, filepath.Join(dir, "lib"+ProjectExt), `
project "lib" {
  target "Debug" {
    build = ["echo lib-build"]
  }
}
`)
	ws := writeFile(t, filepath.Join(dir, "all"+WorkspaceExt), `
workspace "all" {
  projects = ["hello`+ProjectExt+`", "lib`+ProjectExt+`"]
}
`)
	cfg := batchConfig(ws)
	cfg.Target = "Typo"
	a, out := SetupAppTest(t, cfg, Deps{})

	code, err := a.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Batch build could not start.")
	assert.NotContains(t, out.String(), "hello-build")
	assert.NotContains(t, out.String(), "lib-build")
}

func TestRun_AskPersonalityIgnoresCase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := writeFile(t, filepath.Join(dir, "noop.script"), `
log {
  message = "script done"
}
`)
	cfg := &Config{Script: script, Personality: "Ask"}
	var offered []string
	choose := func(_ context.Context, _ string, options []string) (string, bool, error) {
		offered = options
		return "work", true, nil
	}
	a, _ := SetupAppTest(t, cfg, Deps{Choose: choose})
	writeFile(t, config.SettingsPath(a.cfg.UserDataDir, "work"), "")

	code, err := a.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{config.DefaultPersonality, "work"}, offered)
	assert.Equal(t, "work", a.personalities.Current())
}

func TestRun_Script(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := writeFile(t, filepath.Join(dir, "hello.txt"), "one\ntwo\n")
	script := writeFile(t, filepath.Join(dir, "open.script"), `
open {
  path = "hello.txt"
  line = 2
}

log {
  message = "script done"
}
`)
	a, out := SetupAppTest(t, &Config{Script: script}, Deps{})

	code, err := a.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "script done")

	active := a.Frame().Editors().Active()
	require.NotNil(t, active)
	assert.Equal(t, target, active.Path)
	assert.Equal(t, 1, active.Line)
	assert.False(t, a.Frame().IsShown())
	assert.NotContains(t, out.String(), "Loading...")
}

type runResult struct {
	code int
	err  error
}

// startInteractive runs a in the background until the test ends.
func startInteractive(t *testing.T, a *App, out *SafeBuffer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan runResult, 1)
	go func() {
		code, err := a.Run(ctx)
		done <- runResult{code, err}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("interactive app did not stop")
		}
	})
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Setting the crash report file to:")
	}, 10*time.Second, 10*time.Millisecond)
}

func TestRun_InteractiveStartup(t *testing.T) {
	t.Parallel()

	a, out := SetupAppTest(t, &Config{NoIPC: true, MultipleInstance: true}, Deps{})
	writeFile(t, filepath.Join(a.cfg.UserDataDir, "scripts", startupFile), `
log {
  message = "startup script ran"
}
`)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan runResult, 1)
	go func() {
		code, err := a.Run(ctx)
		done <- runResult{code, err}
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Setting the crash report file to:")
	}, 10*time.Second, 10*time.Millisecond)
	cancel()

	var res runResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancellation")
	}
	require.NoError(t, res.err)
	assert.Equal(t, 0, res.code)

	assert.Contains(t, out.String(), "Starting codehost")
	assert.Contains(t, out.String(), "Loading...")
	assert.Contains(t, out.String(), "startup script ran")
	assert.True(t, a.Frame().IsShown())
	assert.True(t, a.Frame().IsStartupDone())

	saved, err := os.ReadFile(filepath.Join(a.cfg.UserDataDir, "default.conf.hcl"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), Version)
}

func TestRun_ForwardsToRunningInstance(t *testing.T) {
	t.Parallel()

	runtime := ShortTempDir(t)
	first, firstOut := SetupAppTest(t, &Config{NoSplash: true}, Deps{RuntimeDir: runtime})
	startInteractive(t, first, firstOut)

	doc := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), "hi\n")
	second, secondOut := SetupAppTest(t, &Config{
		UserDataDir: first.cfg.UserDataDir,
		Documents:   []string{doc},
		Args:        []string{doc},
	}, Deps{RuntimeDir: runtime})

	code, err := second.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, secondOut.String(), "Ending application because another instance has been detected!")

	require.Eventually(t, func() bool {
		_, ok := first.Frame().Editors().Lookup(doc)
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, first.Frame().RaiseCount())
}

func TestRun_SecondInstanceRefused(t *testing.T) {
	t.Parallel()

	runtime := ShortTempDir(t)
	a, out := SetupAppTest(t, &Config{NoIPC: true}, Deps{RuntimeDir: runtime})

	owner := instance.New(Name+"-"+UserName(a.deps.Getenv), runtime)
	require.NoError(t, owner.Acquire())
	t.Cleanup(func() { _ = owner.Release() })

	code, err := a.Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Another program instance is already running.")
	assert.Nil(t, a.Frame())
}

type panicModule struct{}

func (panicModule) Register(*plugin.Registry) { panic("boom") }

func TestRun_CrashWritesReport(t *testing.T) {
	t.Parallel()

	a, out := SetupAppTest(t, &Config{NoIPC: true, MultipleInstance: true}, Deps{Modules: []plugin.Module{panicModule{}}})

	code, err := a.Run(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Something has gone wrong inside codehost")

	reports, err := filepath.Glob(filepath.Join(a.cfg.UserDataDir, "codehost_*.rpt"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	body, err := os.ReadFile(reports[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "panic: boom")
}

func TestRun_CrashWithoutHandlerWritesNoReport(t *testing.T) {
	t.Parallel()

	a, _ := SetupAppTest(t, &Config{NoIPC: true, MultipleInstance: true, NoCrashHandler: true}, Deps{Modules: []plugin.Module{panicModule{}}})

	code, err := a.Run(testContext(t))
	require.Error(t, err)
	assert.Equal(t, 1, code)

	reports, err := filepath.Glob(filepath.Join(a.cfg.UserDataDir, "codehost_*.rpt"))
	require.NoError(t, err)
	assert.Empty(t, reports)
}
