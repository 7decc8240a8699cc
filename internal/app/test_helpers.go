package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	hclconfig "github.com/specialistvlad/codehost/internal/hcl"
	"github.com/specialistvlad/codehost/internal/ui"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. Missing
// deps are filled with per-test folders, a non-interactive terminal that
// writes into the returned buffer and the HCL store. Log and terminal
// output share the buffer.
func SetupAppTest(t *testing.T, cfg *Config, deps Deps) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	root := t.TempDir()

	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.UserDataDir == "" {
		cfg.UserDataDir = filepath.Join(root, "userdata")
	}
	if deps.Store == nil {
		deps.Store = hclconfig.NewLoader()
	}
	if deps.Terminal.Out == nil {
		deps.Terminal = ui.Terminal{In: strings.NewReader(""), Out: logBuffer}
	}
	if deps.Getenv == nil {
		deps.Getenv = func(k string) string {
			if k == "USER" {
				return "tester"
			}
			return ""
		}
	}
	if deps.ExecutablePath == "" {
		deps.ExecutablePath = filepath.Join(root, "bin", Name)
	}
	if deps.RuntimeDir == "" {
		deps.RuntimeDir = ShortTempDir(t)
	}
	if deps.WorkDir == "" {
		deps.WorkDir = root
	}

	testApp, err := NewApp(logBuffer, cfg, deps)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("CODEHOST_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

// ShortTempDir returns a temp folder with a short path; unix socket paths
// are limited to about a hundred bytes.
func ShortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ch")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}
