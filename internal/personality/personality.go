// Package personality manages the named settings profiles a user can start
// the editor with. Each personality is one settings file in the user data
// folder; "default" always exists.
package personality

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/fsutil"
)

// Ask is the personality name that requests an interactive choice.
const Ask = "ask"

var (
	// ErrReady is returned when the selection changes after MarkAsReady.
	ErrReady = errors.New("personality: selection is frozen")
	// ErrUnknown is returned for a personality without a settings file.
	ErrUnknown = errors.New("personality: unknown personality")
)

// Chooser presents options and returns the picked one. ok is false when
// the user cancelled.
type Chooser func(ctx context.Context, title string, options []string) (choice string, ok bool, err error)

// Manager tracks the personality in use.
type Manager struct {
	mu      sync.Mutex
	dir     string
	current string
	ready   bool
}

// NewManager creates a manager over the settings files in dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir, current: config.DefaultPersonality}
}

// List returns the default personality followed by every other personality
// found in the user data folder, sorted by name.
func (m *Manager) List() ([]string, error) {
	files, err := fsutil.ListFilesBySuffix(m.dir, config.SettingsFileSuffix)
	if err != nil {
		return nil, fmt.Errorf("personality: list %s: %w", m.dir, err)
	}

	names := []string{config.DefaultPersonality}
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), config.SettingsFileSuffix)
		if name != "" && name != config.DefaultPersonality {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])
	return names, nil
}

// Current returns the selected personality.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SettingsPath returns the settings file of the selected personality.
func (m *Manager) SettingsPath() string {
	return config.SettingsPath(m.dir, m.Current())
}

// SetPersonality selects name. An empty name selects the default. A name
// without a settings file is accepted only when createIfMissing is set;
// the file itself is written on the next settings save.
func (m *Manager) SetPersonality(name string, createIfMissing bool) error {
	if name == "" {
		name = config.DefaultPersonality
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	m.mu.Lock()
	ready := m.ready
	m.mu.Unlock()
	if ready {
		return ErrReady
	}

	if !createIfMissing && name != config.DefaultPersonality && !fsutil.Exists(config.SettingsPath(m.dir, name)) {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = name
	return nil
}

// AskUser lets the user pick among the known personalities. With a single
// personality no question is asked. Cancelling keeps the current one.
func (m *Manager) AskUser(ctx context.Context, choose Chooser) error {
	names, err := m.List()
	if err != nil {
		return err
	}
	if len(names) == 1 {
		return m.SetPersonality(names[0], false)
	}

	choice, ok, err := choose(ctx, "Choose personality", names)
	if err != nil {
		return fmt.Errorf("personality: choose: %w", err)
	}
	if !ok {
		return nil
	}
	return m.SetPersonality(choice, false)
}

// MarkAsReady freezes the selection.
func (m *Manager) MarkAsReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = true
}

// IsReady reports whether MarkAsReady was called.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}
