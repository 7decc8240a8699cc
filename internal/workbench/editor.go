package workbench

import (
	"fmt"
	"os"
	"sync"
)

// Editor is one open file.
type Editor struct {
	Path string
	// Line is the zero-based caret line.
	Line int
}

// EditorManager tracks open editors in opening order.
type EditorManager struct {
	mu      sync.Mutex
	editors []*Editor
	active  *Editor
}

// NewEditorManager creates a manager without editors.
func NewEditorManager() *EditorManager {
	return &EditorManager{}
}

// Open opens path, or activates it when already open.
func (m *EditorManager) Open(path string) (*Editor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.editors {
		if e.Path == path {
			m.active = e
			return e, nil
		}
	}
	e := &Editor{Path: path}
	m.editors = append(m.editors, e)
	m.active = e
	return e, nil
}

// Active returns the active editor, or nil.
func (m *EditorManager) Active() *Editor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// GotoLine moves the caret of the active editor to the zero-based line.
func (m *EditorManager) GotoLine(line int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || line < 0 {
		return false
	}
	m.active.Line = line
	return true
}

// Files returns the paths of the open editors.
func (m *EditorManager) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.editors))
	for _, e := range m.editors {
		out = append(out, e.Path)
	}
	return out
}

// Lookup returns the editor showing path.
func (m *EditorManager) Lookup(path string) (*Editor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.editors {
		if e.Path == path {
			return e, true
		}
	}
	return nil, false
}
