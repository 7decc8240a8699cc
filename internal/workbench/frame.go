package workbench

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/ctxlog"
)

// Frame is the main window.
type Frame struct {
	ctx      context.Context
	editors  *EditorManager
	projects *ProjectManager
	batch    bool

	mu          sync.Mutex
	shown       bool
	iconized    bool
	raised      int
	startupDone bool
	history     []string
	closed      chan struct{}
	closeOnce   sync.Once
}

// NewFrame creates a hidden frame. A batch frame is never shown.
func NewFrame(ctx context.Context, loader config.Loader, userDataDir string, batch bool) *Frame {
	return &Frame{
		ctx:      ctx,
		editors:  NewEditorManager(),
		projects: NewProjectManager(loader, userDataDir),
		batch:    batch,
		closed:   make(chan struct{}),
	}
}

// Editors returns the editor manager.
func (f *Frame) Editors() *EditorManager { return f.editors }

// Projects returns the project manager.
func (f *Frame) Projects() *ProjectManager { return f.projects }

// IsBatch reports whether the frame drives a batch build or script.
func (f *Frame) IsBatch() bool { return f.batch }

// Open opens a project, a workspace or any other file. It reports whether
// the file was opened.
func (f *Frame) Open(path string, addToHistory bool) bool {
	logger := ctxlog.FromContext(f.ctx)
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ProjectExt:
		_, err = f.projects.LoadProject(f.ctx, path, true)
	case WorkspaceExt:
		err = f.projects.LoadWorkspace(f.ctx, path)
	default:
		_, err = f.editors.Open(path)
	}
	if err != nil {
		logger.Warn("Cannot open file.", "path", path, "error", err)
		return false
	}

	if addToHistory {
		f.mu.Lock()
		f.history = append(f.history, path)
		f.mu.Unlock()
	}
	logger.Debug("Opened file.", "path", path)
	return true
}

// OpenFile opens path and, for line > 0, moves the caret to that
// one-based line.
func (f *Frame) OpenFile(path string, line int) bool {
	if !f.Open(path, true) {
		return false
	}
	if line > 0 {
		f.editors.GotoLine(line - 1)
	}
	return true
}

// History returns the files opened with addToHistory.
func (f *Frame) History() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.history...)
}

// Show makes the frame visible.
func (f *Frame) Show() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = !f.batch
}

// IsShown reports whether the frame is visible.
func (f *Frame) IsShown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shown
}

// Iconize minimises (true) or restores the frame.
func (f *Frame) Iconize(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.iconized = on
}

// IsIconized reports whether the frame is minimised.
func (f *Frame) IsIconized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.iconized
}

// Raise brings the frame to the front.
func (f *Frame) Raise() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raised++
	ctxlog.FromContext(f.ctx).Info("Main window raised.")
}

// RaiseCount returns how often Raise was called.
func (f *Frame) RaiseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raised
}

// StartupDone marks the end of the bootstrap.
func (f *Frame) StartupDone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startupDone = true
}

// IsStartupDone reports whether StartupDone was called.
func (f *Frame) IsStartupDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startupDone
}

// Close closes the frame. It is safe to call more than once.
func (f *Frame) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.shown = false
		f.mu.Unlock()
		close(f.closed)
	})
}

// Closed is closed once the frame was closed.
func (f *Frame) Closed() <-chan struct{} {
	return f.closed
}
