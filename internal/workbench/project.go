package workbench

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/ctxlog"
	"github.com/specialistvlad/codehost/internal/fsutil"
)

const (
	// ProjectExt marks project files.
	ProjectExt = ".chproj"
	// WorkspaceExt marks workspace files.
	WorkspaceExt = ".chws"
	// DefaultWorkspaceName is the workspace loaded when the user did not
	// ask for a blank one.
	DefaultWorkspaceName = "default" + WorkspaceExt
)

// ProjectManager owns the loaded projects and workspace.
type ProjectManager struct {
	loader  config.Loader
	dataDir string

	mu        sync.RWMutex
	projects  []*config.Project
	active    *config.Project
	workspace *config.Workspace
	loading   bool
}

// NewProjectManager creates a manager. The default workspace lives in
// userDataDir.
func NewProjectManager(loader config.Loader, userDataDir string) *ProjectManager {
	return &ProjectManager{loader: loader, dataDir: userDataDir}
}

// LoadProject loads a project file. An already loaded project is only
// activated.
func (m *ProjectManager) LoadProject(ctx context.Context, path string, activate bool) (*config.Project, error) {
	if p := m.lookup(path); p != nil {
		if activate {
			m.setActive(p)
		}
		return p, nil
	}

	m.setLoading(true)
	defer m.setLoading(false)

	p, err := m.loader.LoadProject(ctx, path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.projects = append(m.projects, p)
	if activate || m.active == nil {
		m.active = p
	}
	m.mu.Unlock()
	ctxlog.FromContext(ctx).Debug("Project loaded.", "name", p.Name, "path", p.Path)
	return p, nil
}

// LoadWorkspace replaces the loaded projects with those of a workspace.
// The first project becomes active. Projects that fail to load are
// reported together; the others stay loaded.
func (m *ProjectManager) LoadWorkspace(ctx context.Context, path string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	ws, err := m.loader.LoadWorkspace(ctx, path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.projects = nil
	m.active = nil
	m.workspace = ws
	m.mu.Unlock()

	var failed []error
	for _, p := range ws.Projects {
		if _, err := m.loadMember(ctx, p); err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("workspace %s: %d project(s) failed to load: %w", ws.Name, len(failed), failed[0])
	}
	return nil
}

func (m *ProjectManager) loadMember(ctx context.Context, path string) (*config.Project, error) {
	p, err := m.loader.LoadProject(ctx, path)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, p)
	if m.active == nil {
		m.active = p
	}
	return p, nil
}

// DefaultWorkspacePath returns where the default workspace is kept.
func (m *ProjectManager) DefaultWorkspacePath() string {
	return filepath.Join(m.dataDir, DefaultWorkspaceName)
}

// LoadDefaultWorkspace loads the default workspace when it exists.
func (m *ProjectManager) LoadDefaultWorkspace(ctx context.Context) error {
	path := m.DefaultWorkspacePath()
	if !fsutil.Exists(path) {
		ctxlog.DebugFromContext(ctx).Debug("No default workspace.", "path", path)
		return nil
	}
	return m.LoadWorkspace(ctx, path)
}

// ActiveProject returns the active project, or nil.
func (m *ProjectManager) ActiveProject() *config.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Projects returns the loaded projects in loading order.
func (m *ProjectManager) Projects() []*config.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*config.Project(nil), m.projects...)
}

// Workspace returns the loaded workspace, or nil.
func (m *ProjectManager) Workspace() *config.Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workspace
}

// IsLoading reports whether a project or workspace is being loaded.
func (m *ProjectManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *ProjectManager) setLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = v
}

func (m *ProjectManager) setActive(p *config.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = p
}

func (m *ProjectManager) lookup(path string) *config.Project {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if p.Path == abs {
			return p
		}
	}
	return nil
}
