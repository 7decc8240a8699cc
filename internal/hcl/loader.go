package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/ctxlog"
)

// Loader is the HCL-specific implementation of config.Loader and
// config.Saver.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

var (
	_ config.Loader = (*Loader)(nil)
	_ config.Saver  = (*Loader)(nil)
)

// LoadSettings reads a personality settings file.
func (l *Loader) LoadSettings(ctx context.Context, path string) (*config.Settings, error) {
	logger := ctxlog.DebugFromContext(ctx)

	file, err := l.parse(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("Settings file not found, using defaults.", "path", path)
		return config.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}

	var root settingsFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	s := l.translateSettings(&root)
	logger.Debug("Settings loaded.", "path", path, "uservar_sets", len(s.UserVarSets), "debuggers", len(s.Debuggers))
	return s, nil
}

// LoadProject reads a project file.
func (l *Loader) LoadProject(ctx context.Context, path string) (*config.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file, err := l.parse(abs)
	if err != nil {
		return nil, err
	}

	var root projectFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", abs, diags)
	}
	if root.Project == nil {
		return nil, fmt.Errorf("project file %s has no project block", abs)
	}

	p := l.translateProject(abs, root.Project)
	ctxlog.DebugFromContext(ctx).Debug("Project loaded.", "path", abs, "name", p.Name, "targets", len(p.Targets))
	return p, nil
}

// LoadWorkspace reads a workspace file.
func (l *Loader) LoadWorkspace(ctx context.Context, path string) (*config.Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file, err := l.parse(abs)
	if err != nil {
		return nil, err
	}

	var root workspaceFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode workspace file %s: %w", abs, diags)
	}
	if root.Workspace == nil {
		return nil, fmt.Errorf("workspace file %s has no workspace block", abs)
	}

	ws := &config.Workspace{Name: root.Workspace.Name, Path: abs}
	for _, p := range root.Workspace.Projects {
		ws.Projects = append(ws.Projects, resolve(filepath.Dir(abs), p))
	}
	ctxlog.DebugFromContext(ctx).Debug("Workspace loaded.", "path", abs, "projects", len(ws.Projects))
	return ws, nil
}

// LoadScript parses a script file, keeping the blocks in file order.
func (l *Loader) LoadScript(ctx context.Context, path string) (*config.Script, error) {
	file, err := l.parse(path)
	if err != nil {
		return nil, err
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("script %s: unsupported syntax", path)
	}
	if len(body.Attributes) > 0 {
		for name, attr := range body.Attributes {
			return nil, fmt.Errorf("%s: unexpected top-level attribute %q", attr.SrcRange, name)
		}
	}

	script := &config.Script{Path: path}
	for _, block := range body.Blocks {
		if len(block.Body.Blocks) > 0 {
			return nil, fmt.Errorf("%s: %s blocks cannot be nested", block.DefRange(), block.Type)
		}
		action := &config.Action{
			Kind:       block.Type,
			Attributes: make(map[string]hcl.Expression, len(block.Body.Attributes)),
			Range:      block.DefRange(),
		}
		for name, attr := range block.Body.Attributes {
			action.Attributes[name] = attr.Expr
		}
		script.Actions = append(script.Actions, action)
	}
	ctxlog.DebugFromContext(ctx).Debug("Script parsed.", "path", path, "actions", len(script.Actions))
	return script, nil
}

// parse reads a single HCL file. A missing file keeps os.ErrNotExist in
// the error chain.
func (l *Loader) parse(path string) (*hcl.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return file, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
