package app

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/codehost/internal/fsutil"
)

// parseDocuments runs the document phase of cfg against cwd: projects and
// existing files are queued, a workspace replaces the queue and ends the
// scan. It also takes over --file and the debugger attach values.
func (a *App) parseDocuments(cfg *Config, cwd string) {
	a.hasProject = false
	a.hasWorkspace = false

	if cfg.File != "" {
		a.autoFile = cfg.File
		if !filepath.IsAbs(cfg.File) && cwd != "" {
			a.autoFile = filepath.Join(cwd, cfg.File)
		}
	}

	for _, doc := range cfg.Documents {
		path := fsutil.Normalize(doc, cwd)
		switch strings.ToLower(filepath.Ext(path)) {
		case ProjectExt:
			a.hasProject = true
			a.delayed = append(a.delayed, path)
		case WorkspaceExt:
			a.hasWorkspace = true
			a.delayed = append(a.delayed[:0], path)
			a.takeDebuggerArgs(cfg)
			return
		default:
			if !fsutil.Exists(path) {
				a.debug.Debug("Skipping missing file.", "path", path)
				continue
			}
			a.delayed = append(a.delayed, path)
		}
	}
	a.takeDebuggerArgs(cfg)
}

func (a *App) takeDebuggerArgs(cfg *Config) {
	if cfg.DbgAttach != "" {
		a.dbgAttach = cfg.DbgAttach
	}
	if cfg.DbgConfig != "" {
		a.dbgConfig = cfg.DbgConfig
	}
}

// loadDelayedFiles opens every queued file once, in sorted order, then the
// --file target.
func (a *App) loadDelayedFiles(cwd string) {
	files := slices.Clone(a.delayed)
	slices.Sort(files)
	files = slices.Compact(files)
	a.delayed = nil
	for _, f := range files {
		a.frame.Open(f, true)
	}

	if a.autoFile == "" {
		return
	}
	path, line, hasLine := splitAutoFile(a.autoFile)
	a.autoFile = ""
	path = fsutil.Normalize(path, cwd)
	if a.frame.Open(path, false) && hasLine {
		a.frame.Editors().GotoLine(line - 1)
	}
}

// splitAutoFile splits "path[:line]". A suffix that is not a number stays
// part of the path, which keeps drive letters intact.
func splitAutoFile(s string) (path string, line int, ok bool) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
