package hcl

import (
	"path/filepath"

	"github.com/specialistvlad/codehost/internal/config"
)

// translateSettings overlays the decoded file on the defaults.
func (l *Loader) translateSettings(f *settingsFile) *config.Settings {
	s := config.DefaultSettings()

	if f.ActiveUserVarSet != nil && *f.ActiveUserVarSet != "" {
		s.ActiveUserVarSet = *f.ActiveUserVarSet
	}
	if f.App != nil {
		setString(&s.App.DataPath, f.App.DataPath)
		setString(&s.App.Version, f.App.Version)
	}
	if e := f.Environment; e != nil {
		setBool(&s.Environment.UseIPC, e.UseIPC)
		setBool(&s.Environment.RaiseViaIPC, e.RaiseViaIPC)
		setBool(&s.Environment.SingleInstance, e.SingleInstance)
		setBool(&s.Environment.ShowSplash, e.ShowSplash)
		setBool(&s.Environment.BlankWorkspace, e.BlankWorkspace)
		setBool(&s.Environment.CheckModifiedFiles, e.CheckModifiedFiles)
	}
	if f.Locale != nil {
		setBool(&s.Locale.Enable, f.Locale.Enable)
		setString(&s.Locale.Language, f.Locale.Language)
	}

	for _, set := range f.UserVarSets {
		out := &config.UserVarSet{Name: set.Name}
		for _, v := range set.Vars {
			out.Vars = append(out.Vars, &config.UserVar{
				Name:    v.Name,
				Base:    v.Base,
				Members: v.Members,
			})
		}
		s.UserVarSets = append(s.UserVarSets, out)
	}

	for _, d := range f.Debuggers {
		out := &config.DebuggerSettings{Plugin: d.Plugin}
		for _, c := range d.Configs {
			out.Configs = append(out.Configs, &config.DebuggerConfig{
				Name:       c.Name,
				Executable: c.Executable,
				Args:       c.Args,
			})
		}
		s.Debuggers = append(s.Debuggers, out)
	}
	return s
}

// translateProject resolves target working directories against the
// project directory. An unset active target falls back to the first one.
func (l *Loader) translateProject(path string, b *projectBlock) *config.Project {
	dir := filepath.Dir(path)
	p := &config.Project{
		Name:         b.Name,
		Path:         path,
		ActiveTarget: b.ActiveTarget,
	}
	for _, t := range b.Targets {
		workDir := dir
		if t.WorkDir != "" {
			workDir = resolve(dir, t.WorkDir)
		}
		p.Targets = append(p.Targets, &config.Target{
			Name:    t.Name,
			WorkDir: workDir,
			Build:   t.Build,
			Clean:   t.Clean,
			Env:     t.Env,
		})
	}
	if p.ActiveTarget == "" && len(p.Targets) > 0 {
		p.ActiveTarget = p.Targets[0].Name
	}
	return p
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
