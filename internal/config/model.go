package config

import (
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
)

// DefaultPersonality is always available, even without a settings file.
const DefaultPersonality = "default"

// DefaultUserVarSet is the user-variable set used when none is selected.
const DefaultUserVarSet = "default"

// SettingsFileSuffix is appended to a personality name to form its file.
const SettingsFileSuffix = ".conf.hcl"

// Settings is the persistent configuration of one personality.
type Settings struct {
	App         AppSection
	Environment EnvironmentSection
	Locale      LocaleSection

	ActiveUserVarSet string
	UserVarSets      []*UserVarSet
	Debuggers        []*DebuggerSettings
}

// AppSection holds values the bootstrap records about itself.
type AppSection struct {
	DataPath string
	Version  string
}

// EnvironmentSection holds the startup behaviour switches.
type EnvironmentSection struct {
	UseIPC             bool
	RaiseViaIPC        bool
	SingleInstance     bool
	ShowSplash         bool
	BlankWorkspace     bool
	CheckModifiedFiles bool
}

// LocaleSection selects the translation catalogs.
type LocaleSection struct {
	Enable   bool
	Language string
}

// UserVarSet is a named group of global user variables.
type UserVarSet struct {
	Name string
	Vars []*UserVar
}

// UserVar is one global user variable: a base value plus named members.
type UserVar struct {
	Name    string
	Base    string
	Members map[string]string
}

// DebuggerSettings lists the configurations of one debugger plugin.
type DebuggerSettings struct {
	Plugin  string
	Configs []*DebuggerConfig
}

// DebuggerConfig is one named debugger configuration.
type DebuggerConfig struct {
	Name       string
	Executable string
	Args       []string
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Environment: EnvironmentSection{
			UseIPC:             true,
			RaiseViaIPC:        true,
			SingleInstance:     true,
			ShowSplash:         true,
			BlankWorkspace:     true,
			CheckModifiedFiles: true,
		},
		ActiveUserVarSet: DefaultUserVarSet,
	}
}

// SettingsPath returns the settings file of personality inside dir.
func SettingsPath(dir, personality string) string {
	return filepath.Join(dir, personality+SettingsFileSuffix)
}

// Project is a buildable unit with named targets.
type Project struct {
	Name         string
	Path         string
	ActiveTarget string
	Targets      []*Target
}

// Dir returns the directory holding the project file.
func (p *Project) Dir() string {
	return filepath.Dir(p.Path)
}

// Target looks up a build target by name.
func (p *Project) Target(name string) (*Target, bool) {
	for _, t := range p.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TargetNames returns the target names in declaration order.
func (p *Project) TargetNames() []string {
	names := make([]string, 0, len(p.Targets))
	for _, t := range p.Targets {
		names = append(names, t.Name)
	}
	return names
}

// Target is a named set of build and clean commands.
type Target struct {
	Name    string
	WorkDir string
	Build   []string
	Clean   []string
	Env     map[string]string
}

// Workspace groups projects. Projects holds absolute paths.
type Workspace struct {
	Name     string
	Path     string
	Projects []string
}

// Script is a parsed, not yet evaluated, script file.
type Script struct {
	Path    string
	Actions []*Action
}

// Action is one block of a script. Attributes are evaluated at run time.
type Action struct {
	Kind       string
	Attributes map[string]hcl.Expression
	Range      hcl.Range
}
