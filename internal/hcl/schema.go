package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Settings ---

// settingsFile is the top-level structure of a personality settings file.
type settingsFile struct {
	ActiveUserVarSet *string            `hcl:"active_uservar_set,optional"`
	App              *appBlock          `hcl:"app,block"`
	Environment      *environmentBlock  `hcl:"environment,block"`
	Locale           *localeBlock       `hcl:"locale,block"`
	UserVarSets      []*userVarSetBlock `hcl:"uservar_set,block"`
	Debuggers        []*debuggerBlock   `hcl:"debugger,block"`
	Remain           hcl.Body           `hcl:",remain"`
}

type appBlock struct {
	DataPath *string `hcl:"data_path,optional"`
	Version  *string `hcl:"version,optional"`
}

// environmentBlock uses pointers so an absent attribute keeps its default.
type environmentBlock struct {
	UseIPC             *bool `hcl:"use_ipc,optional"`
	RaiseViaIPC        *bool `hcl:"raise_via_ipc,optional"`
	SingleInstance     *bool `hcl:"single_instance,optional"`
	ShowSplash         *bool `hcl:"show_splash,optional"`
	BlankWorkspace     *bool `hcl:"blank_workspace,optional"`
	CheckModifiedFiles *bool `hcl:"check_modified_files,optional"`
}

type localeBlock struct {
	Enable   *bool   `hcl:"enable,optional"`
	Language *string `hcl:"language,optional"`
}

type userVarSetBlock struct {
	Name string          `hcl:"name,label"`
	Vars []*userVarBlock `hcl:"var,block"`
}

type userVarBlock struct {
	Name    string            `hcl:"name,label"`
	Base    string            `hcl:"base,optional"`
	Members map[string]string `hcl:"members,optional"`
}

type debuggerBlock struct {
	Plugin  string                 `hcl:"plugin,label"`
	Configs []*debuggerConfigBlock `hcl:"config,block"`
}

type debuggerConfigBlock struct {
	Name       string   `hcl:"name,label"`
	Executable string   `hcl:"executable,optional"`
	Args       []string `hcl:"args,optional"`
}

// --- Projects and workspaces ---

type projectFile struct {
	Project *projectBlock `hcl:"project,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

type projectBlock struct {
	Name         string         `hcl:"name,label"`
	ActiveTarget string         `hcl:"active_target,optional"`
	Targets      []*targetBlock `hcl:"target,block"`
}

type targetBlock struct {
	Name    string            `hcl:"name,label"`
	WorkDir string            `hcl:"work_dir,optional"`
	Build   []string          `hcl:"build,optional"`
	Clean   []string          `hcl:"clean,optional"`
	Env     map[string]string `hcl:"env,optional"`
}

type workspaceFile struct {
	Workspace *workspaceBlock `hcl:"workspace,block"`
	Remain    hcl.Body        `hcl:",remain"`
}

type workspaceBlock struct {
	Name     string   `hcl:"name,label"`
	Projects []string `hcl:"projects"`
}
