// Package compiler defines the contract between the bootstrap and the
// plugin that builds projects, plus the target selection rules shared by
// implementations.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/codehost/internal/config"
)

// AllTargets selects every target of a project.
const AllTargets = "all"

var (
	// ErrBusy is returned when a build is started while one is running.
	ErrBusy = errors.New("compiler: a build is already running")
	// ErrNoProject is returned when there is nothing to build.
	ErrNoProject = errors.New("compiler: no project loaded")
	// ErrUnknownTarget is returned for a target the project does not define.
	ErrUnknownTarget = errors.New("compiler: unknown target")
)

// Plugin builds the projects of the workbench. Operations start the work
// and return; completion is announced with a CompilerFinished event.
type Plugin interface {
	Name() string

	Build(ctx context.Context, target string) error
	Rebuild(ctx context.Context, target string) error
	Clean(ctx context.Context, target string) error
	BuildWorkspace(ctx context.Context, target string) error
	RebuildWorkspace(ctx context.Context, target string) error
	CleanWorkspace(ctx context.Context, target string) error

	IsRunning() bool
	KillProcess() error
	ExitCode() int
}

// ProjectSource exposes the loaded projects to a compiler.
type ProjectSource interface {
	ActiveProject() *config.Project
	Projects() []*config.Project
}

// Op is the kind of work requested.
type Op int

const (
	OpBuild Op = iota
	OpRebuild
	OpClean
)

func (o Op) String() string {
	switch o {
	case OpBuild:
		return "build"
	case OpRebuild:
		return "rebuild"
	case OpClean:
		return "clean"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// SelectTargets resolves target against p: empty means the active target,
// AllTargets means every target in declaration order.
func SelectTargets(p *config.Project, target string) ([]*config.Target, error) {
	switch target {
	case AllTargets:
		return p.Targets, nil
	case "":
		target = p.ActiveTarget
	}
	t, ok := p.Target(target)
	if !ok {
		return nil, fmt.Errorf("%w: %q in project %q", ErrUnknownTarget, target, p.Name)
	}
	return []*config.Target{t}, nil
}

// Commands returns the shell commands op runs for t. A rebuild cleans
// first.
func Commands(op Op, t *config.Target) []string {
	switch op {
	case OpClean:
		return t.Clean
	case OpRebuild:
		cmds := make([]string, 0, len(t.Clean)+len(t.Build))
		cmds = append(cmds, t.Clean...)
		return append(cmds, t.Build...)
	default:
		return t.Build
	}
}
