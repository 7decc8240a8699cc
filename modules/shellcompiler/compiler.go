package shellcompiler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/codehost/internal/compiler"
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/events"
)

// killGrace bounds how long output pipes are drained after a command was
// killed; grandchildren may keep them open.
const killGrace = time.Second

// step is one shell command with the environment of its target.
type step struct {
	project string
	target  string
	dir     string
	env     []string
	command string
}

// Compiler runs build steps one at a time on a background goroutine.
type Compiler struct {
	projects compiler.ProjectSource
	bus      *events.Bus
	output   func(string)
	logger   *slog.Logger

	// Shell and ShellFlag start each command; "sh" and "-c" by default.
	Shell     string
	ShellFlag string

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	exitCode int
	done     chan struct{}
}

var _ compiler.Plugin = (*Compiler)(nil)

// New creates an idle compiler.
func New(projects compiler.ProjectSource, bus *events.Bus, output func(string), logger *slog.Logger) *Compiler {
	if output == nil {
		output = func(string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		projects:  projects,
		bus:       bus,
		output:    output,
		logger:    logger,
		Shell:     "sh",
		ShellFlag: "-c",
	}
}

func (c *Compiler) Name() string { return Name }

func (c *Compiler) Build(ctx context.Context, target string) error {
	return c.startProject(ctx, compiler.OpBuild, target)
}

func (c *Compiler) Rebuild(ctx context.Context, target string) error {
	return c.startProject(ctx, compiler.OpRebuild, target)
}

func (c *Compiler) Clean(ctx context.Context, target string) error {
	return c.startProject(ctx, compiler.OpClean, target)
}

func (c *Compiler) BuildWorkspace(ctx context.Context, target string) error {
	return c.startWorkspace(ctx, compiler.OpBuild, target)
}

func (c *Compiler) RebuildWorkspace(ctx context.Context, target string) error {
	return c.startWorkspace(ctx, compiler.OpRebuild, target)
}

func (c *Compiler) CleanWorkspace(ctx context.Context, target string) error {
	return c.startWorkspace(ctx, compiler.OpClean, target)
}

// IsRunning reports whether a build is in progress.
func (c *Compiler) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// KillProcess stops the running build. The finished event still fires.
func (c *Compiler) KillProcess() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	return nil
}

// ExitCode returns the exit code of the last finished build.
func (c *Compiler) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// Wait blocks until the current build, if any, has finished.
func (c *Compiler) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Compiler) startProject(ctx context.Context, op compiler.Op, target string) error {
	p := c.projects.ActiveProject()
	if p == nil {
		return compiler.ErrNoProject
	}
	steps, err := plan(op, []*config.Project{p}, target)
	if err != nil {
		return err
	}
	return c.start(ctx, op, steps)
}

func (c *Compiler) startWorkspace(ctx context.Context, op compiler.Op, target string) error {
	projects := c.projects.Projects()
	if len(projects) == 0 {
		return compiler.ErrNoProject
	}
	steps, err := plan(op, projects, target)
	if err != nil {
		return err
	}
	return c.start(ctx, op, steps)
}

// plan expands op over projects. In a workspace a named target that a
// project lacks is skipped rather than failing the whole build, but at
// least one project must define it.
func plan(op compiler.Op, projects []*config.Project, target string) ([]step, error) {
	var (
		steps   []step
		matched int
	)
	for _, p := range projects {
		targets, err := compiler.SelectTargets(p, target)
		if err != nil {
			if len(projects) > 1 && errors.Is(err, compiler.ErrUnknownTarget) {
				continue
			}
			return nil, err
		}
		matched++
		for _, t := range targets {
			dir := t.WorkDir
			if dir == "" {
				dir = p.Dir()
			}
			env := environ(t.Env)
			for _, cmd := range compiler.Commands(op, t) {
				steps = append(steps, step{project: p.Name, target: t.Name, dir: dir, env: env, command: cmd})
			}
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: %q in workspace", compiler.ErrUnknownTarget, target)
	}
	return steps, nil
}

func environ(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

func (c *Compiler) start(ctx context.Context, op compiler.Op, steps []step) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return compiler.ErrBusy
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.logger.Info("Compiler started.", "op", op, "steps", len(steps))
	go func() {
		defer close(done)
		code := c.run(runCtx, steps)
		cancel()

		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.exitCode = code
		c.mu.Unlock()

		c.logger.Info("Compiler finished.", "op", op, "exit_code", code)
		if c.bus != nil {
			c.bus.Publish(events.Event{Type: events.CompilerFinished, Plugin: Name, ExitCode: code})
		}
	}()
	return nil
}

// run executes steps in order and stops at the first failure.
func (c *Compiler) run(ctx context.Context, steps []step) int {
	for _, s := range steps {
		if ctx.Err() != nil {
			c.output("Build stopped.")
			return 1
		}
		c.output(fmt.Sprintf("-------------- %s: %s --------------", s.project, s.target))
		c.output(s.command)
		if code := c.exec(ctx, s); code != 0 {
			c.output(fmt.Sprintf("Process terminated with status %d", code))
			return code
		}
	}
	return 0
}

func (c *Compiler) exec(ctx context.Context, s step) int {
	cmd := exec.CommandContext(ctx, c.Shell, c.ShellFlag, s.command)
	cmd.Dir = filepath.Clean(s.dir)
	cmd.Env = s.env
	cmd.WaitDelay = killGrace

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	scanned := make(chan struct{})
	go func() {
		defer close(scanned)
		sc := bufio.NewScanner(pr)
		for sc.Scan() {
			c.output(sc.Text())
		}
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-scanned

	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	c.output(err.Error())
	return 1
}
