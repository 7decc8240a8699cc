package scripting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/ctxlog"
	"github.com/specialistvlad/codehost/internal/uservars"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Opener opens a file in the editor, at line when line > 0.
type Opener interface {
	OpenFile(path string, line int) bool
}

// Runner executes scripts against the running application.
type Runner struct {
	opener Opener
	vars   *uservars.Manager
	// Environ supplies the env object; os.Environ by default.
	Environ func() []string
}

// NewRunner creates a runner.
func NewRunner(opener Opener, vars *uservars.Manager) *Runner {
	return &Runner{opener: opener, vars: vars, Environ: os.Environ}
}

// Run checks s and then executes its actions in order. Errors of
// individual actions are collected and returned together.
func (r *Runner) Run(ctx context.Context, s *config.Script) error {
	logger := ctxlog.FromContext(ctx)
	if err := Check(s); err != nil {
		return err
	}

	var errs []error
	for _, a := range s.Actions {
		evalCtx := r.evalContext()
		if err := r.runAction(ctx, evalCtx, filepath.Dir(s.Path), a); err != nil {
			logger.Error("Script action failed.", "script", s.Path, "action", a.Kind, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("script %s: %w", s.Path, errors.Join(errs...))
	}
	return nil
}

// evalContext is rebuilt per action so uservar blocks affect the actions
// that follow them.
func (r *Runner) evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range r.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && hclsyntax.ValidIdentifier(k) {
			env[k] = cty.StringVal(v)
		}
	}
	uv := make(map[string]cty.Value)
	if r.vars != nil {
		for k, v := range r.vars.Values() {
			uv[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":     cty.ObjectVal(env),
			"uservar": cty.ObjectVal(uv),
		},
		Functions: Functions(),
	}
}

func (r *Runner) runAction(ctx context.Context, evalCtx *hcl.EvalContext, dir string, a *config.Action) error {
	str := func(name string) (string, error) {
		expr, ok := a.Attributes[name]
		if !ok {
			return "", nil
		}
		return evalString(evalCtx, expr)
	}

	switch a.Kind {
	case "log":
		msg, err := str("message")
		if err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Info(msg)
		return nil

	case "open":
		path, err := str("path")
		if err != nil {
			return err
		}
		line := 0
		if expr, ok := a.Attributes["line"]; ok {
			if line, err = evalInt(evalCtx, expr); err != nil {
				return err
			}
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if r.opener == nil || !r.opener.OpenFile(path, line) {
			return fmt.Errorf("%s: cannot open %s", a.Range, path)
		}
		return nil

	case "uservar":
		var d uservars.Definition
		var err error
		if d.Set, err = str("set"); err != nil {
			return err
		}
		if d.Name, err = str("name"); err != nil {
			return err
		}
		if d.Member, err = str("member"); err != nil {
			return err
		}
		if d.Value, err = str("value"); err != nil {
			return err
		}
		if d.Member == "" {
			d.Member = uservars.BaseMember
		}
		d.Member = strings.ToLower(d.Member)
		if r.vars == nil {
			return fmt.Errorf("%s: user variables are not available", a.Range)
		}
		r.vars.Define(d)
		return nil

	case "exec":
		command, err := str("command")
		if err != nil {
			return err
		}
		workDir, err := str("work_dir")
		if err != nil {
			return err
		}
		if workDir == "" {
			workDir = dir
		} else if !filepath.IsAbs(workDir) {
			workDir = filepath.Join(dir, workDir)
		}
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Dir = workDir
		cmd.Stdout = &out
		cmd.Stderr = &out
		runErr := cmd.Run()
		ctxlog.FromContext(ctx).Info("Script command finished.", "command", command, "output", strings.TrimSpace(out.String()))
		if runErr != nil {
			return fmt.Errorf("%s: %q: %w", a.Range, command, runErr)
		}
		return nil
	}
	return fmt.Errorf("%s: unknown action %q", a.Range, a.Kind)
}

func evalString(evalCtx *hcl.EvalContext, expr hcl.Expression) (string, error) {
	v, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	v, err := convert.Convert(v, cty.String)
	if err != nil || v.IsNull() || !v.IsKnown() {
		return "", fmt.Errorf("%s: expected a string", expr.Range())
	}
	return v.AsString(), nil
}

func evalInt(evalCtx *hcl.EvalContext, expr hcl.Expression) (int, error) {
	v, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	v, err := convert.Convert(v, cty.Number)
	if err != nil || v.IsNull() {
		return 0, fmt.Errorf("%s: expected a number", expr.Range())
	}
	var n int
	if err := gocty.FromCtyValue(v, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return n, nil
}
