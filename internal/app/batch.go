package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/codehost/internal/compiler"
	"github.com/specialistvlad/codehost/internal/ui"
)

// batchTargetAsk asks for the build target interactively.
const batchTargetAsk = "ask"

// Exit codes of the batch job when no build was started.
const (
	exitNoBatch    = -1
	exitNoCompiler = 3
)

// batchJob starts the requested build on the first compiler plugin. It
// runs on the event loop once startup is complete.
func (a *App) batchJob(ctx context.Context) int {
	if !a.batch {
		return exitNoBatch
	}
	comp := a.plugins.FirstCompiler()
	if comp == nil {
		a.logger.Error("No compiler plugin loaded, cannot build.")
		a.batchExitCode = exitNoCompiler
		a.frame.Close()
		return exitNoCompiler
	}

	target := a.cfg.Target
	if !a.cfg.Clean && strings.EqualFold(target, batchTargetAsk) {
		chosen, ok := a.askTarget(ctx)
		if !ok {
			a.batchExitCode = 0
			a.frame.Close()
			return 0
		}
		target = chosen
	}

	a.openBatchWindow(ctx, comp, target)

	var err error
	switch {
	case a.cfg.Rebuild && a.hasWorkspace:
		err = comp.RebuildWorkspace(ctx, target)
	case a.cfg.Rebuild:
		err = comp.Rebuild(ctx, target)
	case a.cfg.Build && a.hasWorkspace:
		err = comp.BuildWorkspace(ctx, target)
	case a.cfg.Build:
		err = comp.Build(ctx, target)
	case a.cfg.Clean && a.hasWorkspace:
		err = comp.CleanWorkspace(ctx, target)
	case a.cfg.Clean:
		err = comp.Clean(ctx, target)
	}
	if err != nil {
		a.logger.Error("Batch build could not start.", "error", err)
		a.compilerOutput(err.Error())
		a.onBatchBuildDone(1)
	}
	return 0
}

func (a *App) askTarget(ctx context.Context) (string, bool) {
	p := a.frame.Projects().ActiveProject()
	if p == nil {
		a.logger.Warn("No active project to choose a target from, building the default target.")
		return "", true
	}
	names := append([]string{compiler.AllTargets}, p.TargetNames()...)
	choice, ok, err := a.deps.Choose(ctx, "Select target", names)
	if err != nil {
		a.logger.Error("Cannot choose a target.", "error", err)
		return "", false
	}
	return choice, ok
}

func (a *App) openBatchWindow(ctx context.Context, comp compiler.Plugin, target string) {
	last := ""
	if n := len(a.cfg.Args); n > 0 {
		last = filepath.Base(a.cfg.Args[n-1])
	}
	w := ui.OpenBatchWindow(ctx, a.deps.Terminal, ui.BatchOptions{
		Title: fmt.Sprintf("Building '%s' (target '%s')", last, target),
		Stop: func() error {
			if !comp.IsRunning() {
				return nil
			}
			return comp.KillProcess()
		},
		OnClose: func() { a.loop.Post(a.frame.Close) },
	})
	a.batchWindow.Store(w)
}

// onBatchBuildDone runs once, when the compiler announces the end of the
// batch build.
func (a *App) onBatchBuildDone(code int) {
	if a.batchDone {
		return
	}
	a.batchDone = true
	a.batchExitCode = code
	a.logger.Info("Batch build finished.", "exit_code", code)

	w := a.batchWindow.Load()
	if a.cfg.BatchBuildNotify {
		a.notifyBatchResult(w, code)
	} else {
		ui.Bell(a.deps.Terminal)
	}

	autoClose := !a.cfg.NoBatchWindowClose
	if w == nil {
		if autoClose {
			a.frame.Close()
		}
		return
	}
	w.Finished(code, !autoClose)
}

func (a *App) notifyBatchResult(w *ui.BatchWindow, code int) {
	msg := "Batch build ended.\n"
	kind := ui.KindInfo
	if code != 0 {
		msg = "Batch build stopped with errors.\n"
		kind = ui.KindWarning
	}
	msg += fmt.Sprintf("Process exited with status code %d.", code)

	// a running batch window owns the terminal
	if w != nil && a.deps.Terminal.Interactive {
		w.Append(msg)
		return
	}
	ui.MessageBox(a.deps.Terminal, kind, Name, msg)
}
