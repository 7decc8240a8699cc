package app

import (
	"context"

	"github.com/specialistvlad/codehost/internal/events"
	"github.com/specialistvlad/codehost/internal/ipc"
)

// ipcHandler serves the IPC server. Connections run on their own
// goroutines, so every effect is posted to the event loop.
type ipcHandler struct {
	a *App
}

var _ ipc.Handler = (*ipcHandler)(nil)

func (h *ipcHandler) Execute(ctx context.Context, msg ipc.Message) bool {
	a := h.a
	switch m := msg.(type) {
	case ipc.Open:
		a.loop.Post(func() { a.delayed = append(a.delayed, m.Path) })
	case ipc.OpenLine:
		a.loop.Post(func() { a.autoFile = m.Path })
	case ipc.Raise:
		a.loop.Post(func() {
			if a.frame == nil {
				return
			}
			if a.frame.IsIconized() {
				a.frame.Iconize(false)
			}
			a.frame.Raise()
		})
	case ipc.CmdLine:
		a.loop.Post(func() { a.handleCmdLine(m) })
	default:
		return false
	}
	return true
}

// Disconnect loads what the client queued once startup is over; during
// startup the queue is picked up by the bootstrap itself.
func (h *ipcHandler) Disconnect(ctx context.Context) {
	a := h.a
	a.loop.Post(func() {
		if a.frame == nil || !a.frame.IsStartupDone() || a.frame.Projects().IsLoading() {
			return
		}
		a.loadDelayedFiles(a.deps.WorkDir)
		a.attachDebugger(ctx)
	})
}

// handleCmdLine re-runs the document phase for a forwarded command line.
func (a *App) handleCmdLine(m ipc.CmdLine) {
	if m.Args == "" || m.CWD == "" || a.frame == nil {
		return
	}
	cfg, err := a.deps.ParseCommandLine(m.Args)
	if err != nil {
		a.logger.Warn("Cannot parse forwarded command line.", "cmdline", m.Args, "error", err)
		return
	}
	for _, opt := range cfg.UnknownOptions {
		a.logger.Warn("Unknown command-line option.", "option", opt)
	}
	if err := a.vars.ParseCommandLine(cfg.UserVarSet, cfg.UserVarDefs); err != nil {
		a.logger.Warn("Ignoring invalid user variable definitions.", "error", err)
	}
	a.parseDocuments(cfg, m.CWD)
	a.bus.Publish(events.Event{Type: events.AppCmdLine, CmdLine: m.Args, CWD: m.CWD})
}
