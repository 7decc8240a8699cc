package clidebugger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/debugger"
)

// ErrNoConfig is returned when attaching without a usable configuration.
var ErrNoConfig = errors.New("clidebugger: no active configuration")

// Debugger starts the configured executable against a process.
type Debugger struct {
	settings *config.DebuggerSettings
	logger   *slog.Logger

	// Command builds the process to start; exec.CommandContext by default.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd

	mu     sync.Mutex
	active int
}

var _ debugger.Plugin = (*Debugger)(nil)

// New creates a debugger plugin for one settings block.
func New(settings *config.DebuggerSettings, logger *slog.Logger) *Debugger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debugger{settings: settings, logger: logger, Command: exec.CommandContext}
}

func (d *Debugger) SettingsName() string { return d.settings.Plugin }

func (d *Debugger) GUIName() string {
	return strings.ToUpper(d.settings.Plugin) + " debugger"
}

func (d *Debugger) Configurations() []string {
	names := make([]string, 0, len(d.settings.Configs))
	for _, c := range d.settings.Configs {
		names = append(names, c.Name)
	}
	return names
}

func (d *Debugger) SetActiveConfig(index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = index
}

// ActiveConfig returns the selected configuration, or nil.
func (d *Debugger) ActiveConfig() *config.DebuggerConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active < 0 || d.active >= len(d.settings.Configs) {
		return nil
	}
	return d.settings.Configs[d.active]
}

// AttachArgs returns the arguments passed to the debugger executable: the
// configured args, then -p <pid> for a numeric target or the target itself.
func AttachArgs(cfg *config.DebuggerConfig, target string) []string {
	args := append([]string(nil), cfg.Args...)
	if _, err := strconv.Atoi(target); err == nil {
		return append(args, "-p", target)
	}
	return append(args, target)
}

// AttachToProcess starts the debugger on the terminal. It does not wait for
// the debugger to exit.
func (d *Debugger) AttachToProcess(ctx context.Context, target string) error {
	cfg := d.ActiveConfig()
	if cfg == nil || cfg.Executable == "" {
		return ErrNoConfig
	}

	args := AttachArgs(cfg, target)
	cmd := d.Command(context.WithoutCancel(ctx), cfg.Executable, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("clidebugger: start %s: %w", cfg.Executable, err)
	}
	d.logger.Info("Debugger attached.", "plugin", d.settings.Plugin, "config", cfg.Name, "target", target, "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			d.logger.Debug("Debugger exited.", "plugin", d.settings.Plugin, "error", err)
		}
	}()
	return nil
}
