// Package clidebugger attaches command-line debuggers (gdb, lldb, ...) to
// running processes.
package clidebugger

import (
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/plugin"
)

// Module implements the plugin.Module interface for this package.
type Module struct{}

// Register registers one plugin per debugger block of the settings, or a
// gdb plugin with a single default configuration when there is none.
func (m *Module) Register(r *plugin.Registry) {
	h := r.Host()
	var blocks []*config.DebuggerSettings
	if h.Settings != nil {
		blocks = h.Settings.Debuggers
	}
	if len(blocks) == 0 {
		blocks = []*config.DebuggerSettings{DefaultSettings()}
	}
	for _, b := range blocks {
		r.RegisterDebugger(New(b, h.Logger))
	}
}

// DefaultSettings describes gdb with one configuration.
func DefaultSettings() *config.DebuggerSettings {
	return &config.DebuggerSettings{
		Plugin: "gdb",
		Configs: []*config.DebuggerConfig{
			{Name: "Default", Executable: "gdb", Args: []string{"-q"}},
		},
	}
}
