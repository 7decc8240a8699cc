// Package debugger defines debugger plugins and the manager that looks
// them up by their settings name.
package debugger

import (
	"context"
	"sort"
)

// Plugin attaches a debugger to a running process.
type Plugin interface {
	// SettingsName identifies the plugin in settings and on the command
	// line (--dbg-config=<settings name>:<config>).
	SettingsName() string
	GUIName() string
	Configurations() []string
	SetActiveConfig(index int)
	AttachToProcess(ctx context.Context, target string) error
}

// Manager holds the registered debugger plugins.
type Manager struct {
	plugins []Plugin
}

// NewManager creates a manager over plugins, in registration order.
func NewManager(plugins ...Plugin) *Manager {
	return &Manager{plugins: plugins}
}

// Plugins returns the registered plugins.
func (m *Manager) Plugins() []Plugin {
	return m.plugins
}

// Lookup finds a plugin by settings name.
func (m *Manager) Lookup(settingsName string) (Plugin, bool) {
	for _, p := range m.plugins {
		if p.SettingsName() == settingsName {
			return p, true
		}
	}
	return nil, false
}

// Names returns the settings names of every plugin, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.plugins))
	for _, p := range m.plugins {
		names = append(names, p.SettingsName())
	}
	sort.Strings(names)
	return names
}

// ConfigIndex returns the index of the configuration called name.
func ConfigIndex(p Plugin, name string) (int, bool) {
	for i, c := range p.Configurations() {
		if c == name {
			return i, true
		}
	}
	return -1, false
}
