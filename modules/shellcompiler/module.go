// Package shellcompiler builds project targets by running their command
// lists through the system shell.
package shellcompiler

import (
	"github.com/specialistvlad/codehost/internal/plugin"
)

// Name is the registered plugin name.
const Name = "shell"

// Module implements the plugin.Module interface for this package.
type Module struct{}

// Register registers the shell compiler with the registry.
func (m *Module) Register(r *plugin.Registry) {
	h := r.Host()
	r.RegisterCompiler(Name, New(h.Projects, h.Bus, h.Output, h.Logger))
}
