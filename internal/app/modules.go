package app

import (
	"github.com/specialistvlad/codehost/internal/plugin"
	"github.com/specialistvlad/codehost/modules/clidebugger"
	"github.com/specialistvlad/codehost/modules/shellcompiler"
)

// coreModules is the definitive list of all plugin modules that are
// compiled into the codehost binary.
var coreModules = []plugin.Module{
	&shellcompiler.Module{},
	&clidebugger.Module{},
}
