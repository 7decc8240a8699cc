package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/codehost/internal/debugger"
)

// attachDebugger attaches the debugger requested with --dbg-attach and
// --dbg-config. The values are consumed; failures are only logged.
func (a *App) attachDebugger(ctx context.Context) {
	attach, config := a.dbgAttach, a.dbgConfig
	a.dbgAttach, a.dbgConfig = "", ""

	if attach == "" && config == "" {
		return
	}
	if attach == "" || config == "" {
		a.logger.Error("For attaching to work you need to provide both '--dbg-attach' and '--dbg-config'")
		a.logger.Error(fmt.Sprintf("    --dbg-attach='%s'", attach))
		a.logger.Error(fmt.Sprintf("    --dbg-config='%s'", config))
		return
	}

	a.logger.Info(fmt.Sprintf("Attach debugger '%s' to '%s'", config, attach))

	pluginName, configName, ok := strings.Cut(config, ":")
	if !ok || pluginName == "" {
		a.logger.Error("No delimiter found. The --dbg-config format is 'plugin-name:config-name'")
		return
	}

	mgr := a.plugins.Debuggers()
	if len(mgr.Plugins()) == 0 {
		a.logger.Error("No debugger plugins loaded!")
		return
	}

	p, found := mgr.Lookup(pluginName)
	if !found {
		a.logger.Error(fmt.Sprintf("Debugger plugin '%s' not found!", pluginName))
		a.logger.Info("Available plugins:")
		for _, p := range mgr.Plugins() {
			a.logger.Info(fmt.Sprintf("    '%s' (%s)", p.SettingsName(), p.GUIName()))
		}
		return
	}

	idx, found := debugger.ConfigIndex(p, configName)
	if !found {
		a.logger.Error(fmt.Sprintf("Debugger configuration '%s' not found!", configName))
		a.logger.Info("Available configurations:")
		for _, c := range p.Configurations() {
			a.logger.Info(fmt.Sprintf("    '%s'", c))
		}
		return
	}

	a.logger.Info("Debugger plugin and configuration found. Attaching!!!")
	p.SetActiveConfig(idx)
	if err := p.AttachToProcess(ctx, attach); err != nil {
		a.logger.Error("Attaching the debugger failed.", "error", err)
	}
}
