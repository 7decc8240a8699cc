package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// SaveSettings writes s to path atomically.
func (l *Loader) SaveSettings(ctx context.Context, path string, s *config.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings folder: %w", err)
	}
	if err := renameio.WriteFile(path, EncodeSettings(s), 0o600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	ctxlog.DebugFromContext(ctx).Debug("Settings saved.", "path", path)
	return nil
}

// EncodeSettings renders s as HCL.
func EncodeSettings(s *config.Settings) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	if s.ActiveUserVarSet != "" {
		root.SetAttributeValue("active_uservar_set", cty.StringVal(s.ActiveUserVarSet))
		root.AppendNewline()
	}

	app := root.AppendNewBlock("app", nil).Body()
	app.SetAttributeValue("data_path", cty.StringVal(s.App.DataPath))
	app.SetAttributeValue("version", cty.StringVal(s.App.Version))
	root.AppendNewline()

	env := root.AppendNewBlock("environment", nil).Body()
	env.SetAttributeValue("use_ipc", cty.BoolVal(s.Environment.UseIPC))
	env.SetAttributeValue("raise_via_ipc", cty.BoolVal(s.Environment.RaiseViaIPC))
	env.SetAttributeValue("single_instance", cty.BoolVal(s.Environment.SingleInstance))
	env.SetAttributeValue("show_splash", cty.BoolVal(s.Environment.ShowSplash))
	env.SetAttributeValue("blank_workspace", cty.BoolVal(s.Environment.BlankWorkspace))
	env.SetAttributeValue("check_modified_files", cty.BoolVal(s.Environment.CheckModifiedFiles))
	root.AppendNewline()

	loc := root.AppendNewBlock("locale", nil).Body()
	loc.SetAttributeValue("enable", cty.BoolVal(s.Locale.Enable))
	loc.SetAttributeValue("language", cty.StringVal(s.Locale.Language))

	for _, set := range s.UserVarSets {
		root.AppendNewline()
		sb := root.AppendNewBlock("uservar_set", []string{set.Name}).Body()
		for _, v := range set.Vars {
			vb := sb.AppendNewBlock("var", []string{v.Name}).Body()
			vb.SetAttributeValue("base", cty.StringVal(v.Base))
			if len(v.Members) > 0 {
				vb.SetAttributeValue("members", stringMap(v.Members))
			}
		}
	}

	for _, d := range s.Debuggers {
		root.AppendNewline()
		db := root.AppendNewBlock("debugger", []string{d.Plugin}).Body()
		for _, c := range d.Configs {
			cb := db.AppendNewBlock("config", []string{c.Name}).Body()
			cb.SetAttributeValue("executable", cty.StringVal(c.Executable))
			cb.SetAttributeValue("args", stringList(c.Args))
		}
	}

	return f.Bytes()
}

func stringMap(m map[string]string) cty.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make(map[string]cty.Value, len(m))
	for _, k := range keys {
		vals[k] = cty.StringVal(m[k])
	}
	return cty.MapVal(vals)
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(items))
	for _, it := range items {
		vals = append(vals, cty.StringVal(it))
	}
	return cty.ListVal(vals)
}
