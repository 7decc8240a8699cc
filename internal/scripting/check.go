package scripting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/codehost/internal/config"
)

// ErrInvalidScript wraps every problem found by Check.
var ErrInvalidScript = errors.New("invalid script")

type actionSchema struct {
	required []string
	optional []string
}

var schemas = map[string]actionSchema{
	"log":     {required: []string{"message"}},
	"open":    {required: []string{"path"}, optional: []string{"line"}},
	"uservar": {required: []string{"name", "value"}, optional: []string{"set", "member"}},
	"exec":    {required: []string{"command"}, optional: []string{"work_dir"}},
}

var roots = map[string]bool{"env": true, "uservar": true}

// Check validates every action of s without evaluating anything.
func Check(s *config.Script) error {
	funcs := Functions()
	var errs []error
	for _, a := range s.Actions {
		schema, ok := schemas[a.Kind]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown action %q", a.Range, a.Kind))
			continue
		}
		allowed := make(map[string]bool)
		for _, name := range schema.required {
			allowed[name] = true
			if _, ok := a.Attributes[name]; !ok {
				errs = append(errs, fmt.Errorf("%s: %s requires %q", a.Range, a.Kind, name))
			}
		}
		for _, name := range schema.optional {
			allowed[name] = true
		}

		for _, name := range sortedNames(a.Attributes) {
			expr := a.Attributes[name]
			if !allowed[name] {
				errs = append(errs, fmt.Errorf("%s: %s does not accept %q", expr.Range(), a.Kind, name))
				continue
			}
			vars, fns := references(expr)
			for _, v := range vars {
				if root := v.RootName(); !roots[root] {
					errs = append(errs, fmt.Errorf("%s: unknown variable %q", v.SourceRange(), root))
				}
			}
			for _, fn := range fns {
				if _, ok := funcs[fn]; !ok {
					errs = append(errs, fmt.Errorf("%s: unknown function %q", expr.Range(), fn))
				}
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %s: %w", ErrInvalidScript, s.Path, errors.Join(errs...))
	}
	return nil
}

// references returns the variable traversals and the function names used
// by expr, function names sorted.
func references(expr hcl.Expression) ([]hcl.Traversal, []string) {
	functions := make(map[string]struct{})
	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		walkForFunctions(syntaxExpr, functions)
	}
	names := make([]string, 0, len(functions))
	for f := range functions {
		names = append(names, f)
	}
	sort.Strings(names)
	return expr.Variables(), names
}

func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}

func sortedNames(m map[string]hcl.Expression) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
