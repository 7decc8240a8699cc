package scripting

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the functions available to script expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"join":      stdlib.JoinFunc,
		"format":    stdlib.FormatFunc,
		"trimspace": stdlib.TrimSpaceFunc,
	}
}
