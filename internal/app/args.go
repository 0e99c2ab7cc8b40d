package app

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// parseArgs converts command-line arguments into driver values. Each one is
// read as an HCL literal: numbers, booleans, null and "quoted" strings.
// Anything else, such as a bare word or a date, stays a string. A value in
// single quotes is always a string.
func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		args[i] = parseArg(s)
	}
	return args
}

func parseArg(s string) any {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s[1 : len(s)-1]
	}
	src := s
	switch strings.ToLower(s) {
	case "null", "true", "false":
		src = strings.ToLower(s)
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "arg", hcl.InitialPos)
	if diags.HasErrors() || !isLiteral(expr) {
		return s
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return s
	}
	if v, ok := ctyToArg(val); ok {
		return v
	}
	return s
}

// isLiteral accepts literal values, quoted strings and negated literals.
func isLiteral(expr hclsyntax.Expression) bool {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr, *hclsyntax.TemplateExpr:
		return true
	case *hclsyntax.UnaryOpExpr:
		_, ok := e.Val.(*hclsyntax.LiteralValueExpr)
		return ok && e.Op == hclsyntax.OpNegate
	}
	return false
}

func ctyToArg(val cty.Value) (any, bool) {
	if val.IsNull() {
		return nil, true
	}
	if !val.IsWhollyKnown() {
		return nil, false
	}
	switch val.Type() {
	case cty.Number:
		var n int64
		if err := gocty.FromCtyValue(val, &n); err == nil {
			return n, true
		}
		var f float64
		if err := gocty.FromCtyValue(val, &f); err == nil {
			return f, true
		}
	case cty.Bool:
		return val.True(), true
	case cty.String:
		return val.AsString(), true
	}
	return nil, false
}
