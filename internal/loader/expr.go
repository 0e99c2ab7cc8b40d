package loader

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gobatis/internal/typealias"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined reports whether an optional attribute was written in the
// file. gohcl fills omitted optional expressions with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}

// stringExpr evaluates an optional string attribute. An omitted attribute
// yields "".
func stringExpr(expr hcl.Expression, evalCtx *hcl.EvalContext, attr string) (string, error) {
	if !isExprDefined(expr) {
		return "", nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid attribute value",
			Detail:   fmt.Sprintf("The %s attribute must be a string: %s.", attr, err),
			Subject:  expr.Range().Ptr(),
		}
	}
	return val.AsString(), nil
}

// resolveType evaluates a type attribute and resolves it through the alias
// registry.
func resolveType(expr hcl.Expression, evalCtx *hcl.EvalContext, aliases *typealias.Registry, attr string) (reflect.Type, error) {
	name, err := stringExpr(expr, evalCtx, attr)
	if err != nil || name == "" {
		return nil, err
	}
	t, err := aliases.Resolve(name)
	if err != nil {
		return nil, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown type",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}
	}
	return t, nil
}

// propertiesExpr evaluates a properties object into string key/value pairs.
// Numbers and bools are converted to their string form.
func propertiesExpr(expr hcl.Expression, evalCtx *hcl.EvalContext) (map[string]string, error) {
	props := map[string]string{}
	if !isExprDefined(expr) {
		return props, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return props, nil
	}
	val, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid properties",
			Detail:   fmt.Sprintf("Data source properties must be a map of strings: %s.", err),
			Subject:  expr.Range().Ptr(),
		}
	}
	if !val.IsWhollyKnown() || val.LengthInt() == 0 {
		return props, nil
	}
	for k, v := range val.AsValueMap() {
		if v.IsNull() {
			continue
		}
		props[k] = v.AsString()
	}
	return props, nil
}
