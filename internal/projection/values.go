package projection

import (
	"strconv"
	"strings"

	language "github.com/projgraph/projgraph/internal/language"
)

// Variables maps variable names to already-resolved runtime values.
type Variables = map[string]any

// valueFromAST converts an AST value to a plain Go value, substituting
// variables. The second result is false when no value exists: the node is a
// variable missing from vars, or its kind is unrecognized. A null literal is
// (nil, true), a real value distinct from "no value".
func valueFromAST(value *language.Value, vars Variables) (any, bool) {
	if value == nil {
		return nil, false
	}
	switch value.Kind {
	case language.Variable:
		name := value.Raw
		if v, ok := vars[name]; ok {
			return v, true
		}
		if v, ok := vars[strings.TrimPrefix(name, "$")]; ok {
			return v, true
		}
		return nil, false
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv, true
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv, true
	case language.StringValue, language.BlockValue:
		return value.Raw, true
	case language.BooleanValue:
		return value.Raw == "true", true
	case language.NullValue:
		return nil, true
	case language.EnumValue:
		return value.Raw, true
	case language.ListValue:
		out := make([]any, 0, len(value.Children))
		for _, c := range value.Children {
			if v, ok := valueFromAST(c.Value, vars); ok {
				out = append(out, v)
			}
		}
		return out, true
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			if v, ok := valueFromAST(f.Value, vars); ok {
				m[f.Name] = v
			}
		}
		return m, true
	default:
		return nil, false
	}
}
