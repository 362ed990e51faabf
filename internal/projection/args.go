package projection

import (
	language "github.com/projgraph/projgraph/internal/language"
)

// relationArgNames is the whitelist of per-relation arguments forwarded to
// the data layer.
var relationArgNames = map[string]struct{}{
	"where":    {},
	"orderBy":  {},
	"take":     {},
	"skip":     {},
	"cursor":   {},
	"distinct": {},
}

// relationArgs extracts the whitelisted arguments of a field node as plain
// values. An argument whose value cannot be resolved is omitted entirely,
// or fails the parse in strict mode. Returns nil when nothing is forwarded.
func (p *Parser) relationArgs(field *language.Field, vars Variables) (map[string]any, error) {
	var out map[string]any
	for _, arg := range field.Arguments {
		if _, ok := relationArgNames[arg.Name]; !ok {
			continue
		}
		v, ok := valueFromAST(arg.Value, vars)
		if !ok {
			if p.strict && arg.Value != nil && arg.Value.Kind == language.Variable {
				return nil, &UnresolvedVariableError{Name: arg.Value.Raw}
			}
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[arg.Name] = v
	}
	return out, nil
}
