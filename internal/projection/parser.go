package projection

import (
	language "github.com/projgraph/projgraph/internal/language"
	registry "github.com/projgraph/projgraph/internal/registry"
)

// Projection is the nested field-selection map handed to the data layer.
// Values are either the bool true (scalar leaf) or a map carrying an
// optional "select" key plus forwarded relation arguments.
type Projection = map[string]any

const typeNameField = "__typename"

// aggregateFieldNames are pseudo-fields that never appear in a non-aggregate
// projection; they are inspected only by the aggregate extractor.
var aggregateFieldNames = map[string]struct{}{
	"_count": {},
	"_avg":   {},
	"_sum":   {},
	"_min":   {},
	"_max":   {},
}

// Parser compiles selection sets into projections. The zero-configured
// parser is lenient and schema-unaware; see WithRegistry and WithStrict.
// A Parser is stateless across calls and safe for concurrent use.
type Parser struct {
	registry *registry.Registry
	strict   bool
}

type Option func(*Parser)

// WithRegistry enables schema-aware filtering: selected fields with no
// store representation on the active model type are dropped, and relation
// recursion switches to the related type.
func WithRegistry(r *registry.Registry) Option {
	return func(p *Parser) { p.registry = r }
}

// WithStrict makes unresolved fragments and variables fail the parse
// instead of degrading to a best-effort projection.
func WithStrict() Option {
	return func(p *Parser) { p.strict = true }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Field compiles one resolver field node into the outer map merged into the
// store query: the "select" key is present only when the parsed projection
// is non-empty. An empty result means "request default/all fields".
func (p *Parser) Field(field *language.Field, fragments language.FragmentDefinitionList, vars Variables, typeName string) (map[string]any, error) {
	sel, err := p.Parse(field.SelectionSet, fragments, vars, typeName)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, 1)
	if len(sel) > 0 {
		out["select"] = sel
	}
	return out, nil
}

// Parse builds the projection for one selection set. typeName names the
// model type the selections apply to; it is consulted only when the parser
// carries a registry, and an empty name disables filtering for the subtree.
func (p *Parser) Parse(selectionSet language.SelectionSet, fragments language.FragmentDefinitionList, vars Variables, typeName string) (Projection, error) {
	st := &parseState{
		fragments: fragments,
		vars:      vars,
		expanding: make(map[string]bool),
	}
	out := make(Projection)
	if err := p.parse(selectionSet, typeName, st, out); err != nil {
		return nil, err
	}
	return out, nil
}

// parseState carries the per-invocation tables and the chain of fragments
// currently being expanded (guards against spread cycles in malformed
// documents).
type parseState struct {
	fragments language.FragmentDefinitionList
	vars      Variables
	expanding map[string]bool
}

func (p *Parser) parse(selectionSet language.SelectionSet, typeName string, st *parseState, out Projection) error {
	var model *registry.ModelFields
	if p.registry != nil && typeName != "" {
		m, err := p.registry.Lookup(typeName)
		if err != nil {
			return err
		}
		model = m
	}

	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !include(sel.Directives, st.vars) {
				continue
			}
			name := sel.Name
			if name == typeNameField {
				continue
			}
			if _, ok := aggregateFieldNames[name]; ok {
				continue
			}

			// childType stays empty unless the field is a known relation,
			// so scalar sub-selections recurse unfiltered.
			childType := ""
			if model != nil {
				if related, ok := model.Relation(name); ok {
					childType = related
				} else if !model.HasScalar(name) {
					// Resolver-only field with no store representation.
					continue
				}
			}

			if len(sel.SelectionSet) == 0 {
				out[name] = true
				continue
			}

			nested := make(Projection)
			if err := p.parse(sel.SelectionSet, childType, st, nested); err != nil {
				return err
			}
			args, err := p.relationArgs(sel, st.vars)
			if err != nil {
				return err
			}
			switch {
			case len(nested) > 0:
				node := make(map[string]any, len(args)+1)
				node["select"] = nested
				for k, v := range args {
					node[k] = v
				}
				out[name] = node
			case len(args) > 0:
				out[name] = args
			default:
				out[name] = true
			}

		case *language.FragmentSpread:
			if !include(sel.Directives, st.vars) {
				continue
			}
			frag := st.fragments.ForName(sel.Name)
			if frag == nil {
				if p.strict {
					return &UnresolvedFragmentError{Name: sel.Name}
				}
				continue
			}
			if !include(frag.Directives, st.vars) {
				continue
			}
			if st.expanding[sel.Name] {
				continue
			}
			st.expanding[sel.Name] = true
			fragType := typeName
			if typeName != "" && frag.TypeCondition != "" {
				fragType = frag.TypeCondition
			}
			err := p.parse(frag.SelectionSet, fragType, st, out)
			delete(st.expanding, sel.Name)
			if err != nil {
				return err
			}

		case *language.InlineFragment:
			if !include(sel.Directives, st.vars) {
				continue
			}
			inlineType := typeName
			if typeName != "" && sel.TypeCondition != "" {
				inlineType = sel.TypeCondition
			}
			if err := p.parse(sel.SelectionSet, inlineType, st, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// include checks @skip and @include on a node.
func include(directives language.DirectiveList, vars Variables) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := directiveIf(skip, vars); ok && v {
			return false
		}
	}
	if inc := directives.ForName("include"); inc != nil {
		if v, ok := directiveIf(inc, vars); ok && !v {
			return false
		}
	}
	return true
}

func directiveIf(d *language.Directive, vars Variables) (bool, bool) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, ok := valueFromAST(arg.Value, vars)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
