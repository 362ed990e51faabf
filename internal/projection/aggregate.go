package projection

import (
	language "github.com/projgraph/projgraph/internal/language"
)

// countAllField marks "count everything" under _count; it is mutually
// exclusive with a per-field count map.
const countAllField = "_all"

// Aggregate extracts the flat aggregate-function map from the selection set
// of an aggregate or groupBy root field. Each of _count, _avg, _sum, _min
// and _max present in the selection maps to either true or a non-empty
// field-name map; other selections are ignored.
func (p *Parser) Aggregate(selectionSet language.SelectionSet, fragments language.FragmentDefinitionList, vars Variables) (map[string]any, error) {
	st := &parseState{
		fragments: fragments,
		vars:      vars,
		expanding: make(map[string]bool),
	}
	fields, err := p.flatten(selectionSet, st)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for _, field := range fields {
		name := field.Name
		if _, ok := aggregateFieldNames[name]; !ok {
			continue
		}
		if len(field.SelectionSet) == 0 {
			// Bare _count counts rows; the other kinds have no
			// "aggregate everything" analog and are dropped.
			if name == "_count" {
				out[name] = true
			}
			continue
		}

		children, err := p.flatten(field.SelectionSet, st)
		if err != nil {
			return nil, err
		}
		countAll := false
		fieldMap := make(map[string]any, len(children))
		for _, child := range children {
			if child.Name == typeNameField {
				continue
			}
			if name == "_count" && child.Name == countAllField {
				countAll = true
				break
			}
			fieldMap[child.Name] = true
		}
		switch {
		case countAll:
			out[name] = true
		case len(fieldMap) > 0:
			out[name] = fieldMap
		case name == "_count":
			out[name] = true
		}
	}
	return out, nil
}

// flatten resolves fragment spreads and inline fragments into the flat list
// of field nodes at one level, in document order, honoring directives.
func (p *Parser) flatten(selectionSet language.SelectionSet, st *parseState) ([]*language.Field, error) {
	var fields []*language.Field
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !include(sel.Directives, st.vars) {
				continue
			}
			fields = append(fields, sel)
		case *language.FragmentSpread:
			if !include(sel.Directives, st.vars) {
				continue
			}
			frag := st.fragments.ForName(sel.Name)
			if frag == nil {
				if p.strict {
					return nil, &UnresolvedFragmentError{Name: sel.Name}
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
			nested, err := p.flatten(frag.SelectionSet, st)
			delete(st.expanding, sel.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, nested...)
		case *language.InlineFragment:
			if !include(sel.Directives, st.vars) {
				continue
			}
			nested, err := p.flatten(sel.SelectionSet, st)
			if err != nil {
				return nil, err
			}
			fields = append(fields, nested...)
		}
	}
	return fields, nil
}
