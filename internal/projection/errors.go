package projection

import "fmt"

// UnresolvedFragmentError is returned in strict mode when a fragment spread
// names a fragment missing from the document's fragment table.
type UnresolvedFragmentError struct {
	Name string
}

func (e *UnresolvedFragmentError) Error() string {
	return fmt.Sprintf("projection: unresolved fragment %q", e.Name)
}

// UnresolvedVariableError is returned in strict mode when an argument
// references a variable absent from the variable table.
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("projection: unresolved variable $%s", e.Name)
}
