package projection

import (
	"testing"

	language "github.com/projgraph/projgraph/internal/language"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// rootField returns the first field of the document's first operation.
func rootField(t *testing.T, doc *language.QueryDocument) *language.Field {
	t.Helper()
	if len(doc.Operations) == 0 || len(doc.Operations[0].SelectionSet) == 0 {
		t.Fatalf("document has no root selection")
	}
	f, ok := doc.Operations[0].SelectionSet[0].(*language.Field)
	if !ok {
		t.Fatalf("root selection is not a field")
	}
	return f
}
