package projection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/projgraph/projgraph/internal/language"
)

// argValue pulls the named argument off the first root field of the query.
func argValue(t *testing.T, query, arg string) *language.Value {
	t.Helper()
	doc := mustParseQuery(t, query)
	a := rootField(t, doc).Arguments.ForName(arg)
	if a == nil {
		t.Fatalf("argument %q not found", arg)
	}
	return a.Value
}

func TestValueFromAST_Literals(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  any
	}{
		{"int", `{ f(v: 42) }`, 42},
		{"negative int", `{ f(v: -7) }`, -7},
		{"float", `{ f(v: 1.5) }`, 1.5},
		{"string", `{ f(v: "hi") }`, "hi"},
		{"boolean true", `{ f(v: true) }`, true},
		{"boolean false", `{ f(v: false) }`, false},
		{"null", `{ f(v: null) }`, nil},
		{"enum", `{ f(v: ASC) }`, "ASC"},
		{"list", `{ f(v: [1, 2, 3]) }`, []any{1, 2, 3}},
		{"object", `{ f(v: {a: 1, b: "x"}) }`, map[string]any{"a": 1, "b": "x"}},
		{"nested", `{ f(v: {l: [{x: true}]}) }`, map[string]any{"l": []any{map[string]any{"x": true}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := valueFromAST(argValue(t, tc.query, "v"), nil)
			require.True(t, ok)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValueFromAST_Variables(t *testing.T) {
	t.Run("bound", func(t *testing.T) {
		v := argValue(t, `query($x: Int) { f(v: $x) }`, "v")
		got, ok := valueFromAST(v, Variables{"x": 9})
		require.True(t, ok)
		require.Equal(t, 9, got)
	})

	t.Run("bound with dollar-prefixed key", func(t *testing.T) {
		v := argValue(t, `query($x: Int) { f(v: $x) }`, "v")
		got, ok := valueFromAST(v, Variables{"$x": 9})
		require.True(t, ok)
		require.Equal(t, 9, got)
	})

	t.Run("unbound", func(t *testing.T) {
		v := argValue(t, `query($x: Int) { f(v: $x) }`, "v")
		_, ok := valueFromAST(v, Variables{})
		require.False(t, ok)
	})

	t.Run("bound to nil stays a value", func(t *testing.T) {
		v := argValue(t, `query($x: Int) { f(v: $x) }`, "v")
		got, ok := valueFromAST(v, Variables{"x": nil})
		require.True(t, ok)
		require.Nil(t, got)
	})

	t.Run("unbound inside object omits the key", func(t *testing.T) {
		v := argValue(t, `query($x: Int) { f(v: {a: $x, b: 1}) }`, "v")
		got, ok := valueFromAST(v, Variables{})
		require.True(t, ok)
		if diff := cmp.Diff(map[string]any{"b": 1}, got); diff != "" {
			t.Fatalf("value mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unbound inside list omits the element", func(t *testing.T) {
		v := argValue(t, `query($x: Int) { f(v: [1, $x, 3]) }`, "v")
		got, ok := valueFromAST(v, Variables{})
		require.True(t, ok)
		if diff := cmp.Diff([]any{1, 3}, got); diff != "" {
			t.Fatalf("value mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestValueFromAST_NilNode(t *testing.T) {
	_, ok := valueFromAST(nil, nil)
	require.False(t, ok)
}
