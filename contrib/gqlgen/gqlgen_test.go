package gqlgen

import (
	"context"
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const testSDL = `
type Query {
  user: User
}

type User {
  id: ID!
  name: String
  posts: [Post!]!
}

type Post {
  id: ID!
  title: String
}
`

// resolverContext builds the context a gqlgen resolver for the first root
// field of query would observe.
func resolverContext(t *testing.T, query string, vars map[string]any) context.Context {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	field, ok := doc.Operations[0].SelectionSet[0].(*ast.Field)
	if !ok {
		t.Fatalf("root selection is not a field")
	}
	ctx := graphql.WithOperationContext(context.Background(), &graphql.OperationContext{
		RawQuery:  query,
		Doc:       doc,
		Variables: vars,
	})
	return graphql.WithFieldContext(ctx, &graphql.FieldContext{
		Field: graphql.CollectedField{Field: field},
	})
}

func TestSelection(t *testing.T) {
	ctx := resolverContext(t, `{ user { id name posts(take: 2) { title } } }`, nil)
	got := Selection(ctx)
	want := map[string]any{
		"select": map[string]any{
			"id":   true,
			"name": true,
			"posts": map[string]any{
				"select": map[string]any{"title": true},
				"take":   2,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelection_Variables(t *testing.T) {
	ctx := resolverContext(t, `query($n: Int) { user { posts(take: $n) { id } } }`, map[string]any{"n": 3})
	got := Selection(ctx)
	want := map[string]any{
		"select": map[string]any{
			"posts": map[string]any{
				"select": map[string]any{"id": true},
				"take":   3,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestCompiler_WithSchema(t *testing.T) {
	sch, err := gqlparser.LoadSchema(&ast.Source{Name: "test.graphql", Input: testSDL})
	require.NoError(t, err)
	c := New(WithSchema(sch))

	ctx := resolverContext(t, `{ user { id fullName } }`, nil)
	got, err := c.Selection(ctx, "User")
	require.NoError(t, err)
	want := map[string]any{
		"select": map[string]any{"id": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestCompiler_Strict(t *testing.T) {
	c := New(WithStrict())

	ctx := resolverContext(t, `{ user { ...Missing id } }`, nil)
	_, err := c.Selection(ctx, "")
	require.Error(t, err)
}

func TestAggregateSelection(t *testing.T) {
	ctx := resolverContext(t, `{ aggregateUser { _count { _all } _avg { age } } }`, nil)
	got := AggregateSelection(ctx)
	want := map[string]any{
		"_count": true,
		"_avg":   map[string]any{"age": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}
}
