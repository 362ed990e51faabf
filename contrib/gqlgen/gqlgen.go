// Package gqlgen bridges the projection compiler into gqlgen resolvers.
// Inside a resolver, the current field node, fragment table, and resolved
// variables are all carried by the gqlgen request context; this package
// pulls them out and compiles the store projection in one call.
package gqlgen

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	projection "github.com/projgraph/projgraph/internal/projection"
	registry "github.com/projgraph/projgraph/internal/registry"
	schema "github.com/projgraph/projgraph/internal/schema"
)

// Compiler compiles resolver selections into projections. The zero-option
// compiler is lenient and schema-unaware.
type Compiler struct {
	parser *projection.Parser
}

type Option func(*options)

type options struct {
	schema *ast.Schema
	strict bool
}

// WithSchema enables schema-aware filtering backed by the given gqlparser
// schema (gqlgen exposes it via the generated ExecutableSchema).
func WithSchema(sch *ast.Schema) Option {
	return func(o *options) { o.schema = sch }
}

// WithStrict makes unresolved fragments and variables fail the compile.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var popts []projection.Option
	if o.schema != nil {
		popts = append(popts, projection.WithRegistry(registry.New(schema.FromAST(o.schema))))
	}
	if o.strict {
		popts = append(popts, projection.WithStrict())
	}
	return &Compiler{parser: projection.NewParser(popts...)}
}

// Selection compiles the selection set of the field currently being
// resolved. typeName names the model type the selections apply to; pass ""
// when the compiler is schema-unaware.
func (c *Compiler) Selection(ctx context.Context, typeName string) (map[string]any, error) {
	oc := graphql.GetOperationContext(ctx)
	fc := graphql.GetFieldContext(ctx)
	return c.parser.Field(fc.Field.Field, oc.Doc.Fragments, oc.Variables, typeName)
}

// AggregateSelection compiles the selection set of an aggregate or groupBy
// root field into its flat aggregate-function map.
func (c *Compiler) AggregateSelection(ctx context.Context) (map[string]any, error) {
	oc := graphql.GetOperationContext(ctx)
	fc := graphql.GetFieldContext(ctx)
	return c.parser.Aggregate(fc.Field.SelectionSet, oc.Doc.Fragments, oc.Variables)
}

var defaultCompiler = New()

// Selection is the package-level shorthand for a lenient, schema-unaware
// compile of the current field. It cannot fail in this mode.
func Selection(ctx context.Context) map[string]any {
	out, _ := defaultCompiler.Selection(ctx, "")
	return out
}

// AggregateSelection is the package-level shorthand for a lenient compile
// of an aggregate root field.
func AggregateSelection(ctx context.Context) map[string]any {
	out, _ := defaultCompiler.AggregateSelection(ctx)
	return out
}
