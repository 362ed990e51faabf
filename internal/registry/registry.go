// Package registry provides memoized per-type field metadata for
// schema-aware projection filtering. For each model type it answers which
// fields are scalars (stored directly) and which are relations (and to
// which type), so the projector can drop resolver-only fields and recurse
// into relations with the right type context.
package registry

import (
	"fmt"

	schema "github.com/projgraph/projgraph/internal/schema"
)

// ModelFields describes the store-backed fields of one model type.
type ModelFields struct {
	// Scalars holds the names of fields stored directly on the model.
	Scalars map[string]struct{}
	// Relations maps relation field names to the related type name.
	Relations map[string]string
}

// HasScalar reports whether name is a scalar field of the model.
func (m *ModelFields) HasScalar(name string) bool {
	_, ok := m.Scalars[name]
	return ok
}

// Relation returns the related type name for a relation field.
func (m *ModelFields) Relation(name string) (string, bool) {
	related, ok := m.Relations[name]
	return related, ok
}

// UnknownTypeError reports a lookup for a type the schema does not define
// as an object or interface. It signals a generator/schema mismatch, not
// bad request data.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("registry: unknown model type %q", e.Name)
}

// Registry resolves model field metadata from a schema, memoizing per type
// name. The cache is append-only and owned by the Registry value, so several
// registries over different schemas can coexist in one process.
type Registry struct {
	schema *schema.Schema

	cache syncCache
}

// New creates a Registry over the given schema.
func New(s *schema.Schema) *Registry {
	return &Registry{schema: s, cache: newSyncCache()}
}

// Lookup returns the field metadata for typeName, computing it on first use.
func (r *Registry) Lookup(typeName string) (*ModelFields, error) {
	if mf, ok := r.cache.load(typeName); ok {
		return mf, nil
	}

	def := r.schema.Types[typeName]
	if def == nil || (def.Kind != schema.TypeKindObject && def.Kind != schema.TypeKindInterface) {
		return nil, &UnknownTypeError{Name: typeName}
	}

	mf := &ModelFields{
		Scalars:   make(map[string]struct{}, len(def.Fields)),
		Relations: make(map[string]string),
	}
	for _, f := range def.Fields {
		named := f.Type.GetNamedType()
		if related := r.schema.Types[named]; related != nil && isCompositeKind(related.Kind) {
			mf.Relations[f.Name] = named
		} else {
			mf.Scalars[f.Name] = struct{}{}
		}
	}

	r.cache.store(typeName, mf)
	return mf, nil
}

func isCompositeKind(k schema.TypeKind) bool {
	return k == schema.TypeKindObject || k == schema.TypeKindInterface || k == schema.TypeKindUnion
}
