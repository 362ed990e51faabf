package schema

import (
	"strings"

	language "github.com/projgraph/projgraph/internal/language"
)

// BuildFromSDL parses and validates one or more SDL sources and maps the
// result into the compiler's schema model. Introspection types are dropped.
func BuildFromSDL(sources ...*language.Source) (*Schema, error) {
	astSchema, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return FromAST(astSchema), nil
}

// FromAST maps an already-validated gqlparser schema into the compiler's
// schema model.
func FromAST(astSchema *language.Schema) *Schema {
	s := &Schema{Types: make(map[string]*Type, len(astSchema.Types))}
	if astSchema.Query != nil {
		s.QueryType = astSchema.Query.Name
	}
	if astSchema.Mutation != nil {
		s.MutationType = astSchema.Mutation.Name
	}
	if astSchema.Subscription != nil {
		s.SubscriptionType = astSchema.Subscription.Name
	}

	for name, def := range astSchema.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		s.Types[name] = buildType(def)
	}
	return s
}

func buildType(def *language.Definition) *Type {
	t := &Type{
		Name:        def.Name,
		Kind:        buildKind(def.Kind),
		Description: def.Description,
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		t.Fields = append(t.Fields, &Field{
			Name:        fd.Name,
			Description: fd.Description,
			Type:        buildTypeRef(fd.Type),
		})
	}
	t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	return t
}

func buildKind(kind language.DefinitionKind) TypeKind {
	switch kind {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	default:
		return TypeKindScalar
	}
}

func buildTypeRef(t *language.Type) *TypeRef {
	var ref *TypeRef
	if t.NamedType != "" {
		ref = NamedType(t.NamedType)
	} else {
		ref = ListType(buildTypeRef(t.Elem))
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}
