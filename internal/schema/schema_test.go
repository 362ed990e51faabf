package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/projgraph/projgraph/internal/language"
)

func TestBuildFromSDL(t *testing.T) {
	sdl := `
	type Query {
	  user(id: ID!): User
	}

	type User {
	  id: ID!
	  tags: [String!]
	  posts: [Post!]!
	}

	type Post {
	  id: ID!
	}

	enum Color {
	  RED
	  GREEN
	}

	union Feed = Post

	input UserWhere {
	  id: ID
	}
	`
	sch, err := BuildFromSDL(&language.Source{Name: "test.graphql", Input: sdl})
	require.NoError(t, err)

	require.Equal(t, "Query", sch.QueryType)
	require.NotNil(t, sch.GetQueryType())
	require.Nil(t, sch.GetMutationType())

	user := sch.Types["User"]
	require.NotNil(t, user)
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, TypeKindEnum, sch.Types["Color"].Kind)
	require.Equal(t, TypeKindUnion, sch.Types["Feed"].Kind)
	require.Equal(t, TypeKindInputObject, sch.Types["UserWhere"].Kind)
	require.Equal(t, []string{"Post"}, sch.Types["Feed"].PossibleTypes)

	// Builtin scalars come along from the validator.
	require.Equal(t, TypeKindScalar, sch.Types["String"].Kind)

	// Introspection types are stripped.
	require.Nil(t, sch.Types["__Schema"])

	id := user.Field("id")
	require.NotNil(t, id)
	want := NonNullType(NamedType("ID"))
	if diff := cmp.Diff(want, id.Type); diff != "" {
		t.Fatalf("type ref mismatch (-want +got):\n%s", diff)
	}

	posts := user.Field("posts")
	require.NotNil(t, posts)
	require.True(t, posts.Type.IsList())
	require.Equal(t, "Post", posts.Type.GetNamedType())

	tags := user.Field("tags")
	require.NotNil(t, tags)
	require.True(t, tags.Type.IsList())
	require.False(t, tags.Type.IsNonNull())

	require.Nil(t, user.Field("nope"))
}

func TestBuildFromSDL_InvalidSDL(t *testing.T) {
	_, err := BuildFromSDL(&language.Source{Name: "bad.graphql", Input: `type Query { user: Missing }`})
	require.Error(t, err)
}

func TestTypeRefHelpers(t *testing.T) {
	listOfNonNull := ListType(NonNullType(NamedType("Post")))
	require.True(t, listOfNonNull.IsList())
	require.False(t, listOfNonNull.IsNonNull())
	require.Equal(t, "Post", listOfNonNull.GetNamedType())

	nonNullList := NonNullType(ListType(NamedType("Post")))
	require.True(t, nonNullList.IsNonNull())
	require.True(t, nonNullList.IsList())
	require.Equal(t, "Post", nonNullList.Unwrap().GetNamedType())
}
