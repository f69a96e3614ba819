package diff

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/roach88/gqlcheck/internal/schema"
)

func buildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	doc, err := parser.ParseSchema(&ast.Source{Name: "test.graphql", Input: sdl})
	require.NoError(t, err)
	s, err := schema.Build(doc)
	require.NoError(t, err)
	return s
}

func compare(t *testing.T, oldSDL, newSDL string) []Change {
	t.Helper()
	return Compare(buildSchema(t, oldSDL), buildSchema(t, newSDL))
}

func TestCompareIdenticalSchemas(t *testing.T) {
	sdl := `
		type Query { user(id: ID!): User }
		type User { id: ID! name: String }
	`
	assert.Empty(t, compare(t, sdl, sdl))
}

func TestCompareFieldAdded(t *testing.T) {
	changes := compare(t,
		`type Query { user(id: ID!): User }
		 type User { id: ID! }`,
		`type Query { user(id: ID!): User getUser(id: ID!): User }
		 type User { id: ID! }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CodeFieldAdded, changes[0].Code)
	assert.Equal(t, CategoryAddition, changes[0].Category)
	assert.Equal(t, schema.Coordinate("Query.getUser"), changes[0].Path)
}

func TestCompareFieldRemoved(t *testing.T) {
	changes := compare(t,
		`type Query { user: String name: String }`,
		`type Query { name: String }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CodeFieldRemoved, changes[0].Code)
	assert.Equal(t, CategoryRemoval, changes[0].Category)
	assert.Equal(t, schema.Coordinate("Query.user"), changes[0].Path)
}

func TestCompareTypeAddedAndRemoved(t *testing.T) {
	changes := compare(t,
		`type Query { a: String } type Gone { x: Int }`,
		`type Query { a: String } type Fresh { y: Int }`,
	)

	require.Len(t, changes, 2)
	// Lexicographic type order: Fresh before Gone.
	assert.Equal(t, CodeTypeAdded, changes[0].Code)
	assert.Equal(t, schema.Coordinate("Fresh"), changes[0].Path)
	assert.Equal(t, CodeTypeRemoved, changes[1].Code)
	assert.Equal(t, schema.Coordinate("Gone"), changes[1].Path)
}

func TestCompareTypeKindChangedSkipsDeeper(t *testing.T) {
	changes := compare(t,
		`type Query { s: Shape } type Shape { area: Float corners: Int }
		 type Circle { r: Float } type Square { w: Float }`,
		`type Query { s: Shape } union Shape = Circle | Square
		 type Circle { r: Float } type Square { w: Float }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CodeTypeKindChanged, changes[0].Code)
	assert.Equal(t, CategoryUpdate, changes[0].Category)
	assert.Contains(t, changes[0].Description, "from OBJECT to UNION")
}

func TestCompareFieldChangedKind(t *testing.T) {
	changes := compare(t,
		`type Query { tags: [String] }`,
		`type Query { tags: [String!]! }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CodeFieldChangedKind, changes[0].Code)
	assert.Equal(t, CategoryUpdate, changes[0].Category)
	assert.Equal(t, "field Query.tags changed type from [String] to [String!]!", changes[0].Description)
}

func TestCompareDeprecationTransitions(t *testing.T) {
	oldSDL := `type Query { a: String b: String @deprecated }`
	newSDL := `type Query { a: String @deprecated(reason: "use b") b: String }`

	changes := compare(t, oldSDL, newSDL)
	require.Len(t, changes, 2)

	assert.Equal(t, CodeFieldDeprecationAdded, changes[0].Code)
	assert.Equal(t, schema.Coordinate("Query.a"), changes[0].Path)
	assert.Contains(t, changes[0].Description, "reason: use b")

	assert.Equal(t, CodeFieldDeprecationRemoved, changes[1].Code)
	assert.Equal(t, schema.Coordinate("Query.b"), changes[1].Path)
}

func TestCompareOptionalArgAddedIsAddition(t *testing.T) {
	changes := compare(t,
		`type Query { users: [String] }`,
		`type Query { users(first: Int = 10): [String] }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CodeArgAdded, changes[0].Code)
	assert.Equal(t, CategoryAddition, changes[0].Category)
}

func TestCompareRequiredArgAddedIsUpdate(t *testing.T) {
	changes := compare(t,
		`type Query { users: [String] }`,
		`type Query { users(limit: Int!): [String] }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CodeArgAdded, changes[0].Code)
	assert.Equal(t, CategoryUpdate, changes[0].Category, "required argument additions can break callers")
	assert.Contains(t, changes[0].Description, "required argument")
}

func TestCompareNonNullArgWithDefaultIsAddition(t *testing.T) {
	changes := compare(t,
		`type Query { users: [String] }`,
		`type Query { users(limit: Int! = 10): [String] }`,
	)

	require.Len(t, changes, 1)
	assert.Equal(t, CategoryAddition, changes[0].Category, "a default makes the argument optional for callers")
}

func TestCompareArgChanges(t *testing.T) {
	changes := compare(t,
		`type Query { users(filter: String, first: Int = 10, offset: Int): [String] }`,
		`type Query { users(filter: String!, first: Int = 20): [String] }`,
	)

	require.Len(t, changes, 3)

	assert.Equal(t, CodeArgChangedKind, changes[0].Code)
	assert.Equal(t, schema.Coordinate("Query.users.filter"), changes[0].Path)

	assert.Equal(t, CodeArgDefaultValueChange, changes[1].Code)
	assert.Equal(t, "default value of argument Query.users.first changed from 10 to 20", changes[1].Description)

	assert.Equal(t, CodeArgRemoved, changes[2].Code)
	assert.Equal(t, schema.Coordinate("Query.users.offset"), changes[2].Path)
}

func TestCompareDefaultValueAddedAndRemoved(t *testing.T) {
	changes := compare(t,
		`type Query { a(x: Int, y: Int = 1): String }`,
		`type Query { a(x: Int = 5, y: Int): String }`,
	)

	require.Len(t, changes, 2)
	assert.Equal(t, "default value of argument Query.a.x changed from (none) to 5", changes[0].Description)
	assert.Equal(t, "default value of argument Query.a.y changed from 1 to (none)", changes[1].Description)
}

func TestCompareEnumValues(t *testing.T) {
	changes := compare(t,
		`type Query { r: Role } enum Role { ADMIN USER }`,
		`type Query { r: Role } enum Role { ADMIN GUEST }`,
	)

	require.Len(t, changes, 2)
	assert.Equal(t, CodeEnumValueAdded, changes[0].Code)
	assert.Equal(t, schema.Coordinate("Role.GUEST"), changes[0].Path)
	assert.Equal(t, CodeEnumValueRemoved, changes[1].Code)
	assert.Equal(t, schema.Coordinate("Role.USER"), changes[1].Path)
}

func TestCompareUnionMembers(t *testing.T) {
	changes := compare(t,
		`type Query { s: Media } union Media = Book | Film
		 type Book { t: String } type Film { t: String } type Song { t: String }`,
		`type Query { s: Media } union Media = Film | Song
		 type Book { t: String } type Film { t: String } type Song { t: String }`,
	)

	require.Len(t, changes, 2)
	assert.Equal(t, CodeUnionMemberRemoved, changes[0].Code)
	assert.Equal(t, schema.Coordinate("Media.Book"), changes[0].Path)
	assert.Equal(t, CodeUnionMemberAdded, changes[1].Code)
	assert.Equal(t, schema.Coordinate("Media.Song"), changes[1].Path)
}

func TestCompareInterfaceImplementors(t *testing.T) {
	changes := compare(t,
		`type Query { n: Node } interface Node { id: ID! }
		 type User implements Node { id: ID! } type Post { id: ID! }`,
		`type Query { n: Node } interface Node { id: ID! }
		 type User { id: ID! } type Post implements Node { id: ID! }`,
	)

	require.Len(t, changes, 2)
	assert.Equal(t, CodeUnionMemberAdded, changes[0].Code)
	assert.Equal(t, schema.Coordinate("Node.Post"), changes[0].Path)
	assert.Equal(t, CodeUnionMemberRemoved, changes[1].Code)
	assert.Equal(t, schema.Coordinate("Node.User"), changes[1].Path)
}

func TestCompareIsDeterministic(t *testing.T) {
	oldSDL := `
		type Query { user(id: ID!): User posts: [Post] }
		type User { id: ID! name: String email: String }
		type Post { id: ID! title: String }
		enum Role { ADMIN USER }
	`
	newSDL := `
		type Query { user(id: ID!, expand: Boolean = false): User }
		type User { id: ID! name: String! }
		enum Role { ADMIN GUEST }
	`

	first := compare(t, oldSDL, newSDL)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, compare(t, oldSDL, newSDL))
	}
}

func TestCompareGolden(t *testing.T) {
	changes := compare(t, `
		type Query {
			user(id: ID!): User
			name: String
		}
		type User {
			id: ID!
			email: String
		}
		enum Role { ADMIN USER }
	`, `
		type Query {
			user(id: ID!, expand: Boolean = false): User
			name: String @deprecated(reason: "use user")
		}
		type User {
			id: ID!
			email: String!
		}
		enum Role { ADMIN GUEST USER }
	`)

	payload, err := json.MarshalIndent(changes, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "compound_diff", payload)
}
