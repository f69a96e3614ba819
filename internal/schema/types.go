package schema

import "strings"

// Kind identifies the shape of a type definition.
type Kind string

const (
	KindObject      Kind = "OBJECT"
	KindInterface   Kind = "INTERFACE"
	KindUnion       Kind = "UNION"
	KindEnum        Kind = "ENUM"
	KindScalar      Kind = "SCALAR"
	KindInputObject Kind = "INPUT_OBJECT"
)

// Coordinate is a fully-qualified schema path: "Type", "Type.field" or
// "Type.field.arg". Enum values and union members use the field form
// ("Episode.JEDI", "SearchResult.Human").
type Coordinate string

// TypeCoordinate builds the coordinate for a type.
func TypeCoordinate(typeName string) Coordinate {
	return Coordinate(typeName)
}

// FieldCoordinate builds the coordinate for a field, enum value or union member.
func FieldCoordinate(typeName, fieldName string) Coordinate {
	return Coordinate(typeName + "." + fieldName)
}

// ArgCoordinate builds the coordinate for a field argument.
func ArgCoordinate(typeName, fieldName, argName string) Coordinate {
	return Coordinate(typeName + "." + fieldName + "." + argName)
}

// TypeRef is a declared type reference including list and non-null wrapping.
// Exactly one of Named or Elem is set.
type TypeRef struct {
	Named   string   // leaf: the referenced type name
	Elem    *TypeRef // list: the element type
	NonNull bool
}

// String renders the reference in SDL notation, e.g. "[String!]!".
func (r *TypeRef) String() string {
	var b strings.Builder
	r.write(&b)
	return b.String()
}

func (r *TypeRef) write(b *strings.Builder) {
	if r.Elem != nil {
		b.WriteByte('[')
		r.Elem.write(b)
		b.WriteByte(']')
	} else {
		b.WriteString(r.Named)
	}
	if r.NonNull {
		b.WriteByte('!')
	}
}

// Equal reports structural equality, including wrapping.
func (r *TypeRef) Equal(o *TypeRef) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.NonNull != o.NonNull || r.Named != o.Named {
		return false
	}
	return r.Elem.Equal(o.Elem)
}

// baseName returns the named type at the core of the reference.
func (r *TypeRef) baseName() string {
	for r.Elem != nil {
		r = r.Elem
	}
	return r.Named
}

// ArgumentDef is a single field argument. Immutable after construction.
type ArgumentDef struct {
	Name       string
	Type       *TypeRef
	Default    string // SDL rendering of the default value, "" when absent
	HasDefault bool
}

// Required reports whether callers must supply the argument:
// a non-null type with no default value.
func (a *ArgumentDef) Required() bool {
	return a.Type.NonNull && !a.HasDefault
}

// FieldDef is a single field of an object, interface or input object.
// Immutable after construction.
type FieldDef struct {
	Name              string
	Type              *TypeRef
	Deprecated        bool
	DeprecationReason string

	args     map[string]*ArgumentDef
	argNames []string // sorted
}

// Arg looks up an argument by name.
func (f *FieldDef) Arg(name string) (*ArgumentDef, bool) {
	a, ok := f.args[name]
	return a, ok
}

// ArgNames returns argument names in lexicographic order.
func (f *FieldDef) ArgNames() []string {
	return f.argNames
}

// TypeDef is a single named type. Field, enum value and possible-type
// accessors return deterministic lexicographic order.
type TypeDef struct {
	Name string
	Kind Kind

	fields     map[string]*FieldDef
	fieldNames []string // sorted

	EnumValues    []string // sorted; ENUM only
	PossibleTypes []string // sorted; UNION members or INTERFACE implementors
}

// Field looks up a field by name.
func (t *TypeDef) Field(name string) (*FieldDef, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// FieldNames returns field names in lexicographic order.
func (t *TypeDef) FieldNames() []string {
	return t.fieldNames
}

// hasFields reports whether the kind carries a field set.
func (t *TypeDef) hasFields() bool {
	switch t.Kind {
	case KindObject, KindInterface, KindInputObject:
		return true
	}
	return false
}

// Schema is an immutable snapshot of one schema version.
// Construct with Build; lookups are read-only.
type Schema struct {
	types     map[string]*TypeDef
	typeNames []string // sorted, user-defined types only
}

// Type looks up a type definition by name.
func (s *Schema) Type(name string) (*TypeDef, bool) {
	t, ok := s.types[name]
	return t, ok
}

// TypeNames returns user-defined type names in lexicographic order.
// Built-in scalars are resolvable via Type but not listed here.
func (s *Schema) TypeNames() []string {
	return s.typeNames
}
