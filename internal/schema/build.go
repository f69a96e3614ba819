package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// Built-in scalar types, implicitly defined in every schema.
var builtinScalars = []string{"Boolean", "Float", "ID", "Int", "String"}

const deprecatedDirective = "deprecated"

// Build constructs an immutable Schema from an already-parsed SDL document.
// It merges type extensions into their base definitions, then validates the
// model invariants: unique names at every scope and no dangling type
// references. All violations are collected into a single InvalidSchemaError.
func Build(doc *ast.SchemaDocument) (*Schema, error) {
	b := &builder{defs: make(map[string]*ast.Definition)}

	for _, def := range doc.Definitions {
		b.addDefinition(def)
	}
	for _, ext := range doc.Extensions {
		b.mergeExtension(ext)
	}

	s := &Schema{types: make(map[string]*TypeDef)}
	for _, name := range builtinScalars {
		s.types[name] = &TypeDef{Name: name, Kind: KindScalar}
	}

	for name, def := range b.defs {
		s.types[name] = b.buildType(def)
		s.typeNames = append(s.typeNames, name)
	}
	sort.Strings(s.typeNames)

	b.resolveReferences(s)
	b.derivePossibleTypes(s)

	if len(b.problems) > 0 {
		sort.Slice(b.problems, func(i, j int) bool {
			if b.problems[i].Path != b.problems[j].Path {
				return b.problems[i].Path < b.problems[j].Path
			}
			return b.problems[i].Code < b.problems[j].Code
		})
		return nil, &InvalidSchemaError{Problems: b.problems}
	}
	return s, nil
}

type builder struct {
	defs     map[string]*ast.Definition
	problems []Problem
}

func (b *builder) problem(code string, path Coordinate, format string, args ...any) {
	b.problems = append(b.problems, Problem{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

func (b *builder) addDefinition(def *ast.Definition) {
	if _, exists := b.defs[def.Name]; exists {
		b.problem(ErrDuplicateType, TypeCoordinate(def.Name), "type %q defined more than once", def.Name)
		return
	}
	b.defs[def.Name] = def
}

// mergeExtension folds an `extend` block into its base definition. Extending
// an undefined type is a construction error, matching SDL semantics.
func (b *builder) mergeExtension(ext *ast.Definition) {
	base, ok := b.defs[ext.Name]
	if !ok {
		b.problem(ErrExtendUndefined, TypeCoordinate(ext.Name), "extension of undefined type %q", ext.Name)
		return
	}
	base.Fields = append(base.Fields, ext.Fields...)
	base.EnumValues = append(base.EnumValues, ext.EnumValues...)
	base.Types = append(base.Types, ext.Types...)
	base.Interfaces = append(base.Interfaces, ext.Interfaces...)
}

func (b *builder) buildType(def *ast.Definition) *TypeDef {
	t := &TypeDef{Name: def.Name, Kind: kindOf(def.Kind)}

	switch t.Kind {
	case KindObject, KindInterface, KindInputObject:
		t.fields = make(map[string]*FieldDef, len(def.Fields))
		for _, fd := range def.Fields {
			if _, dup := t.fields[fd.Name]; dup {
				b.problem(ErrDuplicateField, FieldCoordinate(def.Name, fd.Name), "field %q repeated in type %q", fd.Name, def.Name)
				continue
			}
			t.fields[fd.Name] = b.buildField(def.Name, fd)
			t.fieldNames = append(t.fieldNames, fd.Name)
		}
		sort.Strings(t.fieldNames)

	case KindEnum:
		seen := make(map[string]bool, len(def.EnumValues))
		for _, ev := range def.EnumValues {
			if seen[ev.Name] {
				b.problem(ErrDuplicateEnumValue, FieldCoordinate(def.Name, ev.Name), "enum value %q repeated in %q", ev.Name, def.Name)
				continue
			}
			seen[ev.Name] = true
			t.EnumValues = append(t.EnumValues, ev.Name)
		}
		sort.Strings(t.EnumValues)

	case KindUnion:
		seen := make(map[string]bool, len(def.Types))
		for _, member := range def.Types {
			if seen[member] {
				b.problem(ErrDuplicateMember, FieldCoordinate(def.Name, member), "union member %q repeated in %q", member, def.Name)
				continue
			}
			seen[member] = true
			t.PossibleTypes = append(t.PossibleTypes, member)
		}
		sort.Strings(t.PossibleTypes)
		if len(t.PossibleTypes) == 0 {
			b.problem(ErrEmptyUnion, TypeCoordinate(def.Name), "union %q has no members", def.Name)
		}
	}

	return t
}

func (b *builder) buildField(typeName string, fd *ast.FieldDefinition) *FieldDef {
	f := &FieldDef{
		Name: fd.Name,
		Type: typeRefFromAST(fd.Type),
		args: make(map[string]*ArgumentDef, len(fd.Arguments)),
	}

	if d := fd.Directives.ForName(deprecatedDirective); d != nil {
		f.Deprecated = true
		if reason := d.Arguments.ForName("reason"); reason != nil && reason.Value != nil {
			f.DeprecationReason = reason.Value.Raw
		}
	}

	for _, ad := range fd.Arguments {
		if _, dup := f.args[ad.Name]; dup {
			b.problem(ErrDuplicateArgument, ArgCoordinate(typeName, fd.Name, ad.Name), "argument %q repeated on field %q", ad.Name, fd.Name)
			continue
		}
		arg := &ArgumentDef{Name: ad.Name, Type: typeRefFromAST(ad.Type)}
		if ad.DefaultValue != nil {
			arg.HasDefault = true
			arg.Default = ad.DefaultValue.String()
		}
		f.args[ad.Name] = arg
		f.argNames = append(f.argNames, ad.Name)
	}
	sort.Strings(f.argNames)

	return f
}

// resolveReferences checks that every type referenced by a field, argument,
// union member or implements clause is defined.
func (b *builder) resolveReferences(s *Schema) {
	for _, typeName := range s.typeNames {
		t := s.types[typeName]

		for _, fieldName := range t.fieldNames {
			f := t.fields[fieldName]
			b.checkRef(s, f.Type, FieldCoordinate(typeName, fieldName))
			for _, argName := range f.argNames {
				b.checkRef(s, f.args[argName].Type, ArgCoordinate(typeName, fieldName, argName))
			}
		}

		if t.Kind == KindUnion {
			for _, member := range t.PossibleTypes {
				if _, ok := s.types[member]; !ok {
					b.problem(ErrUnknownType, FieldCoordinate(typeName, member), "union member %q is not defined", member)
				}
			}
		}

		def := b.defs[typeName]
		if def != nil {
			for _, iface := range def.Interfaces {
				if _, ok := s.types[iface]; !ok {
					b.problem(ErrUnknownType, TypeCoordinate(typeName), "implemented interface %q is not defined", iface)
				}
			}
		}
	}
}

// derivePossibleTypes records, per interface, the objects that implement it.
func (b *builder) derivePossibleTypes(s *Schema) {
	for _, typeName := range s.typeNames {
		def := b.defs[typeName]
		if def == nil || kindOf(def.Kind) != KindObject {
			continue
		}
		for _, iface := range def.Interfaces {
			it, ok := s.types[iface]
			if !ok || it.Kind != KindInterface {
				continue
			}
			it.PossibleTypes = append(it.PossibleTypes, typeName)
		}
	}
	for _, typeName := range s.typeNames {
		if t := s.types[typeName]; t.Kind == KindInterface {
			sort.Strings(t.PossibleTypes)
		}
	}
}

func (b *builder) checkRef(s *Schema, ref *TypeRef, path Coordinate) {
	name := ref.baseName()
	if _, ok := s.types[name]; !ok {
		b.problem(ErrUnknownType, path, "reference to undefined type %q", name)
	}
}

func typeRefFromAST(t *ast.Type) *TypeRef {
	if t.Elem != nil {
		return &TypeRef{Elem: typeRefFromAST(t.Elem), NonNull: t.NonNull}
	}
	return &TypeRef{Named: t.NamedType, NonNull: t.NonNull}
}

func kindOf(k ast.DefinitionKind) Kind {
	switch k {
	case ast.Object:
		return KindObject
	case ast.Interface:
		return KindInterface
	case ast.Union:
		return KindUnion
	case ast.Enum:
		return KindEnum
	case ast.InputObject:
		return KindInputObject
	default:
		return KindScalar
	}
}
