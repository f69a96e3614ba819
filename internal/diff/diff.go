// Package diff walks two schema models in lockstep and produces the complete
// set of structural changes between them. The walk is lexicographic by name
// at every level, so identical inputs always yield identical, identically
// ordered output. Compare is a pure function: it cannot fail on models that
// passed construction.
package diff

import (
	"fmt"

	"github.com/roach88/gqlcheck/internal/schema"
)

// Compare returns every structural change from old to new.
func Compare(oldSchema, newSchema *schema.Schema) []Change {
	d := &differ{}

	for _, name := range sortedUnion(oldSchema.TypeNames(), newSchema.TypeNames()) {
		oldType, inOld := oldSchema.Type(name)
		newType, inNew := newSchema.Type(name)

		switch {
		case !inNew:
			d.emit(newChange(CodeTypeRemoved, schema.TypeCoordinate(name),
				fmt.Sprintf("type %s was removed", name)))
		case !inOld:
			d.emit(newChange(CodeTypeAdded, schema.TypeCoordinate(name),
				fmt.Sprintf("type %s was added", name)))
		case oldType.Kind != newType.Kind:
			// Incompatible shapes: no deeper comparison.
			d.emit(newChange(CodeTypeKindChanged, schema.TypeCoordinate(name),
				fmt.Sprintf("type %s changed kind from %s to %s", name, oldType.Kind, newType.Kind)))
		default:
			d.compareType(oldType, newType)
		}
	}

	return d.changes
}

type differ struct {
	changes []Change
}

func (d *differ) emit(c Change) {
	d.changes = append(d.changes, c)
}

func (d *differ) compareType(oldType, newType *schema.TypeDef) {
	switch newType.Kind {
	case schema.KindObject, schema.KindInputObject:
		d.compareFields(oldType, newType)
	case schema.KindInterface:
		d.compareFields(oldType, newType)
		d.compareMembers(oldType, newType)
	case schema.KindEnum:
		d.compareEnumValues(oldType, newType)
	case schema.KindUnion:
		d.compareMembers(oldType, newType)
	}
}

func (d *differ) compareFields(oldType, newType *schema.TypeDef) {
	typeName := newType.Name

	for _, fieldName := range sortedUnion(oldType.FieldNames(), newType.FieldNames()) {
		oldField, inOld := oldType.Field(fieldName)
		newField, inNew := newType.Field(fieldName)
		path := schema.FieldCoordinate(typeName, fieldName)

		switch {
		case !inNew:
			d.emit(newChange(CodeFieldRemoved, path,
				fmt.Sprintf("field %s was removed from type %s", fieldName, typeName)))
		case !inOld:
			d.emit(newChange(CodeFieldAdded, path,
				fmt.Sprintf("field %s was added to type %s", fieldName, typeName)))
		default:
			d.compareField(typeName, oldField, newField)
		}
	}
}

func (d *differ) compareField(typeName string, oldField, newField *schema.FieldDef) {
	path := schema.FieldCoordinate(typeName, newField.Name)

	if !oldField.Type.Equal(newField.Type) {
		d.emit(newChange(CodeFieldChangedKind, path,
			fmt.Sprintf("field %s changed type from %s to %s", path, oldField.Type, newField.Type)))
	}

	switch {
	case !oldField.Deprecated && newField.Deprecated:
		desc := fmt.Sprintf("field %s was deprecated", path)
		if newField.DeprecationReason != "" {
			desc += fmt.Sprintf(" (reason: %s)", newField.DeprecationReason)
		}
		d.emit(newChange(CodeFieldDeprecationAdded, path, desc))
	case oldField.Deprecated && !newField.Deprecated:
		d.emit(newChange(CodeFieldDeprecationRemoved, path,
			fmt.Sprintf("field %s is no longer deprecated", path)))
	}

	d.compareArgs(typeName, oldField, newField)
}

func (d *differ) compareArgs(typeName string, oldField, newField *schema.FieldDef) {
	fieldName := newField.Name

	for _, argName := range sortedUnion(oldField.ArgNames(), newField.ArgNames()) {
		oldArg, inOld := oldField.Arg(argName)
		newArg, inNew := newField.Arg(argName)
		path := schema.ArgCoordinate(typeName, fieldName, argName)

		switch {
		case !inNew:
			d.emit(newChange(CodeArgRemoved, path,
				fmt.Sprintf("argument %s was removed from field %s.%s", argName, typeName, fieldName)))
		case !inOld:
			d.emitArgAdded(typeName, fieldName, newArg)
		default:
			if !oldArg.Type.Equal(newArg.Type) {
				d.emit(newChange(CodeArgChangedKind, path,
					fmt.Sprintf("argument %s changed type from %s to %s", path, oldArg.Type, newArg.Type)))
			}
			if oldArg.HasDefault != newArg.HasDefault || oldArg.Default != newArg.Default {
				d.emit(newChange(CodeArgDefaultValueChange, path,
					fmt.Sprintf("default value of argument %s changed from %s to %s",
						path, renderDefault(oldArg), renderDefault(newArg))))
			}
		}
	}
}

// emitArgAdded handles the one exception to the fixed category table: a new
// required argument breaks existing calls that omit it, so it is categorized
// UPDATE instead of ADDITION.
func (d *differ) emitArgAdded(typeName, fieldName string, arg *schema.ArgumentDef) {
	path := schema.ArgCoordinate(typeName, fieldName, arg.Name)

	if arg.Required() {
		d.emit(Change{
			Code:     CodeArgAdded,
			Category: CategoryUpdate,
			Path:     path,
			Description: fmt.Sprintf("required argument %s: %s was added to field %s.%s",
				arg.Name, arg.Type, typeName, fieldName),
		})
		return
	}

	d.emit(newChange(CodeArgAdded, path,
		fmt.Sprintf("argument %s: %s was added to field %s.%s", arg.Name, arg.Type, typeName, fieldName)))
}

func (d *differ) compareEnumValues(oldType, newType *schema.TypeDef) {
	typeName := newType.Name
	oldValues := stringSet(oldType.EnumValues)
	newValues := stringSet(newType.EnumValues)

	for _, value := range sortedUnion(oldType.EnumValues, newType.EnumValues) {
		path := schema.FieldCoordinate(typeName, value)
		switch {
		case !newValues[value]:
			d.emit(newChange(CodeEnumValueRemoved, path,
				fmt.Sprintf("enum value %s was removed from %s", value, typeName)))
		case !oldValues[value]:
			d.emit(newChange(CodeEnumValueAdded, path,
				fmt.Sprintf("enum value %s was added to %s", value, typeName)))
		}
	}
}

func (d *differ) compareMembers(oldType, newType *schema.TypeDef) {
	typeName := newType.Name
	oldMembers := stringSet(oldType.PossibleTypes)
	newMembers := stringSet(newType.PossibleTypes)

	for _, member := range sortedUnion(oldType.PossibleTypes, newType.PossibleTypes) {
		path := schema.FieldCoordinate(typeName, member)
		switch {
		case !newMembers[member]:
			d.emit(newChange(CodeUnionMemberRemoved, path,
				fmt.Sprintf("possible type %s was removed from %s", member, typeName)))
		case !oldMembers[member]:
			d.emit(newChange(CodeUnionMemberAdded, path,
				fmt.Sprintf("possible type %s was added to %s", member, typeName)))
		}
	}
}

func renderDefault(arg *schema.ArgumentDef) string {
	if !arg.HasDefault {
		return "(none)"
	}
	return arg.Default
}

// sortedUnion merges two sorted name slices, dropping duplicates.
func sortedUnion(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func stringSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
