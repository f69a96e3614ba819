package diff

// Code identifies one kind of structural change. The set is closed and the
// spellings are wire-stable: CI integrations match on them.
type Code string

const (
	CodeTypeAdded       Code = "TYPE_ADDED"
	CodeTypeRemoved     Code = "TYPE_REMOVED"
	CodeTypeKindChanged Code = "TYPE_KIND_CHANGED"

	CodeFieldAdded              Code = "FIELD_ADDED"
	CodeFieldRemoved            Code = "FIELD_REMOVED"
	CodeFieldChangedKind        Code = "FIELD_CHANGED_KIND"
	CodeFieldDeprecationAdded   Code = "FIELD_DEPRECATION_ADDED"
	CodeFieldDeprecationRemoved Code = "FIELD_DEPRECATION_REMOVED"

	CodeArgAdded              Code = "ARG_ADDED"
	CodeArgRemoved            Code = "ARG_REMOVED"
	CodeArgChangedKind        Code = "ARG_CHANGED_KIND"
	CodeArgDefaultValueChange Code = "ARG_DEFAULT_VALUE_CHANGE"

	CodeEnumValueAdded   Code = "ENUM_VALUE_ADDED"
	CodeEnumValueRemoved Code = "ENUM_VALUE_REMOVED"

	CodeUnionMemberAdded   Code = "UNION_MEMBER_ADDED"
	CodeUnionMemberRemoved Code = "UNION_MEMBER_REMOVED"

	// CodeInvalidSchema is the synthetic code for a schema that failed to
	// construct. The differ never emits it; see validate.InvalidResult.
	CodeInvalidSchema Code = "INVALID_SCHEMA"
)

// Category groups codes by the direction of the change.
type Category string

const (
	CategoryAddition Category = "ADDITION"
	CategoryUpdate   Category = "UPDATE"
	CategoryRemoval  Category = "REMOVAL"
)

// Rank orders categories for result grouping: additions, updates, removals.
func (c Category) Rank() int {
	switch c {
	case CategoryAddition:
		return 0
	case CategoryUpdate:
		return 1
	case CategoryRemoval:
		return 2
	}
	return 3
}

// categoryByCode is the fixed code-to-category table. The single exception is
// ARG_ADDED for a required argument, which the differ categorizes as UPDATE
// because existing calls that omit the argument break.
var categoryByCode = map[Code]Category{
	CodeTypeAdded:       CategoryAddition,
	CodeTypeRemoved:     CategoryRemoval,
	CodeTypeKindChanged: CategoryUpdate,

	CodeFieldAdded:              CategoryAddition,
	CodeFieldRemoved:            CategoryRemoval,
	CodeFieldChangedKind:        CategoryUpdate,
	CodeFieldDeprecationAdded:   CategoryUpdate,
	CodeFieldDeprecationRemoved: CategoryUpdate,

	CodeArgAdded:              CategoryAddition,
	CodeArgRemoved:            CategoryRemoval,
	CodeArgChangedKind:        CategoryUpdate,
	CodeArgDefaultValueChange: CategoryUpdate,

	CodeEnumValueAdded:   CategoryAddition,
	CodeEnumValueRemoved: CategoryRemoval,

	CodeUnionMemberAdded:   CategoryAddition,
	CodeUnionMemberRemoved: CategoryRemoval,

	CodeInvalidSchema: CategoryUpdate,
}

// CategoryOf returns the category a code maps to in the fixed table.
func CategoryOf(code Code) Category {
	return categoryByCode[code]
}
