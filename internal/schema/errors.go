package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Schema construction error codes (S100-S199)
const (
	// Uniqueness violations (S100-S109)
	ErrDuplicateType      = "S100" // type name defined more than once
	ErrDuplicateField     = "S101" // field name repeated within a type
	ErrDuplicateArgument  = "S102" // argument name repeated within a field
	ErrDuplicateEnumValue = "S103" // enum value repeated within an enum
	ErrDuplicateMember    = "S104" // union member listed more than once

	// Reference violations (S110-S119)
	ErrUnknownType     = "S110" // reference to an undefined type
	ErrExtendUndefined = "S111" // extension of an undefined type
	ErrEmptyUnion      = "S112" // union with no members
)

// Problem is one invariant violation found during construction.
type Problem struct {
	Code    string     `json:"code"`
	Path    Coordinate `json:"path"`
	Message string     `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s: %s", p.Code, p.Path, p.Message)
}

// InvalidSchemaError reports that a schema document violates the model
// invariants. All violations are collected before returning (no fail-fast).
type InvalidSchemaError struct {
	Problems []Problem
}

// Error implements the error interface.
func (e *InvalidSchemaError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid schema: " + e.Problems[0].String()
	}
	lines := make([]string, 0, len(e.Problems)+1)
	lines = append(lines, fmt.Sprintf("invalid schema: %d problems", len(e.Problems)))
	for _, p := range e.Problems {
		lines = append(lines, "  "+p.String())
	}
	return strings.Join(lines, "\n")
}

// AsInvalidSchema extracts an InvalidSchemaError from an error chain.
func AsInvalidSchema(err error) (*InvalidSchemaError, bool) {
	var ise *InvalidSchemaError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}
