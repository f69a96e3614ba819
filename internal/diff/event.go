package diff

import "github.com/roach88/gqlcheck/internal/schema"

// Change is one atomic structural difference between two schema versions.
// Created once by Compare, immutable afterwards.
type Change struct {
	Code        Code              `json:"code"`
	Category    Category          `json:"category"`
	Path        schema.Coordinate `json:"path"`
	Description string            `json:"description"`
}

// newChange builds a change with the category taken from the fixed table.
func newChange(code Code, path schema.Coordinate, description string) Change {
	return Change{
		Code:        code,
		Category:    CategoryOf(code),
		Path:        path,
		Description: description,
	}
}
