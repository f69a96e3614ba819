package cli

import (
	"fmt"
	"os"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// LoadError represents an error that occurred while loading an input file.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

// LoadSchemaDocument reads and parses one SDL file. The returned document is
// syntactically valid; model invariants are checked later by schema.Build.
func LoadSchemaDocument(path string) (*ast.SchemaDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "schema file not found"}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}

	doc, err := parser.ParseSchema(&ast.Source{Name: path, Input: string(data)})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Path: path, Message: err.Error()}
	}

	return doc, nil
}
