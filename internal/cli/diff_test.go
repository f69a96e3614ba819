package cli

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/diff"
)

func TestDiffTextOutput(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.graphql", `type Query { user: String legacy: Int }`)
	newPath := writeFile(t, dir, "new.graphql", `type Query { user: String fresh: Boolean }`)

	out, _, err := execute(t, "diff", oldPath, newPath)

	require.NoError(t, err, "diff never fails on valid schemas")
	assert.Contains(t, out, "FIELD_ADDED")
	assert.Contains(t, out, "FIELD_REMOVED")
	assert.Contains(t, out, "2 changes")
}

func TestDiffNoChanges(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.graphql", `type Query { user: String }`)

	out, _, err := execute(t, "diff", oldPath, oldPath)

	require.NoError(t, err)
	assert.Contains(t, out, "no changes detected")
}

func TestDiffJSONOutput(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.graphql", `type Query { user: String }`)
	newPath := writeFile(t, dir, "new.graphql", `type Query { user: String! }`)

	out, _, err := execute(t, "diff", oldPath, newPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []diff.Change `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, diff.CodeFieldChangedKind, resp.Data[0].Code)
}

func TestDiffInvalidSchemaIsCommandError(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.graphql", `type Query { user: String }`)
	newPath := writeFile(t, dir, "new.graphql", `type Query { user: Ghost }`)

	out, _, err := execute(t, "diff", oldPath, newPath)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeSchema)
}

func TestDiffOrdersChangesByCategory(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.graphql", `type Query { z: String b: String }`)
	newPath := writeFile(t, dir, "new.graphql", `type Query { a: String b: Int }`)

	out, _, err := execute(t, "diff", oldPath, newPath)
	require.NoError(t, err)

	addIdx := strings.Index(out, "FIELD_ADDED")
	updIdx := strings.Index(out, "FIELD_CHANGED_KIND")
	remIdx := strings.Index(out, "FIELD_REMOVED")
	assert.True(t, addIdx < updIdx && updIdx < remIdx, "additions, then updates, then removals")
}
