package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/usage"
)

func TestIngestLoadsRecords(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "usage.db")
	records := writeFile(t, dir, "records.json", `[
		{"coordinate": "Query.user", "seen_at": "2026-08-01T00:00:00Z", "count": 42},
		{"coordinate": "Query.ping", "seen_at": "2026-08-02T00:00:00Z", "count": 3}
	]`)

	out, _, err := execute(t, "ingest", records, "--usage-db", db)

	require.NoError(t, err)
	assert.Contains(t, out, "ingested 2 records")

	store, err := usage.Open(db, "production")
	require.NoError(t, err)
	defer store.Close()

	answer, err := store.HasUsage(context.Background(), "Query.user", 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, usage.Used, answer)
}

func TestIngestThenCheckEndToEnd(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "usage.db")
	records := writeFile(t, dir, "records.json",
		`[{"coordinate": "Query.ping", "seen_at": "`+time.Now().Format(time.RFC3339)+`", "count": 10}]`)

	_, _, err := execute(t, "ingest", records, "--usage-db", db)
	require.NoError(t, err)

	oldPath := writeFile(t, dir, "old.graphql", checkOldSDL)
	newPath := writeFile(t, dir, "new.graphql", checkNewSDL)

	out, _, err := execute(t, "check", oldPath, newPath, "--usage-db", db)

	require.NoError(t, err, "removal of unused field passes with telemetry present")
	assert.Contains(t, out, "verdict: PASSED")
}

func TestIngestMissingRecordsFile(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "ingest", filepath.Join(dir, "absent.json"),
		"--usage-db", filepath.Join(dir, "usage.db"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestIngestMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	records := writeFile(t, dir, "records.json", `{"not": "an array"`)

	out, _, err := execute(t, "ingest", records,
		"--usage-db", filepath.Join(dir, "usage.db"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeParse)
}

func TestIngestRequiresUsageDB(t *testing.T) {
	dir := t.TempDir()
	records := writeFile(t, dir, "records.json", `[]`)

	_, _, err := execute(t, "ingest", records)
	assert.Error(t, err)
}
