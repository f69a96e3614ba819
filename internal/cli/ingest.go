package cli

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/usage"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		usageDB string
		tag     string
	)

	cmd := &cobra.Command{
		Use:   "ingest <records-file>",
		Short: "Load usage telemetry records into a usage database",
		Long: `Load a JSON array of usage records into the SQLite usage database.

Each record has the shape:

	{"coordinate": "Query.user", "seen_at": "2026-08-01T00:00:00Z", "count": 42}`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, cmd, args[0], usageDB, tag)
		},
	}

	cmd.Flags().StringVar(&usageDB, "usage-db", "", "SQLite usage telemetry database (required)")
	cmd.Flags().StringVar(&tag, "tag", "production", "telemetry tag (schema variant)")
	cmd.MarkFlagRequired("usage-db")

	return cmd
}

func runIngest(opts *RootOptions, cmd *cobra.Command, recordsPath, usageDB, tag string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(recordsPath)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read records", err)
	}

	var records []usage.Record
	if err := json.Unmarshal(data, &records); err != nil {
		formatter.Error(ErrCodeParse, fmt.Sprintf("%s: %v", recordsPath, err), nil)
		return WrapExitError(ExitCommandError, "parse records", err)
	}

	store, err := usage.Open(usageDB, tag)
	if err != nil {
		formatter.Error(ErrCodeUsageDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open usage database", err)
	}
	defer store.Close()

	if err := store.Ingest(cmd.Context(), records); err != nil {
		formatter.Error(ErrCodeUsageDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "ingest records", err)
	}

	return formatter.Success(fmt.Sprintf("ingested %d records into %s (tag %s)", len(records), usageDB, tag))
}
