package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/diff"
	"github.com/roach88/gqlcheck/internal/schema"
	"github.com/roach88/gqlcheck/internal/validate"
)

// NewDiffCommand creates the diff command: structural changes only, no
// telemetry, no verdict.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old-schema> <new-schema>",
		Short: "List structural changes between two schema versions",
		Long: `List every structural change between two SDL files without consulting
usage telemetry. Useful for reviewing a change set before running check.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, cmd, args[0], args[1])
		},
	}

	return cmd
}

func runDiff(opts *RootOptions, cmd *cobra.Command, oldPath, newPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	oldDoc, err := LoadSchemaDocument(oldPath)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	newDoc, err := LoadSchemaDocument(newPath)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	oldSchema, err := schema.Build(oldDoc)
	if err != nil {
		formatter.Error(ErrCodeSchema, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build old schema", err)
	}
	newSchema, err := schema.Build(newDoc)
	if err != nil {
		formatter.Error(ErrCodeSchema, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build new schema", err)
	}

	changes := validate.OrderChanges(diff.Compare(oldSchema, newSchema))

	if opts.Format == "json" {
		return formatter.Success(changes)
	}

	if len(changes) == 0 {
		fmt.Fprintln(formatter.Writer, "no changes detected")
		return nil
	}
	for _, c := range changes {
		fmt.Fprintf(formatter.Writer, "%-8s %-24s %s\n", c.Category, c.Code, c.Description)
	}
	fmt.Fprintf(formatter.Writer, "\n%d changes\n", len(changes))
	return nil
}
