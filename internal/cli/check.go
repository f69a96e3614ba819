package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/gqlcheck/internal/classify"
	"github.com/roach88/gqlcheck/internal/policy"
	"github.com/roach88/gqlcheck/internal/report"
	"github.com/roach88/gqlcheck/internal/schema"
	"github.com/roach88/gqlcheck/internal/usage"
	"github.com/roach88/gqlcheck/internal/validate"
)

// oracleCacheSize bounds the per-run LRU in front of the usage store.
const oracleCacheSize = 1024

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		usageDB    string
		policyPath string
		tag        string
	)

	cmd := &cobra.Command{
		Use:   "check <old-schema> <new-schema>",
		Short: "Compare two schema versions and report a pass/fail verdict",
		Long: `Compare two SDL files, classify every structural change by risk to
existing consumers using usage telemetry, and report a verdict.

Without --usage-db the run has no telemetry: every removal fails safe, and
warnings escalate to a failing verdict unless the policy disables that.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, checkInputs{
				oldPath:    args[0],
				newPath:    args[1],
				usageDB:    usageDB,
				policyPath: policyPath,
				tag:        tag,
			})
		},
	}

	cmd.Flags().StringVar(&usageDB, "usage-db", "", "SQLite usage telemetry database")
	cmd.Flags().StringVar(&policyPath, "policy", "", "YAML policy file")
	cmd.Flags().StringVar(&tag, "tag", "production", "telemetry tag (schema variant)")

	return cmd
}

type checkInputs struct {
	oldPath    string
	newPath    string
	usageDB    string
	policyPath string
	tag        string
}

func runCheck(opts *RootOptions, cmd *cobra.Command, in checkInputs) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	pol := policy.Default()
	if in.policyPath != "" {
		var err error
		pol, err = policy.Load(in.policyPath)
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load policy", err)
		}
	}

	oldDoc, err := LoadSchemaDocument(in.oldPath)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	newDoc, err := LoadSchemaDocument(in.newPath)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	oracle, cleanup, err := openOracle(in.usageDB, in.tag)
	if err != nil {
		formatter.Error(ErrCodeUsageDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open usage database", err)
	}
	defer cleanup()

	result, err := validate.Run(cmd.Context(), oldDoc, newDoc, oracle, classify.Options{
		Window:       pol.Window(),
		QueryTimeout: pol.Timeout(),
		Concurrency:  pol.QueryConcurrency,
	})
	if err != nil {
		if _, ok := schema.AsInvalidSchema(err); ok {
			// Render the synthetic INVALID_SCHEMA result rather than a bare
			// error, so CI sees the same result shape as any other run.
			if renderErr := renderResult(opts, formatter, validate.InvalidResult(err)); renderErr != nil {
				return WrapExitError(ExitCommandError, "render result", renderErr)
			}
			return NewExitError(ExitFailure, "invalid schema")
		}
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "validate schemas", err)
	}

	if err := renderResult(opts, formatter, result); err != nil {
		return WrapExitError(ExitCommandError, "render result", err)
	}

	return verdict(cmd, pol, result)
}

// verdict maps a result to the process exit code. Failing severities always
// fail; warnings fail only under the no-telemetry escalation policy.
func verdict(cmd *cobra.Command, pol policy.Policy, result *validate.Result) error {
	if !result.Passed {
		return NewExitError(ExitFailure, "schema check failed")
	}
	if result.OverallSeverity == classify.Warning && !result.UsageDataAvailable && pol.EscalateWarnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warnings escalated to a failing verdict: no usage data available")
		return NewExitError(ExitFailure, "warnings without usage data")
	}
	return nil
}

func renderResult(opts *RootOptions, formatter *OutputFormatter, result *validate.Result) error {
	fingerprint, err := report.Fingerprint(result)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return report.RenderJSON(formatter.Writer, report.Response{
			CheckID:     uuid.NewString(),
			Fingerprint: fingerprint,
			Result:      result,
		})
	}

	report.RenderText(formatter.Writer, result)
	formatter.VerboseLog("fingerprint: %s", fingerprint)
	return nil
}

func reportLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		formatter.Error(loadErr.Code, loadErr.Error(), nil)
	} else {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
	}
	return WrapExitError(ExitCommandError, "load schema", err)
}

// openOracle picks the oracle implementation: the SQLite store behind an LRU
// when a database is given, otherwise the no-telemetry oracle.
func openOracle(path, tag string) (usage.Oracle, func(), error) {
	if path == "" {
		return usage.NoTelemetry(), func() {}, nil
	}

	store, err := usage.Open(path, tag)
	if err != nil {
		return nil, nil, err
	}

	cached, err := usage.NewCached(store, oracleCacheSize)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return cached, func() { store.Close() }, nil
}
