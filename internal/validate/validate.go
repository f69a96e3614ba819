// Package validate is the pipeline entry point: build both schema models,
// diff them, classify each change against usage telemetry, and aggregate a
// deterministic pass/fail result.
package validate

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlcheck/internal/classify"
	"github.com/roach88/gqlcheck/internal/diff"
	"github.com/roach88/gqlcheck/internal/schema"
	"github.com/roach88/gqlcheck/internal/usage"
)

// Result is the final outcome of one schema comparison.
type Result struct {
	Changes            []classify.Classified `json:"changes"`
	OverallSeverity    classify.Severity     `json:"overall_severity"`
	UsageDataAvailable bool                  `json:"usage_data_available"`
	Passed             bool                  `json:"passed"`
}

// Run compares two parsed schema documents. It fails only with
// *schema.InvalidSchemaError, when either document violates the model
// invariants; a well-formed pair always yields a complete Result.
func Run(ctx context.Context, oldDoc, newDoc *ast.SchemaDocument, oracle usage.Oracle, opts classify.Options) (*Result, error) {
	oldSchema, err := schema.Build(oldDoc)
	if err != nil {
		return nil, err
	}
	newSchema, err := schema.Build(newDoc)
	if err != nil {
		return nil, err
	}

	changes := diff.Compare(oldSchema, newSchema)
	slog.Debug("schemas compared", "changes", len(changes))

	classified, dataAvailable := classify.Run(ctx, changes, oracle, opts)
	return aggregate(classified, dataAvailable), nil
}

// InvalidResult builds the synthetic single-event failure result for a
// schema that could not be constructed, for callers that must always render
// a result rather than an error.
func InvalidResult(err error) *Result {
	event := classify.Classified{
		Change: diff.Change{
			Code:        diff.CodeInvalidSchema,
			Category:    diff.CategoryOf(diff.CodeInvalidSchema),
			Description: err.Error(),
		},
		Severity: classify.Failure,
	}
	return &Result{
		Changes:         []classify.Classified{event},
		OverallSeverity: classify.Failure,
		Passed:          false,
	}
}

// OrderChanges sorts and deduplicates unclassified changes with the same
// ordering the aggregator applies: category group, then path, then code.
func OrderChanges(changes []diff.Change) []diff.Change {
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Category.Rank() != changes[j].Category.Rank() {
			return changes[i].Category.Rank() < changes[j].Category.Rank()
		}
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Code < changes[j].Code
	})

	type key struct {
		code diff.Code
		path schema.Coordinate
	}
	seen := make(map[key]bool, len(changes))
	out := changes[:0]
	for _, c := range changes {
		k := key{code: c.Code, path: c.Path}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// aggregate orders and deduplicates classified changes and derives the
// overall verdict. Sort order: category group (additions, updates,
// removals), then path, then code. The order is stable across runs.
func aggregate(classified []classify.Classified, dataAvailable bool) *Result {
	sort.SliceStable(classified, func(i, j int) bool {
		ci, cj := classified[i], classified[j]
		if ci.Category.Rank() != cj.Category.Rank() {
			return ci.Category.Rank() < cj.Category.Rank()
		}
		if ci.Path != cj.Path {
			return ci.Path < cj.Path
		}
		return ci.Code < cj.Code
	})

	type key struct {
		code diff.Code
		path schema.Coordinate
	}
	seen := make(map[key]bool, len(classified))

	result := &Result{
		Changes:            make([]classify.Classified, 0, len(classified)),
		OverallSeverity:    classify.Notice,
		UsageDataAvailable: dataAvailable,
	}
	for _, c := range classified {
		k := key{code: c.Code, path: c.Path}
		if seen[k] {
			continue
		}
		seen[k] = true
		result.Changes = append(result.Changes, c)
		result.OverallSeverity = classify.Max(result.OverallSeverity, c.Severity)
	}

	result.Passed = result.OverallSeverity != classify.Failure
	return result
}
