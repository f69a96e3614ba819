// Package classify assigns a severity to each structural change, consulting
// the usage oracle for changes that can break existing consumers. Oracle
// queries for distinct changes fan out concurrently; a failed or timed-out
// query is treated as NoData, never as a pipeline error, so classification
// results are identical regardless of query concurrency.
package classify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/gqlcheck/internal/diff"
	"github.com/roach88/gqlcheck/internal/usage"
)

// Classified pairs a change with its severity. The change itself is never
// mutated; classification wraps it.
type Classified struct {
	diff.Change
	Severity Severity `json:"severity"`
}

// Options bound the oracle fan-out.
type Options struct {
	Window       time.Duration // usage lookback, e.g. 30 days
	QueryTimeout time.Duration // per-query deadline; expiry means NoData
	Concurrency  int           // max in-flight oracle queries
}

// Of applies the classification rules to one change:
//
//  1. ADDITION is always NOTICE.
//  2. UPDATE is always WARNING, including required-argument additions.
//  3. REMOVAL is NOTICE only when telemetry confirms the element unused;
//     Used and NoData both fail, so missing telemetry fails safe.
func Of(change diff.Change, answer usage.Answer) Severity {
	switch change.Category {
	case diff.CategoryAddition:
		return Notice
	case diff.CategoryUpdate:
		return Warning
	default: // removal
		if answer == usage.Unused {
			return Notice
		}
		return Failure
	}
}

// needsOracle reports whether a change's classification consults telemetry:
// every removal, plus the required-argument addition (an UPDATE-categorized
// ARG_ADDED), whose answer feeds usage-data availability.
func needsOracle(change diff.Change) bool {
	if change.Category == diff.CategoryRemoval {
		return true
	}
	return change.Code == diff.CodeArgAdded && change.Category == diff.CategoryUpdate
}

// Run classifies every change, querying the oracle concurrently for the
// changes that need it. The second return value reports whether the oracle
// had telemetry for at least one queried change.
func Run(ctx context.Context, changes []diff.Change, oracle usage.Oracle, opts Options) ([]Classified, bool) {
	answers := make([]usage.Answer, len(changes))

	g := &errgroup.Group{}
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, change := range changes {
		if !needsOracle(change) {
			continue
		}
		i, change := i, change
		g.Go(func() error {
			answers[i] = query(ctx, oracle, change, opts)
			return nil
		})
	}
	g.Wait() // goroutines never return errors

	dataAvailable := false
	classified := make([]Classified, len(changes))
	for i, change := range changes {
		if needsOracle(change) && answers[i] != usage.NoData {
			dataAvailable = true
		}
		classified[i] = Classified{Change: change, Severity: Of(change, answers[i])}
	}

	return classified, dataAvailable
}

func query(ctx context.Context, oracle usage.Oracle, change diff.Change, opts Options) usage.Answer {
	if opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.QueryTimeout)
		defer cancel()
	}

	answer, err := oracle.HasUsage(ctx, change.Path, opts.Window)
	if err != nil {
		slog.Debug("usage query failed, treating as no data",
			"path", change.Path,
			"error", err)
		return usage.NoData
	}

	slog.Debug("usage query answered",
		"path", change.Path,
		"answer", answer)
	return answer
}
