// Package usage defines the telemetry capability the validation pipeline
// consumes: has a schema element seen real traffic within a window. The
// pipeline depends only on the Oracle interface; the SQLite store and the
// LRU cache here are collaborator implementations.
package usage

import (
	"context"
	"time"

	"github.com/roach88/gqlcheck/internal/schema"
)

// Answer is the oracle's verdict for one coordinate. NoData is distinct
// from Unused: it means no telemetry exists at all for the schema/tag, and
// the classifier treats it conservatively.
type Answer string

const (
	Used   Answer = "USED"
	Unused Answer = "UNUSED"
	NoData Answer = "NO_DATA"
)

// Oracle answers whether a schema element was used within the window ending
// now. Implementations own their transport and retry policy; the pipeline
// maps any error or timeout to NoData.
type Oracle interface {
	HasUsage(ctx context.Context, coordinate schema.Coordinate, window time.Duration) (Answer, error)
}

// Static is an in-memory oracle backed by a fixed coordinate set.
// Used in tests and when running without telemetry.
type Static struct {
	used    map[schema.Coordinate]bool
	hasData bool
}

// NewStatic returns an oracle that answers Used for the given coordinates
// and Unused for everything else.
func NewStatic(used ...schema.Coordinate) *Static {
	set := make(map[schema.Coordinate]bool, len(used))
	for _, c := range used {
		set[c] = true
	}
	return &Static{used: set, hasData: true}
}

// NoTelemetry returns an oracle that answers NoData for every coordinate.
func NoTelemetry() *Static {
	return &Static{}
}

// HasUsage implements Oracle.
func (s *Static) HasUsage(_ context.Context, coordinate schema.Coordinate, _ time.Duration) (Answer, error) {
	if !s.hasData {
		return NoData, nil
	}
	if s.used[coordinate] {
		return Used, nil
	}
	return Unused, nil
}
