package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gqlcheck/internal/schema"
)

// countingOracle records how many times each coordinate was queried.
type countingOracle struct {
	inner Oracle
	calls map[schema.Coordinate]int
	err   error
}

func (c *countingOracle) HasUsage(ctx context.Context, coordinate schema.Coordinate, window time.Duration) (Answer, error) {
	if c.calls == nil {
		c.calls = make(map[schema.Coordinate]int)
	}
	c.calls[coordinate]++
	if c.err != nil {
		return NoData, c.err
	}
	return c.inner.HasUsage(ctx, coordinate, window)
}

func TestCachedHitsInnerOnce(t *testing.T) {
	counting := &countingOracle{inner: NewStatic("Query.user")}
	cached, err := NewCached(counting, 16)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		answer, err := cached.HasUsage(context.Background(), "Query.user", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, Used, answer)
	}

	assert.Equal(t, 1, counting.calls["Query.user"])
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	counting := &countingOracle{inner: NewStatic(), err: errors.New("transport down")}
	cached, err := NewCached(counting, 16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := cached.HasUsage(context.Background(), "Query.user", time.Hour)
		assert.Error(t, err)
	}

	assert.Equal(t, 3, counting.calls["Query.user"], "failed lookups must retry the inner oracle")
}
