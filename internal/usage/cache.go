package usage

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/gqlcheck/internal/schema"
)

// Cached is a read-through LRU wrapper around another oracle. A comparison
// queries one window, so the cache key is the coordinate alone; do not share
// a Cached across comparisons with different windows.
type Cached struct {
	inner Oracle
	cache *lru.Cache[schema.Coordinate, Answer]
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner Oracle, size int) (*Cached, error) {
	cache, err := lru.New[schema.Coordinate, Answer](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// HasUsage implements Oracle. Errors are not cached.
func (c *Cached) HasUsage(ctx context.Context, coordinate schema.Coordinate, window time.Duration) (Answer, error) {
	if answer, ok := c.cache.Get(coordinate); ok {
		return answer, nil
	}

	answer, err := c.inner.HasUsage(ctx, coordinate, window)
	if err != nil {
		return answer, err
	}

	c.cache.Add(coordinate, answer)
	return answer, nil
}
