package cache

import (
	"context"
	"sync/atomic"
	"time"
)

var _ Cache = (*NullCache)(nil)

// NullCache backs a layout engine when caching is off (--no-cache, or a
// backend that could not be opened). Every lookup misses, so each network
// layout is computed fresh. It counts the lookups it turned away.
type NullCache struct {
	misses atomic.Int64
}

// NewNullCache returns an empty NullCache.
func NewNullCache() Cache { return new(NullCache) }

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	c.misses.Add(1)
	return nil, false, nil
}

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

// Misses is the number of Get calls served so far.
func (c *NullCache) Misses() int64 { return c.misses.Load() }
