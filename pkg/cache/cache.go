// Package cache stores computed artifacts (network layouts, provider
// responses) behind one small interface.
//
// # Backends
//
//   - [NullCache]: never stores anything; the default when caching is off
//   - [FileCache]: one JSON file per key under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several server replicas
//
// [Open] picks a backend from [Options]. Every backend returned by Open is
// wrapped so cache hits, misses and writes reach the observability hooks.
//
// # Keys
//
// Keys come from a [Keyer] so that the same inputs always produce the same
// key across processes and backends.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string // file backend
	Redis   RedisOptions
}

// Open creates the backend named by opts.Backend. An empty backend name
// means no caching.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var c Cache
	var err error
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.Redis)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Observed(c), nil
}

// Observed reports every operation on c to [observability.Cache]. The key
// type is the part of the key before the first colon.
func Observed(c Cache) Cache { return &observed{inner: c} }

type observed struct{ inner Cache }

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (o *observed) Delete(ctx context.Context, key string) error { return o.inner.Delete(ctx, key) }
func (o *observed) Close() error                                 { return o.inner.Close() }

func keyType(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}
