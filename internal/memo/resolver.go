// Package memo provides a per-run cache-then-fetch resolver keyed by string.
package memo

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Fetch computes the value for key on a cache miss.
type Fetch[V any] func(ctx context.Context, key string) (V, error)

type options struct {
	cacheFailures bool
}

// Option configures a Resolver.
type Option func(*options)

// CacheFailures memoizes fetch errors too, so a failing key is fetched once.
func CacheFailures() Option {
	return func(o *options) {
		o.cacheFailures = true
	}
}

type entry[V any] struct {
	value V
	err   error
}

// Resolver returns cached values or computes and stores them. Entries never
// expire; a Resolver lives for one command invocation.
type Resolver[V any] struct {
	store *cache.Cache
	fetch Fetch[V]
	opts  options
}

// New creates a resolver around fetch.
func New[V any](fetch Fetch[V], opts ...Option) *Resolver[V] {
	r := &Resolver[V]{
		store: cache.New(cache.NoExpiration, 0),
		fetch: fetch,
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// Get returns the cached entry for key, fetching it on the first call.
func (r *Resolver[V]) Get(ctx context.Context, key string) (V, error) {
	if e, ok := r.lookup(key); ok {
		return e.value, e.err
	}

	v, err := r.fetch(ctx, key)
	if err == nil {
		r.store.Set(key, entry[V]{value: v}, cache.NoExpiration)
	} else if r.opts.cacheFailures {
		r.store.Set(key, entry[V]{value: v, err: err}, cache.NoExpiration)
	}
	return v, err
}

// Peek returns a cached successful value without fetching.
func (r *Resolver[V]) Peek(key string) (V, bool) {
	e, ok := r.lookup(key)
	if !ok || e.err != nil {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores v for key, replacing any cached entry.
func (r *Resolver[V]) Put(key string, v V) {
	r.store.Set(key, entry[V]{value: v}, cache.NoExpiration)
}

// Seed stores v only when key has no entry yet. It reports whether v was stored.
func (r *Resolver[V]) Seed(key string, v V) bool {
	return r.store.Add(key, entry[V]{value: v}, cache.NoExpiration) == nil
}

// Len returns the number of cached entries, failures included.
func (r *Resolver[V]) Len() int {
	return r.store.ItemCount()
}

func (r *Resolver[V]) lookup(key string) (entry[V], bool) {
	raw, ok := r.store.Get(key)
	if !ok {
		return entry[V]{}, false
	}
	return raw.(entry[V]), true
}
