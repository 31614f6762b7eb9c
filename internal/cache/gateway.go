// Package cache talks to the remote key-value cache service used by the
// listing read path.  The cache is advisory: every failure mode (timeout,
// transport error, genuine miss, or the service simply not running) folds
// into "no cached value", and writes are fire-and-forget.  A read backed by
// the database must never fail because of this package.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// getTimeout bounds the wait on a cache lookup.  Past this point the caller
// proceeds to the source of truth as if the key were absent.
const getTimeout = 500 * time.Millisecond

// Gateway wraps the remote cache client.  A Gateway built over a nil client
// (cache service unreachable at startup) is valid and behaves as an
// always-miss cache.
type Gateway struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Gateway { return &Gateway{rdb: rdb} }

// Get returns the cached value for key, or ok=false when there is none.
// Misses, timeouts and transport failures are indistinguishable to callers;
// unexpected errors are logged and swallowed.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, bool) {
	if g == nil || g.rdb == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, getTimeout)
	defer cancel()

	b, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %q: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

// Set stores value under key for ttl, best effort.  It runs after the source
// of truth has already produced the result, so failures are logged and
// discarded.  A detached context keeps the write from being cancelled along
// with the (already answered) request.
func (g *Gateway) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if g == nil || g.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), getTimeout)
	defer cancel()

	if err := g.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache: set %q: %v", key, err)
	}
}
