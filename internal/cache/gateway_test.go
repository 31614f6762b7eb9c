package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Gateway, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb), mr
}

func TestGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGateway(t)

	_, ok := g.Get(ctx, "users:page=1")
	assert.False(t, ok)

	g.Set(ctx, "users:page=1", []byte(`{"data":[]}`), time.Minute)

	b, ok := g.Get(ctx, "users:page=1")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"data":[]}`), b)

	// TTL was applied on the remote side.
	assert.Greater(t, mr.TTL("users:page=1"), time.Duration(0))
}

func TestEntryExpires(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGateway(t)

	g.Set(ctx, "k", []byte("v"), time.Second)
	mr.FastForward(2 * time.Second)

	_, ok := g.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRemoteOutageIsAMiss(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGateway(t)

	g.Set(ctx, "k", []byte("v"), time.Minute)
	mr.Close()

	// Transport failure folds into "no cached value"; Set is silent.
	_, ok := g.Get(ctx, "k")
	assert.False(t, ok)
	g.Set(ctx, "k2", []byte("v"), time.Minute)
}

func TestNilClientAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	g := New(nil)

	_, ok := g.Get(ctx, "k")
	assert.False(t, ok)
	g.Set(ctx, "k", []byte("v"), time.Minute) // must not panic
}

func TestGetHonorsCallerCancellation(t *testing.T) {
	g, _ := newTestGateway(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := g.Get(ctx, "k")
	assert.False(t, ok)
}
