package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/pkg/adapters/redis"
	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunResultCacheContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "line", "(count:<e,i> scene:e)"))
	assert.Equal(t, time.Minute, mr.TTL(redis.DefaultPrefix+"line"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "line")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("corpus:v2:"))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", "(exists:<e,t> scene:e)"))
	assert.True(t, mr.Exists("corpus:v2:abc"))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"abc"))
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_SharedBetweenPipelines(t *testing.T) {
	store, mr := newStore(t)
	line := "(count (filter_color scene red))"

	first, err := clevrprog.New(catalog.Default(), clevrprog.WithCache(store))
	require.NoError(t, err)
	want, err := first.Process(line)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	// A second pipeline with the same settings reads the stored entry.
	second, err := clevrprog.New(catalog.Default(), clevrprog.WithCache(store))
	require.NoError(t, err)
	got, err := second.Process(line)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, mr.Keys(), 1)

	// Factoring changes the key.
	factored, err := clevrprog.New(catalog.Default(),
		clevrprog.WithAttributeFactoring(true), clevrprog.WithCache(store))
	require.NoError(t, err)
	_, err = factored.Process(line)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 2)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	store := redis.New(addr, "", 0)
	defer store.Close()

	_, err := store.Get(context.Background(), "line")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}
