package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, time.Hour, zerolog.Nop()), mr
}

func TestCacheRoundTripAndEvict(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got entry
	require.False(t, c.Get(ctx, Users, "1", &got))

	c.Set(ctx, Users, "1", entry{Name: "ada", Count: 3})
	require.True(t, c.Get(ctx, Users, "1", &got))
	require.Equal(t, entry{Name: "ada", Count: 3}, got)

	c.Evict(ctx, Users, "1")
	require.False(t, c.Get(ctx, Users, "1", &got))
}

func TestCacheAppliesNamedTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, UserLeetcodeStats, "7", entry{Name: "x"})
	c.Set(ctx, "other", "7", entry{Name: "y"})

	require.Equal(t, 5*time.Minute, mr.TTL(entryKey(UserLeetcodeStats, "7")))
	require.Equal(t, time.Hour, mr.TTL(entryKey("other", "7")))

	mr.FastForward(6 * time.Minute)

	var got entry
	require.False(t, c.Get(ctx, UserLeetcodeStats, "7", &got))
	require.True(t, c.Get(ctx, "other", "7", &got))
}

func TestCacheIgnoresCorruptEntries(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set(entryKey(ProblemDetails, "1"), "{not json"))

	var got entry
	require.False(t, c.Get(context.Background(), ProblemDetails, "1", &got))
}

func TestDisabledCacheIsSafe(t *testing.T) {
	ctx := context.Background()

	var nilCache *Cache
	var got entry
	require.False(t, nilCache.Get(ctx, Users, "1", &got))
	nilCache.Set(ctx, Users, "1", entry{})
	nilCache.Evict(ctx, Users, "1")

	disabled := New(nil, 0, zerolog.Nop())
	disabled.Set(ctx, Users, "1", entry{Name: "ada"})
	require.False(t, disabled.Get(ctx, Users, "1", &got))
	require.Equal(t, 30*time.Minute, disabled.TTL("anything"))
}
