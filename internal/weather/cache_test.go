package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	cond  Conditions
	err   error
}

func (p *countingProvider) Conditions(context.Context, float64, float64, time.Time) (Conditions, error) {
	p.calls++
	return p.cond, p.err
}

func TestKey_RoundsToTenthDegree(t *testing.T) {
	assert.Equal(t, "51.5,-0.1", Key(51.4987, -0.1276))
	assert.Equal(t, Key(10.04, 20.04), Key(9.96, 19.96))
	assert.NotEqual(t, Key(10.0, 20.0), Key(10.1, 20.0))
}

func TestCache_GetPut(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Hour, clock)

	now := clock.Now()

	_, ok := c.Get(40, -74, now)
	assert.False(t, ok)

	c.Put(40, -74, now, Conditions{CloudCover: 0.3})
	got, ok := c.Get(40.02, -74.03, now)
	require.True(t, ok)
	assert.Equal(t, 0.3, got.CloudCover)
}

func TestCache_KeyedByTimeBucket(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 9, 12, 10, 0, 0, time.UTC))
	c := NewCache(time.Hour, clock)
	noon := clock.Now()

	c.Put(40, -74, noon, Conditions{CloudCover: 0.3})

	got, ok := c.Get(40, -74, noon.Add(40*time.Minute))
	require.True(t, ok, "same hour shares an entry")
	assert.Equal(t, 0.3, got.CloudCover)

	_, ok = c.Get(40, -74, noon.Add(6*time.Hour))
	assert.False(t, ok)
	_, _, ok = c.Nearest(40.1, -74, noon.Add(6*time.Hour), 50)
	assert.False(t, ok, "neighbours from another hour do not count")

	c.Put(40, -74, noon.Add(6*time.Hour), Conditions{CloudCover: 0.8})
	assert.Equal(t, 2, c.Len())
	got, _ = c.Get(40, -74, noon)
	assert.Equal(t, 0.3, got.CloudCover)
}

func TestCache_Stats(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewBucketedCache(time.Hour, 10*time.Minute, clock)

	c.Put(1, 1, clock.Now(), Clear)
	clock.Advance(45 * time.Minute)
	c.Put(2, 2, clock.Now(), Clear)
	clock.Advance(30 * time.Minute)

	assert.Equal(t, Stats{Entries: 2, Valid: 1, TTL: time.Hour, Bucket: 10 * time.Minute}, c.Stats())
}

func TestCache_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Hour, clock)

	at := clock.Now()
	c.Put(40, -74, at, Conditions{CloudCover: 0.3})
	clock.Advance(59 * time.Minute)
	_, ok := c.Get(40, -74, at)
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get(40, -74, at)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on access")
}

func TestCache_Nearest(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Hour, clock)

	at := clock.Now()

	c.Put(40.0, -74.0, at, Conditions{CloudCover: 0.1})
	c.Put(40.3, -74.0, at, Conditions{CloudCover: 0.9})

	// ~11 km from the first entry, ~22 km from the second.
	got, dist, ok := c.Nearest(40.1, -74.0, at, 50)
	require.True(t, ok)
	assert.Equal(t, 0.1, got.CloudCover)
	assert.InDelta(t, 11.1, dist, 0.5)

	_, _, ok = c.Nearest(45, -74, at, 50)
	assert.False(t, ok)

	clock.Advance(2 * time.Hour)
	_, _, ok = c.Nearest(40.1, -74.0, at, 50)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Defaults(t *testing.T) {
	c := NewCache(0, nil)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
	assert.Equal(t, DefaultCacheBucket, c.bucket)
	assert.NotNil(t, c.clock)

	c.Put(1, 1, time.Now(), Clear)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCachedProvider_Sources(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingProvider{cond: Conditions{CloudCover: 1.5}}
	p := NewCachedProvider(inner, NewCache(time.Hour, clock), DefaultNeighborRadiusKm)
	ctx := context.Background()
	now := clock.Now()

	c1, src, err := p.Lookup(ctx, 48.85, 2.35, now)
	require.NoError(t, err)
	assert.Equal(t, SourceProvider, src)
	assert.Equal(t, 1.0, c1.CloudCover, "provider output is clamped")

	_, src, err = p.Lookup(ctx, 48.85, 2.35, now)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)

	_, src, err = p.Lookup(ctx, 48.95, 2.35, now)
	require.NoError(t, err)
	assert.Equal(t, SourceNeighbor, src)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_FollowsRequestedTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC))
	inner := NewSynthetic(0)
	p := NewCachedProvider(inner, NewCache(time.Hour, clock), DefaultNeighborRadiusKm)
	ctx := context.Background()

	for _, at := range []time.Time{clock.Now(), clock.Now().Add(6 * time.Hour), clock.Now().AddDate(0, 0, 30)} {
		want, err := inner.Conditions(ctx, 21.4, 39.8, at)
		require.NoError(t, err)

		got, src, err := p.Lookup(ctx, 21.4, 39.8, at)
		require.NoError(t, err)
		assert.Equal(t, SourceProvider, src, "first lookup at %v", at)
		assert.Equal(t, want, got, "conditions at %v", at)

		_, src, err = p.Lookup(ctx, 21.4, 39.8, at)
		require.NoError(t, err)
		assert.Equal(t, SourceCache, src)
	}
	assert.Equal(t, 3, p.Cache().Len())
}

func TestCachedProvider_NoNeighbourRadius(t *testing.T) {
	inner := &countingProvider{cond: Clear}
	p := NewCachedProvider(inner, NewCache(time.Hour, clockwork.NewFakeClock()), 0)

	_, err := p.Conditions(context.Background(), 10, 10, time.Now())
	require.NoError(t, err)
	_, err = p.Conditions(context.Background(), 10.2, 10, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_Error(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	p := NewCachedProvider(inner, NewCache(time.Hour, clockwork.NewFakeClock()), 50)

	_, _, err := p.Lookup(context.Background(), 10, 10, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, inner.err)
	assert.Contains(t, err.Error(), "fetch weather")
}
