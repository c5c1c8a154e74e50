package weather

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/litescript/ls-skyscore/internal/optics"
)

const (
	// DefaultCacheTTL is how long cached conditions stay fresh.
	DefaultCacheTTL = time.Hour

	// DefaultNeighborRadiusKm is how far a neighbour lookup may reach.
	DefaultNeighborRadiusKm = 50.0

	// DefaultCacheBucket is the forecast time step entries are keyed by.
	DefaultCacheBucket = time.Hour
)

// Source says where a Lookup result came from.
type Source string

const (
	SourceProvider Source = "provider"
	SourceCache    Source = "cache"
	SourceNeighbor Source = "neighbor"
)

// Cache holds recently fetched conditions keyed by coordinates rounded to
// 0.1° and the time bucket they describe. Entries older than the TTL are
// dropped when encountered.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	bucket  time.Duration
	clock   clockwork.Clock
	entries map[string]cacheEntry
}

type cacheEntry struct {
	lat, lon   float64
	at         time.Time // start of the time bucket
	conditions Conditions
	storedAt   time.Time
}

// Stats is a snapshot of a Cache.
type Stats struct {
	Entries int           `json:"entries"`
	Valid   int           `json:"valid"`
	TTL     time.Duration `json:"ttl"`
	Bucket  time.Duration `json:"bucket"`
}

// NewCache creates a cache with DefaultCacheBucket. A nil clock uses the
// real clock; a non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	return NewBucketedCache(ttl, DefaultCacheBucket, clock)
}

// NewBucketedCache creates a cache whose entries cover bucket-long time
// steps. It should match the resolution of the provider being cached.
func NewBucketedCache(ttl, bucket time.Duration, clock clockwork.Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if bucket <= 0 {
		bucket = DefaultCacheBucket
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		ttl:     ttl,
		bucket:  bucket,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// Key returns the cache key for a coordinate pair.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.1f,%.1f", math.Round(lat*10)/10, math.Round(lon*10)/10)
}

func (c *Cache) bucketOf(t time.Time) time.Time {
	return t.UTC().Truncate(c.bucket)
}

func (c *Cache) key(lat, lon float64, t time.Time) string {
	return Key(lat, lon) + "|" + c.bucketOf(t).Format(time.RFC3339)
}

// Get returns fresh conditions stored for the rounded coordinate and the
// time bucket containing t.
func (c *Cache) Get(lat, lon float64, t time.Time) (Conditions, bool) {
	key := c.key(lat, lon, t)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Conditions{}, false
	}
	if c.expired(e) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Conditions{}, false
	}
	return e.conditions, true
}

// Put stores conditions for a coordinate at time t.
func (c *Cache) Put(lat, lon float64, t time.Time, cond Conditions) {
	c.mu.Lock()
	c.entries[c.key(lat, lon, t)] = cacheEntry{
		lat:        lat,
		lon:        lon,
		at:         c.bucketOf(t),
		conditions: cond,
		storedAt:   c.clock.Now(),
	}
	c.mu.Unlock()
}

// Nearest returns the closest fresh entry within radiusKm for the time
// bucket containing t, evicting any expired entries it walks past.
func (c *Cache) Nearest(lat, lon float64, t time.Time, radiusKm float64) (Conditions, float64, bool) {
	at := c.bucketOf(t)

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		best     Conditions
		bestDist = math.Inf(1)
		found    bool
	)
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			continue
		}
		if !e.at.Equal(at) {
			continue
		}
		d := optics.Haversine(lat, lon, e.lat, e.lon)
		if d < radiusKm && d < bestDist {
			best, bestDist, found = e.conditions, d, true
		}
	}
	return best, bestDist, found
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats counts stored and still-fresh entries.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Stats{Entries: len(c.entries), TTL: c.ttl, Bucket: c.bucket}
	for _, e := range c.entries {
		if !c.expired(e) {
			st.Valid++
		}
	}
	return st
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Cache) expired(e cacheEntry) bool {
	return c.clock.Since(e.storedAt) >= c.ttl
}

// CachedProvider decorates a Provider with a Cache and neighbour lookup.
type CachedProvider struct {
	inner    Provider
	cache    *Cache
	radiusKm float64
}

// NewCachedProvider wraps inner. A non-positive radiusKm disables neighbour lookup.
func NewCachedProvider(inner Provider, cache *Cache, radiusKm float64) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, radiusKm: radiusKm}
}

// Cache returns the underlying cache.
func (p *CachedProvider) Cache() *Cache { return p.cache }

// NeighborRadiusKm returns how far neighbour lookups reach; 0 when disabled.
func (p *CachedProvider) NeighborRadiusKm() float64 { return math.Max(p.radiusKm, 0) }

// Lookup returns conditions for the time bucket containing t and where they
// came from.
func (p *CachedProvider) Lookup(ctx context.Context, lat, lon float64, t time.Time) (Conditions, Source, error) {
	if cond, ok := p.cache.Get(lat, lon, t); ok {
		return cond, SourceCache, nil
	}
	if p.radiusKm > 0 {
		if cond, _, ok := p.cache.Nearest(lat, lon, t, p.radiusKm); ok {
			return cond, SourceNeighbor, nil
		}
	}

	cond, err := p.inner.Conditions(ctx, lat, lon, t)
	if err != nil {
		return Conditions{}, "", fmt.Errorf("fetch weather at %.2f,%.2f: %w", lat, lon, err)
	}
	cond = cond.Clamp()
	p.cache.Put(lat, lon, t, cond)
	return cond, SourceProvider, nil
}

// Conditions implements Provider.
func (p *CachedProvider) Conditions(ctx context.Context, lat, lon float64, t time.Time) (Conditions, error) {
	cond, _, err := p.Lookup(ctx, lat, lon, t)
	return cond, err
}
