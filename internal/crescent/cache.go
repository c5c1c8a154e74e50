package crescent

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skyscore/internal/lru"
)

// DefaultCacheSize bounds a Cache when no size is given.
const DefaultCacheSize = 5000

// Cache memoizes CalculateQ by calendar day and coordinates rounded to 0.1°.
// Results are computed at the rounded coordinates so the cached value does
// not depend on which nearby point asked first.
type Cache struct {
	lru *lru.Cache[string, Result]
}

// NewCache returns a cache bounded to size entries.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{lru: lru.New[string, Result](size)}
}

// Q returns the cached or freshly computed result.
func (c *Cache) Q(lat, lon float64, date time.Time) Result {
	r, _ := c.Lookup(lat, lon, date)
	return r
}

// Lookup is Q that also reports whether the result came from the cache.
func (c *Cache) Lookup(lat, lon float64, date time.Time) (Result, bool) {
	rlat, rlon := round1(lat), round1(lon)
	return c.lru.GetOrCompute(cacheKey(rlat, rlon, date), func() Result {
		return CalculateQ(rlat, rlon, date)
	})
}

// Len returns the number of cached results.
func (c *Cache) Len() int { return c.lru.Len() }

// Stats returns lifetime hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) { return c.lru.Stats() }

func cacheKey(lat, lon float64, date time.Time) string {
	_, offset := date.Zone()
	return fmt.Sprintf("%s%+d|%.1f,%.1f", date.Format("2006-01-02"), offset, lat, lon)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
