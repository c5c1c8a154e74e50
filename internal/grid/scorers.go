package grid

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/lru"
	"github.com/litescript/ls-skyscore/internal/observability"
	"github.com/litescript/ls-skyscore/internal/visibility"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// Defaults for ScoreCache.
const (
	DefaultScoreCacheSize  = 20000
	DefaultScoreResolution = 0.1
	DefaultScoreTimeBucket = 10 * time.Minute
)

// ScoreCache memoizes celestial scores by rounded coordinates, time bucket
// and target.
type ScoreCache struct {
	lru        *lru.Cache[scoreKey, float64]
	resolution float64
	bucket     time.Duration
	metrics    *observability.Metrics
}

type scoreKey struct {
	lat, lon int64
	bucket   int64
	target   string
}

// NewScoreCache creates a cache. Non-positive arguments take the defaults.
func NewScoreCache(size int, resolution float64, bucket time.Duration, m *observability.Metrics) *ScoreCache {
	if size <= 0 {
		size = DefaultScoreCacheSize
	}
	if resolution <= 0 {
		resolution = DefaultScoreResolution
	}
	if bucket <= 0 {
		bucket = DefaultScoreTimeBucket
	}
	return &ScoreCache{
		lru:        lru.New[scoreKey, float64](size),
		resolution: resolution,
		bucket:     bucket,
		metrics:    m,
	}
}

func (c *ScoreCache) key(lat, lon float64, t time.Time, target string) scoreKey {
	return scoreKey{
		lat:    int64(math.Round(lat / c.resolution)),
		lon:    int64(math.Round(lon / c.resolution)),
		bucket: t.UTC().Truncate(c.bucket).Unix(),
		target: target,
	}
}

// GetOrCompute returns the cached score or stores compute's result. compute
// is called with the cell's rounded coordinates and the bucket start, so every
// point sharing a key gets the same score.
func (c *ScoreCache) GetOrCompute(lat, lon float64, t time.Time, target string, compute func(lat, lon float64, t time.Time) float64) float64 {
	k := c.key(lat, lon, t, target)
	v, hit := c.lru.GetOrCompute(k, func() float64 {
		return compute(float64(k.lat)*c.resolution, float64(k.lon)*c.resolution, time.Unix(k.bucket, 0).UTC())
	})
	if hit {
		c.metrics.CacheHit("score", "hit")
	} else {
		c.metrics.CacheHit("score", "miss")
	}
	return v
}

// Len returns the number of cached scores.
func (c *ScoreCache) Len() int { return c.lru.Len() }

// TargetKey is a stable cache key for a target.
func TargetKey(t visibility.Target) string {
	switch v := t.(type) {
	case visibility.WellKnown:
		return v.Body.String()
	case visibility.EquatorialObject:
		return fmt.Sprintf("eq:%.4f,%.4f,%.2f", v.RAdeg, v.DecDeg, v.Magnitude)
	default:
		return visibility.Moon.String()
	}
}

// Celestial scores target at time t, looking weather up per point. Points
// whose weather lookup fails score NaN. cache may be nil.
func Celestial(t time.Time, w weather.Provider, target visibility.Target, cache *ScoreCache) PointFunc[float64] {
	key := TargetKey(target)
	compute := func(ctx context.Context, lat, lon float64, at time.Time) float64 {
		cond, err := w.Conditions(ctx, lat, lon, at)
		if err != nil {
			return math.NaN()
		}
		return visibility.ScoreCelestial(lat, lon, at, cond, target)
	}
	return func(ctx context.Context, lat, lon float64) float64 {
		if cache == nil {
			return compute(ctx, lat, lon, t)
		}
		return cache.GetOrCompute(lat, lon, t, key, func(lat, lon float64, at time.Time) float64 {
			return compute(ctx, lat, lon, at)
		})
	}
}

// Surface scores seeing target from a sea-level observer at every point.
func Surface(t time.Time, w weather.Provider, target visibility.Position) PointFunc[float64] {
	return func(ctx context.Context, lat, lon float64) float64 {
		cond, err := w.Conditions(ctx, lat, lon, t)
		if err != nil {
			return math.NaN()
		}
		return visibility.ScoreSurface(visibility.Position{Lat: lat, Lon: lon}, target, cond, t)
	}
}

// Crescent classifies the evening of date's calendar day at every point,
// using each point's own solar time zone. cache may be nil.
func Crescent(date time.Time, cache *crescent.Cache) PointFunc[crescent.Zone] {
	return func(_ context.Context, lat, lon float64) crescent.Zone {
		local := crescent.LocalDate(date, lon)
		if cache == nil {
			return crescent.CalculateQ(lat, lon, local).Zone
		}
		return cache.Q(lat, lon, local).Zone
	}
}
