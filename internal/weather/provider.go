package weather

import (
	"context"
	"math"
	"time"
)

// Provider supplies weather conditions for a location and time.
type Provider interface {
	Conditions(ctx context.Context, lat, lon float64, t time.Time) (Conditions, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, lat, lon float64, t time.Time) (Conditions, error)

// Conditions implements Provider.
func (f ProviderFunc) Conditions(ctx context.Context, lat, lon float64, t time.Time) (Conditions, error) {
	return f(ctx, lat, lon, t)
}

// Static always returns the same conditions.
type Static Conditions

// Conditions implements Provider.
func (s Static) Conditions(context.Context, float64, float64, time.Time) (Conditions, error) {
	return Conditions(s), nil
}

// Synthetic generates deterministic, spatially smooth weather for demos and
// tests. Values are resolved on a coarse grid (CellDeg) and time bucket
// (Bucket) so neighbouring points and instants share the same conditions.
type Synthetic struct {
	CellDeg float64
	Bucket  time.Duration
	Seed    float64
}

// DefaultSyntheticCellDeg and DefaultSyntheticBucket match the coarse
// resolution real providers are queried at.
const (
	DefaultSyntheticCellDeg = 5.0
	DefaultSyntheticBucket  = time.Hour
)

// NewSynthetic returns a Synthetic provider with default resolution.
func NewSynthetic(seed float64) *Synthetic {
	return &Synthetic{
		CellDeg: DefaultSyntheticCellDeg,
		Bucket:  DefaultSyntheticBucket,
		Seed:    seed,
	}
}

// Conditions implements Provider.
func (s *Synthetic) Conditions(_ context.Context, lat, lon float64, t time.Time) (Conditions, error) {
	cell := s.CellDeg
	if cell <= 0 {
		cell = DefaultSyntheticCellDeg
	}
	bucket := s.Bucket
	if bucket <= 0 {
		bucket = DefaultSyntheticBucket
	}

	la := math.Floor(lat/cell) * cell
	lo := math.Floor(lon/cell) * cell
	h := float64(t.UTC().Truncate(bucket).Unix()) / 3600

	// Overlapping low-frequency waves drifting with time.
	cloud := 0.5 + 0.35*math.Sin(degToRad(la*3+lo*1.7)+h*0.13+s.Seed) +
		0.15*math.Sin(degToRad(lo*5-la*2)-h*0.07+s.Seed*2)
	cloud = clamp01(cloud)

	precip := 0.0
	if cloud > 0.75 {
		precip = (cloud - 0.75) * 12
	}

	// Reported horizontal visibility, 10 km and up in clear air.
	visKm := 10 * (1 - clamp01(0.4*math.Sin(degToRad(la*7-lo*4)+h*0.21+s.Seed*3)-0.2))

	return FromObservation(cloud*100, precip, visKm), nil
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
