// Package weather holds the weather inputs to visibility scoring and the
// caller-side plumbing around them: a provider interface, a deterministic
// synthetic provider, and a TTL cache with neighbour lookup.
package weather

import (
	"math"

	"github.com/litescript/ls-skyscore/internal/optics"
)

// Conditions describes the weather at one location.
type Conditions struct {
	CloudCover    float64 `json:"cloudCover"`    // fraction of sky covered [0,1]
	Precipitation float64 `json:"precipitation"` // mm/h, >= 0
	Fog           float64 `json:"fog"`           // fog fraction [0,1]

	// ExtinctionCoeff, when non-zero, overrides the value derived from the
	// fields above (see WithExtinction).
	ExtinctionCoeff float64 `json:"extinctionCoeff,omitempty"`
}

// Clear is a cloudless, dry, fog-free sky.
var Clear = Conditions{}

// Clamp returns c with fractional fields clamped to [0,1] and precipitation
// floored at 0. The extinction override is never allowed below clear air.
func (c Conditions) Clamp() Conditions {
	c.CloudCover = clamp01(c.CloudCover)
	c.Fog = clamp01(c.Fog)
	if c.Precipitation < 0 {
		c.Precipitation = 0
	}
	if c.ExtinctionCoeff != 0 && c.ExtinctionCoeff < optics.ClearAirExtinction {
		c.ExtinctionCoeff = optics.ClearAirExtinction
	}
	return c
}

// Extinction returns the extinction coefficient β for these conditions.
func (c Conditions) Extinction() float64 {
	if c.ExtinctionCoeff != 0 {
		return c.ExtinctionCoeff
	}
	return optics.ExtinctionCoefficient(c.CloudCover, c.Precipitation, c.Fog)
}

// WithExtinction returns c with ExtinctionCoeff pre-computed from its fields.
func (c Conditions) WithExtinction() Conditions {
	c.ExtinctionCoeff = optics.ExtinctionCoefficient(c.CloudCover, c.Precipitation, c.Fog)
	return c
}

// VisibilityKm returns the Koschmieder visibility for these conditions.
func (c Conditions) VisibilityKm() float64 {
	return optics.KoschmiederVisibility(c.Extinction())
}

// FogFromVisibility estimates a fog fraction from a reported horizontal
// visibility: 0 at 10 km or more, rising linearly to 1 at 0 km.
func FogFromVisibility(visibilityKm float64) float64 {
	if math.IsNaN(visibilityKm) || visibilityKm >= 10 {
		return 0
	}
	return clamp01(1 - visibilityKm/10)
}

// FromObservation converts raw provider readings into clamped Conditions.
// cloudPercent is 0-100, precipitation is mm/h, visibilityKm is the reported
// horizontal visibility (pass a negative value when unknown).
func FromObservation(cloudPercent, precipitationMMh, visibilityKm float64) Conditions {
	fog := 0.0
	if visibilityKm >= 0 {
		fog = FogFromVisibility(visibilityKm)
	}
	return Conditions{
		CloudCover:    round2(cloudPercent / 100),
		Precipitation: round2(precipitationMMh),
		Fog:           round2(fog),
	}.Clamp()
}

// Rating maps cloud cover onto a 1-10 scale (10 = clear).
func (c Conditions) Rating() int {
	r := int(math.Round((1-clamp01(c.CloudCover))*9 + 1))
	if r < 1 {
		return 1
	}
	if r > 10 {
		return 10
	}
	return r
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
