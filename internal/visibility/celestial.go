package visibility

import (
	"math"
	"time"

	"github.com/litescript/ls-skyscore/internal/astro"
	"github.com/litescript/ls-skyscore/internal/weather"
)

const (
	// BelowHorizonCutoffDeg is the altitude below which a target scores 0.
	BelowHorizonCutoffDeg = -2.0

	// RampTopDeg is where the horizon ramp reaches 1.
	RampTopDeg = 10.0

	// AltitudeSaturationDeg is the altitude at which the altitude factor saturates.
	AltitudeSaturationDeg = 60.0

	// EarthshineFloor is the Moon's brightness factor at new moon.
	EarthshineFloor = 0.1
)

// Weights of the combined celestial score. They sum to 1.
const (
	weightWeather    = 0.30
	weightTime       = 0.30
	weightAltitude   = 0.25
	weightBrightness = 0.15
)

// Breakdown explains a celestial score.
type Breakdown struct {
	Score          float64  `json:"score"`
	ObjectAltitude float64  `json:"objectAltitude"`
	ObjectAzimuth  float64  `json:"objectAzimuth"`
	Illumination   *float64 `json:"illumination"` // percent, Moon only
	PhaseName      string   `json:"phaseName,omitempty"`
	IsAboveHorizon bool     `json:"isAboveHorizon"`
	WeatherRating  int      `json:"weatherRating"`
	TimeRating     int      `json:"timeRating"`
	SunAltitude    float64  `json:"sunAltitude"`
}

// sighting is a resolved target at one instant.
type sighting struct {
	kind       targetKind
	altitude   float64
	azimuth    float64
	brightness float64
	fraction   float64 // lunar illuminated fraction, Moon only
	waxing     bool
}

func locate(target Target, lat, lon float64, t time.Time) sighting {
	s := sighting{kind: kindOf(target)}

	switch s.kind {
	case kindSun:
		p := astro.SunPosition(t, lat, lon)
		s.altitude, s.azimuth = p.AltitudeDeg, p.AzimuthDeg
		s.brightness = 1

	case kindEquatorial:
		obj := target.(EquatorialObject)
		h := astro.EquatorialToHorizontal(
			astro.Equatorial{RAdeg: obj.RAdeg, DecDeg: obj.DecDeg},
			astro.Observer{LatDeg: lat, LonDeg: lon},
			t,
		)
		s.altitude, s.azimuth = h.AltDeg, h.AzDeg
		s.brightness = MagnitudeBrightness(obj.Magnitude)

	default:
		p := astro.MoonPosition(t, lat, lon)
		illum := astro.MoonIllumination(t)
		s.altitude, s.azimuth = p.AltitudeDeg, p.AzimuthDeg
		s.fraction, s.waxing = illum.Fraction, illum.Waxing()
		s.brightness = MoonBrightness(illum.Fraction)
	}
	return s
}

// ScoreCelestial returns a [0,1] score for seeing target from (lat, lon) at t.
// A nil target is scored as the Moon.
func ScoreCelestial(lat, lon float64, t time.Time, w weather.Conditions, target Target) float64 {
	s := locate(target, lat, lon, t)
	return score(s.kind, s.altitude, astro.SunAltitude(t, lat, lon), s.brightness, w)
}

// CelestialBreakdown computes ScoreCelestial together with the values that
// went into it.
func CelestialBreakdown(lat, lon float64, t time.Time, w weather.Conditions, target Target) Breakdown {
	s := locate(target, lat, lon, t)
	sunAlt := astro.SunAltitude(t, lat, lon)

	b := Breakdown{
		Score:          score(s.kind, s.altitude, sunAlt, s.brightness, w),
		ObjectAltitude: s.altitude,
		ObjectAzimuth:  s.azimuth,
		IsAboveHorizon: s.altitude > 0,
		WeatherRating:  w.Rating(),
		SunAltitude:    sunAlt,
	}

	if s.kind == kindMoon {
		pct := s.fraction * 100
		b.Illumination = &pct
		b.PhaseName = astro.PhaseName(s.fraction, s.waxing)
	}

	if s.kind == kindSun {
		b.TimeRating = 1
		if sunAlt > 0 {
			b.TimeRating = 10
		}
	} else {
		tf, _ := timeFactor(s.kind, sunAlt)
		b.TimeRating = rating(tf)
	}
	return b
}

// score combines the resolved geometry into the final [0,1] value.
func score(kind targetKind, objAlt, sunAlt, brightness float64, w weather.Conditions) float64 {
	if objAlt < BelowHorizonCutoffDeg {
		return 0
	}
	tf, ok := timeFactor(kind, sunAlt)
	if !ok {
		return 0
	}

	raw := weightWeather*WeatherFactor(w) +
		weightTime*tf +
		weightAltitude*AltitudeFactor(objAlt) +
		weightBrightness*brightness

	return clamp01(raw * HorizonRamp(objAlt))
}

// timeFactor returns the solar-altitude light factor. ok is false when the
// target cannot be seen at all because the Sun is up.
func timeFactor(kind targetKind, sunAlt float64) (float64, bool) {
	if kind == kindSun {
		if sunAlt > 0 {
			return 1, true
		}
		return 0, true
	}

	switch {
	case sunAlt < -18:
		return 1.0, true
	case sunAlt < -12:
		return 0.9, true
	case sunAlt < -6:
		return 0.75, true
	case sunAlt < 0:
		return 0.5, true
	}

	if kind == kindMoon {
		return math.Max(0.2, 0.5-sunAlt/180), true
	}
	return 0, false
}

// WeatherFactor discounts sky visibility for cloud and fog.
func WeatherFactor(w weather.Conditions) float64 {
	return math.Max(0, 1-w.CloudCover*0.9-w.Fog*0.5)
}

// AltitudeFactor ramps linearly from 0 at the horizon to 1 at 60°.
func AltitudeFactor(altDeg float64) float64 {
	return clamp01(altDeg / AltitudeSaturationDeg)
}

// HorizonRamp fades the score in across [-2°, 10°].
func HorizonRamp(altDeg float64) float64 {
	if altDeg >= RampTopDeg {
		return 1
	}
	return clamp01((altDeg - BelowHorizonCutoffDeg) / (RampTopDeg - BelowHorizonCutoffDeg))
}

// MagnitudeBrightness maps apparent magnitude onto [0.05, 1].
func MagnitudeBrightness(mag float64) float64 {
	return clamp((6-mag)/10, 0.05, 1)
}

// MoonBrightness maps the illuminated fraction onto [0.1, 1].
func MoonBrightness(fraction float64) float64 {
	return EarthshineFloor + (1-EarthshineFloor)*fraction
}
