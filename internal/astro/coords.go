// Package astro provides low-precision solar and lunar ephemerides and the
// coordinate math needed to place them in an observer's sky.
//
// Public functions take and return degrees; trigonometry is done in radians
// internally. All functions are pure and safe for concurrent use.
package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian Date of the J2000.0 epoch.
const J2000 = 2451545.0

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
}

// Equatorial holds geocentric equatorial coordinates.
type Equatorial struct {
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)
}

// Horizontal holds observer-relative coordinates.
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Altitude: 0° = horizon, 90° = zenith
type Horizontal struct {
	AltDeg float64
	AzDeg  float64
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/Alt) for a given observer and time.
func EquatorialToHorizontal(eq Equatorial, obs Observer, t time.Time) Horizontal {
	lat := degToRad(obs.LatDeg)
	dec := degToRad(eq.DecDeg)

	ha := degToRad(LocalSiderealTime(t, obs.LonDeg) - eq.RAdeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clampUnit(sinAlt))

	// Azimuth measured from north through east.
	az := math.Atan2(
		-math.Cos(dec)*math.Sin(ha),
		math.Sin(dec)*math.Cos(lat)-math.Cos(dec)*math.Sin(lat)*math.Cos(ha),
	)

	return Horizontal{
		AltDeg: radToDeg(alt),
		AzDeg:  normalizeAngle360(radToDeg(az)),
	}
}

// LocalSiderealTime calculates the Local Sidereal Time in degrees
// for a given UTC time and observer longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(GreenwichMeanSiderealTime(t) + lonDeg)
}

// GreenwichMeanSiderealTime calculates GMST in degrees for a given time.
// Uses the IAU 1982 expression in Julian Date.
func GreenwichMeanSiderealTime(t time.Time) float64 {
	jd := JulianDate(t)
	T := JulianCenturies(jd)

	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return normalizeAngle360(gmst)
}

// JulianDate returns the Julian Date for t.
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JulianCenturies returns Julian centuries elapsed since J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	return radToDeg(2 * math.Asin(math.Sqrt(clampUnit(a))))
}

// ElevationTier categorizes altitude for display.
type ElevationTier int

const (
	ElevationNone   ElevationTier = iota // Below horizon
	ElevationLow                         // 0-15 degrees
	ElevationMedium                      // 15-45 degrees
	ElevationHigh                        // 45+ degrees
)

// GetElevationTier returns the tier for a given elevation.
func GetElevationTier(elDeg float64) ElevationTier {
	switch {
	case elDeg <= 0:
		return ElevationNone
	case elDeg < 15:
		return ElevationLow
	case elDeg < 45:
		return ElevationMedium
	default:
		return ElevationHigh
	}
}

// String returns a short label for the tier.
func (t ElevationTier) String() string {
	switch t {
	case ElevationLow:
		return "low"
	case ElevationMedium:
		return "medium"
	case ElevationHigh:
		return "high"
	default:
		return "below horizon"
	}
}

// clampUnit clamps x into [-1, 1] so inverse trig never sees rounding overshoot.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
