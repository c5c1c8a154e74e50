package astro

import (
	"math"
	"time"
)

// SolarPosition is the Sun's place in an observer's sky.
type SolarPosition struct {
	Equatorial
	AltitudeDeg float64
	AzimuthDeg  float64
}

// SunEquatorial returns the Sun's geocentric RA/Dec using a low-precision
// ephemeris: mean longitude, mean anomaly and the equation of center, rotated
// by the mean obliquity of the ecliptic. Good to roughly 0.01°.
func SunEquatorial(t time.Time) Equatorial {
	T := JulianCenturies(JulianDate(t))

	// Mean longitude and mean anomaly (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Equation of center
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	lambda := degToRad(L0 + C)
	eps := degToRad(meanObliquity(T))

	ra := math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda))
	dec := math.Asin(clampUnit(math.Sin(eps) * math.Sin(lambda)))

	return Equatorial{
		RAdeg:  normalizeAngle360(radToDeg(ra)),
		DecDeg: radToDeg(dec),
	}
}

// SunPosition returns the Sun's altitude and azimuth for an observer.
func SunPosition(t time.Time, lat, lon float64) SolarPosition {
	eq := SunEquatorial(t)
	h := EquatorialToHorizontal(eq, Observer{LatDeg: lat, LonDeg: lon}, t)
	return SolarPosition{
		Equatorial:  eq,
		AltitudeDeg: h.AltDeg,
		AzimuthDeg:  h.AzDeg,
	}
}

// SunAltitude is shorthand for SunPosition(t, lat, lon).AltitudeDeg.
func SunAltitude(t time.Time, lat, lon float64) float64 {
	return SunPosition(t, lat, lon).AltitudeDeg
}

// SunSeparation calculates the angular separation between the Sun and a target.
func SunSeparation(targetRA, targetDec float64, t time.Time) float64 {
	sun := SunEquatorial(t)
	return AngularSeparation(sun.RAdeg, sun.DecDeg, targetRA, targetDec)
}

// meanObliquity is the obliquity of the ecliptic in degrees, truncated to
// the linear term.
func meanObliquity(T float64) float64 {
	return 23.439 - 0.0130042*T
}

// SunPhase names the Sun's altitude band.
type SunPhase int

const (
	SunDay SunPhase = iota
	SunCivilTwilight
	SunNauticalTwilight
	SunAstronomicalTwilight
	SunNight
)

// GetSunPhase classifies a solar altitude into day, the three twilights, or night.
func GetSunPhase(sunAltDeg float64) SunPhase {
	switch {
	case sunAltDeg >= 0:
		return SunDay
	case sunAltDeg >= -6:
		return SunCivilTwilight
	case sunAltDeg >= -12:
		return SunNauticalTwilight
	case sunAltDeg >= -18:
		return SunAstronomicalTwilight
	default:
		return SunNight
	}
}

func (p SunPhase) String() string {
	switch p {
	case SunDay:
		return "day"
	case SunCivilTwilight:
		return "civil twilight"
	case SunNauticalTwilight:
		return "nautical twilight"
	case SunAstronomicalTwilight:
		return "astronomical twilight"
	default:
		return "night"
	}
}
