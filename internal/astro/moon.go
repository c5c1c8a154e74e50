package astro

import (
	"math"
	"time"
)

const (
	// MoonRadiusKm is the mean lunar radius.
	MoonRadiusKm = 1737.4

	// EarthRadiusKm is the equatorial Earth radius used for lunar parallax.
	EarthRadiusKm = 6378.14

	// SunDistanceKm is the mean Earth-Sun distance used for the phase angle.
	SunDistanceKm = 149598000.0
)

// LunarPosition is the Moon's place in an observer's sky.
//
// AltitudeDeg is geocentric (as seen from Earth's centre projected onto the
// observer's horizon). TopocentricAltDeg subtracts the lunar parallax in
// altitude, which is up to ~1° near the horizon.
type LunarPosition struct {
	Equatorial
	AltitudeDeg       float64
	AzimuthDeg        float64
	TopocentricAltDeg float64
	DistanceKm        float64
}

// LunarIllumination describes the Moon's phase.
type LunarIllumination struct {
	Phase    float64 // [0,1): 0 new, 0.25 first quarter, 0.5 full, 0.75 last quarter
	Fraction float64 // illuminated fraction [0,1]: 0 new, 1 full
	Angle    float64 // position angle of the bright limb's midpoint, radians
}

// Waxing reports whether the illuminated fraction is increasing.
func (l LunarIllumination) Waxing() bool {
	return l.Phase < 0.5
}

// moonGeocentric returns the Moon's geocentric RA/Dec and distance using a
// low-precision ephemeris: mean longitude, mean anomaly, the first
// perturbation term in longitude and the leading distance term.
func moonGeocentric(t time.Time) (Equatorial, float64) {
	d := JulianDate(t) - J2000

	L := degToRad(218.316 + 13.176396*d) // mean longitude
	M := degToRad(134.963 + 13.064993*d) // mean anomaly
	F := degToRad(93.272 + 13.229350*d)  // mean distance from ascending node

	lon := L + degToRad(6.289)*math.Sin(M)
	lat := degToRad(5.128) * math.Sin(F)
	dist := 385001 - 20905*math.Cos(M)

	eps := degToRad(meanObliquity(JulianCenturies(JulianDate(t))))

	ra := math.Atan2(math.Sin(lon)*math.Cos(eps)-math.Tan(lat)*math.Sin(eps), math.Cos(lon))
	dec := math.Asin(clampUnit(math.Sin(lat)*math.Cos(eps) + math.Cos(lat)*math.Sin(eps)*math.Sin(lon)))

	return Equatorial{
		RAdeg:  normalizeAngle360(radToDeg(ra)),
		DecDeg: radToDeg(dec),
	}, dist
}

// MoonEquatorial returns the Moon's geocentric RA/Dec and distance in km.
func MoonEquatorial(t time.Time) (Equatorial, float64) {
	return moonGeocentric(t)
}

// MoonPosition returns the Moon's altitude, azimuth and distance for an observer.
func MoonPosition(t time.Time, lat, lon float64) LunarPosition {
	eq, dist := moonGeocentric(t)
	h := EquatorialToHorizontal(eq, Observer{LatDeg: lat, LonDeg: lon}, t)

	return LunarPosition{
		Equatorial:        eq,
		AltitudeDeg:       h.AltDeg,
		AzimuthDeg:        h.AzDeg,
		TopocentricAltDeg: h.AltDeg - parallaxInAltitude(h.AltDeg, dist),
		DistanceKm:        dist,
	}
}

// MoonIllumination returns the illuminated fraction and phase of the Moon.
// The phase angle comes from the geocentric Sun and Moon directions and their
// distances.
func MoonIllumination(t time.Time) LunarIllumination {
	sun := SunEquatorial(t)
	moon, moonDist := moonGeocentric(t)

	sRA, sDec := degToRad(sun.RAdeg), degToRad(sun.DecDeg)
	mRA, mDec := degToRad(moon.RAdeg), degToRad(moon.DecDeg)

	// Geocentric elongation
	phi := math.Acos(clampUnit(math.Sin(sDec)*math.Sin(mDec) + math.Cos(sDec)*math.Cos(mDec)*math.Cos(sRA-mRA)))
	// Selenocentric elongation of Earth from Sun (phase angle)
	inc := math.Atan2(SunDistanceKm*math.Sin(phi), moonDist-SunDistanceKm*math.Cos(phi))
	angle := math.Atan2(
		math.Cos(sDec)*math.Sin(sRA-mRA),
		math.Sin(sDec)*math.Cos(mDec)-math.Cos(sDec)*math.Sin(mDec)*math.Cos(sRA-mRA),
	)

	sign := 1.0
	if angle < 0 {
		sign = -1
	}

	phase := 0.5 + 0.5*inc*sign/math.Pi
	if phase >= 1 {
		phase -= 1
	}

	return LunarIllumination{
		Phase:    phase,
		Fraction: (1 + math.Cos(inc)) / 2,
		Angle:    angle,
	}
}

// MoonSemiDiameterDeg returns the Moon's apparent angular radius in degrees.
func MoonSemiDiameterDeg(distanceKm float64) float64 {
	if distanceKm <= MoonRadiusKm {
		return 0.25
	}
	return radToDeg(math.Atan(MoonRadiusKm / distanceKm))
}

// PhaseName returns the conventional eight-phase name for an illuminated
// fraction and direction.
func PhaseName(fraction float64, waxing bool) string {
	switch {
	case fraction < 0.01:
		return "New Moon"
	case fraction > 0.99:
		return "Full Moon"
	case fraction >= 0.49 && fraction <= 0.51:
		if waxing {
			return "First Quarter"
		}
		return "Last Quarter"
	case fraction < 0.5:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// parallaxInAltitude returns the lunar parallax in altitude (degrees) for a
// sea-level observer: p = asin(R/Δ · cos h).
func parallaxInAltitude(altDeg, distanceKm float64) float64 {
	if distanceKm <= EarthRadiusKm {
		return 1.0
	}
	return radToDeg(math.Asin(clampUnit(EarthRadiusKm / distanceKm * math.Cos(degToRad(altDeg)))))
}
