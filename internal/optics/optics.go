// Package optics models how far an observer can see: the curvature-limited
// horizon, and how atmospheric extinction erodes contrast with distance
// (Koschmieder's law).
//
// Every function is total over its numeric domain. Out-of-range weather inputs
// produce extreme but well-defined coefficients, and NaN inputs propagate.
package optics

import (
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used for great-circle distances.
	EarthRadiusKm = 6371.0

	// RefractionK is the standard terrestrial refraction coefficient (4/3 Earth).
	RefractionK = 4.0 / 3.0

	// ClearAirExtinction is the extinction coefficient of clean, dry air (1/km).
	ClearAirExtinction = 0.05

	// ContrastThreshold is the 2% liminal contrast behind Koschmieder's constant.
	ContrastThreshold = 0.02

	// KoschmiederConstant is -ln(ContrastThreshold).
	KoschmiederConstant = 3.912
)

// Extinction weights per unit of each weather input.
const (
	CloudExtinction  = 0.5
	PrecipExtinction = 0.1 // per mm/h
	FogExtinction    = 20.0
)

// HorizonDistance returns the distance to the horizon in km from a height of
// altitudeKm, including standard refraction: 3.57·√(K·h[m]).
func HorizonDistance(altitudeKm float64) float64 {
	if altitudeKm <= 0 {
		return 0
	}
	return 3.57 * math.Sqrt(RefractionK*altitudeKm*1000)
}

// MaxLineOfSightDistance returns the longest unobstructed sight line between
// two elevated points: the sum of their horizon distances.
func MaxLineOfSightDistance(alt1Km, alt2Km float64) float64 {
	return HorizonDistance(alt1Km) + HorizonDistance(alt2Km)
}

// ExtinctionCoefficient converts weather into an extinction coefficient β (1/km):
//
//	β = 0.05 + cloudCover·0.5 + precipitation·0.1 + fog·20
//
// Fog dominates, then cloud, then rain; a clear sky gives exactly 0.05.
func ExtinctionCoefficient(cloudCover, precipitationMMh, fog float64) float64 {
	return ClearAirExtinction +
		cloudCover*CloudExtinction +
		precipitationMMh*PrecipExtinction +
		fog*FogExtinction
}

// KoschmiederVisibility returns the meteorological visibility in km for an
// extinction coefficient: the range at which a black object's contrast falls
// to 2%. A non-positive β yields +Inf.
func KoschmiederVisibility(beta float64) float64 {
	if beta <= 0 {
		return math.Inf(1)
	}
	return KoschmiederConstant / beta
}

// ContrastAtDistance returns the remaining apparent contrast e^(−β·d) of an
// object distanceKm away.
func ContrastAtDistance(beta, distanceKm float64) float64 {
	return math.Exp(-beta * distanceKm)
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	dφ := (lat2 - lat1) * math.Pi / 180
	dλ := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dφ/2)*math.Sin(dφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	if a > 1 {
		a = 1
	}

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
