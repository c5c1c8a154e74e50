// Package crescent classifies naked-eye visibility of a young or old lunar
// crescent with Yallop's q-test (NAO Technical Note 69, 1997).
package crescent

import (
	"math"
	"time"

	"github.com/litescript/ls-skyscore/internal/astro"
)

// NearNewMoonFraction is the illuminated fraction below which the Moon is
// close enough to conjunction for the q-test to mean anything.
const NearNewMoonFraction = 0.10

// alwaysUpOffset places the best time when the Moon never sets.
const alwaysUpOffset = 30 * time.Minute

// Zone is a Yallop visibility zone, A (best) through F (worst).
type Zone byte

const (
	ZoneA Zone = 'A'
	ZoneB Zone = 'B'
	ZoneC Zone = 'C'
	ZoneD Zone = 'D'
	ZoneE Zone = 'E'
	ZoneF Zone = 'F'
)

// Zones lists every zone from best to worst.
var Zones = []Zone{ZoneA, ZoneB, ZoneC, ZoneD, ZoneE, ZoneF}

func (z Zone) String() string { return string(rune(z)) }

// Label describes what an observer can expect in the zone.
func (z Zone) Label() string {
	switch z {
	case ZoneA:
		return "Easily visible"
	case ZoneB:
		return "Visible under perfect conditions"
	case ZoneC:
		return "May need binoculars to find the crescent"
	case ZoneD:
		return "Will need optical aid to find the crescent"
	case ZoneE:
		return "Not visible even with a telescope"
	default:
		return "Not visible"
	}
}

// BetterThan reports whether z is a strictly better zone than other.
func (z Zone) BetterThan(other Zone) bool { return z < other }

// ZoneForQ maps a q value onto its zone.
func ZoneForQ(q float64) Zone {
	switch {
	case q > 0.216:
		return ZoneA
	case q > -0.014:
		return ZoneB
	case q > -0.160:
		return ZoneC
	case q > -0.232:
		return ZoneD
	case q > -0.293:
		return ZoneE
	default:
		return ZoneF
	}
}

// Reason says why a result is zone F without a q value.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoSunset     Reason = "no sunset"
	ReasonMoonSetFirst Reason = "moon sets before sun"
	ReasonNoMoonset    Reason = "no moonset"
)

// Result is the outcome of the q-test for one place and evening.
//
// When no best time exists (Reason is set) Q is -Inf and Zone is F, and the
// geometry fields are zero.
type Result struct {
	Q      float64
	Zone   Zone
	Label  string
	Reason Reason

	Sunset   time.Time
	Moonset  time.Time // zero when the Moon stays up
	BestTime time.Time

	ARCV        float64 // arc of vision, degrees
	ARCL        float64 // Sun-Moon elongation, degrees
	DAZ         float64 // relative azimuth, degrees
	WidthArcmin float64 // crescent width W'
	LagMinutes  float64 // moonset minus sunset
}

// HasQ reports whether a q value was computed.
func (r Result) HasQ() bool { return r.Reason == ReasonNone }

// IsNearNewMoon reports whether date is close enough to a new moon for the
// crescent test.
func IsNearNewMoon(date time.Time) bool {
	return astro.MoonIllumination(date).Fraction < NearNewMoonFraction
}

// CalculateQ runs the q-test for the evening of date's calendar day in
// date's Location. Use LocalDate to get a sensible day for a longitude.
func CalculateQ(lat, lon float64, date time.Time) Result {
	sun := astro.SunRiseSet(date, lat, lon)
	moon := astro.MoonRiseSet(date, lat, lon)

	best, reason := bestTime(sun, moon)
	if reason != ReasonNone {
		return notVisible(reason, sun.Set, moon.Set)
	}

	sunPos := astro.SunPosition(best, lat, lon)
	moonPos := astro.MoonPosition(best, lat, lon)

	r := geometry(moonPos.AltitudeDeg, moonPos.AzimuthDeg, moonPos.DistanceKm, sunPos.AltitudeDeg, sunPos.AzimuthDeg)
	r.Sunset = sun.Set
	r.BestTime = best
	if !moon.AlwaysUp {
		r.Moonset = moon.Set
		r.LagMinutes = moon.Set.Sub(sun.Set).Minutes()
	}
	return r
}

// bestTime is Yallop's best time, sunset plus 4/9 of the lag.
func bestTime(sun, moon astro.RiseSet) (time.Time, Reason) {
	if !sun.HasSet() {
		return time.Time{}, ReasonNoSunset
	}
	if moon.AlwaysUp {
		return sun.Set.Add(alwaysUpOffset), ReasonNone
	}
	if !moon.HasSet() {
		return time.Time{}, ReasonNoMoonset
	}
	if !moon.Set.After(sun.Set) {
		return time.Time{}, ReasonMoonSetFirst
	}
	lag := moon.Set.Sub(sun.Set)
	return sun.Set.Add(lag * 4 / 9), ReasonNone
}

// geometry computes q from the Moon and Sun at the best time.
func geometry(moonAlt, moonAz, moonDistKm, sunAlt, sunAz float64) Result {
	arcv := moonAlt - sunAlt
	daz := moonAz - sunAz

	arcvR := arcv * math.Pi / 180
	dazR := daz * math.Pi / 180
	arcl := math.Acos(clampUnit(math.Cos(arcvR)*math.Cos(dazR))) * 180 / math.Pi

	sd := math.Atan(astro.MoonRadiusKm/moonDistKm) * 180 / math.Pi * 60
	w := sd * (1 - math.Cos(arcl*math.Pi/180))

	q := Q(arcv, w)
	zone := ZoneForQ(q)

	return Result{
		Q:           q,
		Zone:        zone,
		Label:       zone.Label(),
		ARCV:        arcv,
		ARCL:        arcl,
		DAZ:         daz,
		WidthArcmin: w,
	}
}

// Q is Yallop's q for an arc of vision (degrees) and crescent width
// (arcminutes).
func Q(arcv, widthArcmin float64) float64 {
	w := widthArcmin
	return (arcv - (11.8371 - 6.3226*w + 0.7319*w*w - 0.1018*w*w*w)) / 10
}

func notVisible(reason Reason, sunset, moonset time.Time) Result {
	return Result{
		Q:       math.Inf(-1),
		Zone:    ZoneF,
		Label:   ZoneF.Label(),
		Reason:  reason,
		Sunset:  sunset,
		Moonset: moonset,
	}
}

// LocalDate returns noon of date's calendar day in a fixed zone of whole
// hours nearest lon/15, so the day window brackets the local evening.
func LocalDate(date time.Time, lon float64) time.Time {
	offset := int(math.Round(lon/15)) * 3600
	y, m, d := date.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.FixedZone("", offset))
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
