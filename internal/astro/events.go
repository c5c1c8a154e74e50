package astro

import (
	"math"
	"time"
)

const (
	// SunHorizonDeg is the altitude of the Sun's centre at apparent sunrise and
	// sunset: 34' of refraction plus a 16' semi-diameter.
	SunHorizonDeg = -0.833

	// refractionAtHorizonDeg is the standard horizon refraction (34').
	refractionAtHorizonDeg = 0.5667

	// EventSampleStep is the bracket step used when scanning a day for crossings.
	EventSampleStep = 10 * time.Minute

	// EventTolerance is the bisection tolerance for crossing times.
	EventTolerance = 30 * time.Second
)

// AltitudeFunc returns an altitude in degrees at time t, already offset so
// that zero is the event threshold.
type AltitudeFunc func(t time.Time) float64

// RiseSet holds rise and set times found within one search window.
// A zero Rise or Set means no such crossing happened in the window.
type RiseSet struct {
	Rise       time.Time
	Set        time.Time
	AlwaysUp   bool // above the threshold for the whole window
	AlwaysDown bool // below the threshold for the whole window
}

// HasRise reports whether a rise was found.
func (r RiseSet) HasRise() bool { return !r.Rise.IsZero() }

// HasSet reports whether a set was found.
func (r RiseSet) HasSet() bool { return !r.Set.IsZero() }

// DayWindow returns the local calendar day containing date, [00:00, 24:00)
// in date's Location.
func DayWindow(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

// SunRiseSet returns sunrise and sunset during the local calendar day of date.
// Times are returned in UTC.
func SunRiseSet(date time.Time, lat, lon float64) RiseSet {
	start, end := DayWindow(date)
	f := func(t time.Time) float64 {
		return SunAltitude(t, lat, lon) - SunHorizonDeg
	}
	return FindRiseSet(f, start, end, EventSampleStep, EventTolerance)
}

// SunTwilight returns the times the Sun crosses altDeg during the local
// calendar day of date: the upward crossing as Rise, the downward as Set.
func SunTwilight(date time.Time, lat, lon, altDeg float64) RiseSet {
	start, end := DayWindow(date)
	f := func(t time.Time) float64 {
		return SunAltitude(t, lat, lon) - altDeg
	}
	return FindRiseSet(f, start, end, EventSampleStep, EventTolerance)
}

// MoonRiseSet returns moonrise and moonset during the local calendar day of
// date. The event is the upper limb touching the horizon, using the
// topocentric altitude and standard refraction.
func MoonRiseSet(date time.Time, lat, lon float64) RiseSet {
	start, end := DayWindow(date)
	f := func(t time.Time) float64 {
		p := MoonPosition(t, lat, lon)
		horizon := -refractionAtHorizonDeg - MoonSemiDiameterDeg(p.DistanceKm)
		return p.TopocentricAltDeg - horizon
	}
	return FindRiseSet(f, start, end, EventSampleStep, EventTolerance)
}

// ObjectRiseSet returns rise and set of a fixed equatorial object during the
// local calendar day of date, with standard refraction at the horizon.
func ObjectRiseSet(eq Equatorial, date time.Time, lat, lon float64) RiseSet {
	start, end := DayWindow(date)
	obs := Observer{LatDeg: lat, LonDeg: lon}
	f := func(t time.Time) float64 {
		return EquatorialToHorizontal(eq, obs, t).AltDeg + refractionAtHorizonDeg
	}
	return FindRiseSet(f, start, end, EventSampleStep, EventTolerance)
}

// siderealDegPerDay is the rate of Greenwich sidereal time.
const siderealDegPerDay = 360.98564736629

// Culmination returns the first upper transit of a fixed equatorial object at
// or after the start of date's local calendar day, and its altitude there.
func Culmination(eq Equatorial, date time.Time, lat, lon float64) (time.Time, float64) {
	start, _ := DayWindow(date)
	ha := normalizeAngle360(LocalSiderealTime(start, lon) - eq.RAdeg)
	wait := 0.0
	if ha > 0 {
		wait = (360 - ha) / siderealDegPerDay
	}
	t := start.Add(time.Duration(wait * 24 * float64(time.Hour))).UTC()
	return t, 90 - math.Abs(lat-eq.DecDeg)
}

// FindRiseSet scans [start, end) in steps for the first upward and the first
// downward zero crossing of f, then refines each by bisection.
func FindRiseSet(f AltitudeFunc, start, end time.Time, step, tol time.Duration) RiseSet {
	var rs RiseSet
	if !start.Before(end) || step <= 0 {
		return rs
	}

	prevT := start
	prev := f(prevT)
	above, below := prev > 0, prev <= 0

	for t := start.Add(step); !t.After(end); t = t.Add(step) {
		cur := f(t)
		if cur > 0 {
			above = true
		} else {
			below = true
		}

		if rs.Rise.IsZero() && prev <= 0 && cur > 0 {
			rs.Rise = bisect(f, prevT, t, prev, tol).UTC()
		}
		if rs.Set.IsZero() && prev > 0 && cur <= 0 {
			rs.Set = bisect(f, prevT, t, prev, tol).UTC()
		}

		prevT, prev = t, cur
	}

	rs.AlwaysUp = above && !below
	rs.AlwaysDown = below && !above
	return rs
}

// bisect narrows a bracketed sign change of f in [a, b] down to tol.
func bisect(f AltitudeFunc, a, b time.Time, fa float64, tol time.Duration) time.Time {
	for b.Sub(a) > tol {
		mid := a.Add(b.Sub(a) / 2)
		fm := f(mid)
		if (fa > 0) == (fm > 0) {
			a, fa = mid, fm
		} else {
			b = mid
		}
	}
	return a.Add(b.Sub(a) / 2)
}
