package visibility

import (
	"time"

	"github.com/litescript/ls-skyscore/internal/astro"
)

// astronomicalDuskDeg is the solar altitude at which the sky is fully dark.
const astronomicalDuskDeg = -18

// Window is a target's rise, culmination and set during one local day.
// Zero times mean no such event that day.
type Window struct {
	Rise        time.Time `json:"rise,omitzero"`
	Transit     time.Time `json:"transit,omitzero"` // fixed objects only
	Set         time.Time `json:"set,omitzero"`
	MaxAltitude float64   `json:"maxAltitude,omitempty"`
	AlwaysUp    bool      `json:"alwaysUp"`
	AlwaysDown  bool      `json:"alwaysDown"`

	// Dark is the end of astronomical twilight; zero at high latitudes in
	// summer when the Sun never gets 18° below the horizon.
	Dark time.Time `json:"dark,omitzero"`

	// Elongation is the angular distance from the Sun at date, degrees.
	Elongation float64 `json:"elongation"`
}

// Events returns target's window for the local calendar day of date in
// date's Location. A nil target is treated as the Moon.
func Events(target Target, lat, lon float64, date time.Time) Window {
	var rs astro.RiseSet
	var w Window

	switch kindOf(target) {
	case kindSun:
		rs = astro.SunRiseSet(date, lat, lon)
	case kindEquatorial:
		obj := target.(EquatorialObject)
		eq := astro.Equatorial{RAdeg: obj.RAdeg, DecDeg: obj.DecDeg}
		rs = astro.ObjectRiseSet(eq, date, lat, lon)
		w.Transit, w.MaxAltitude = astro.Culmination(eq, date, lat, lon)
		w.Elongation = astro.SunSeparation(eq.RAdeg, eq.DecDeg, date)
	default:
		rs = astro.MoonRiseSet(date, lat, lon)
		moon, _ := astro.MoonEquatorial(date)
		w.Elongation = astro.SunSeparation(moon.RAdeg, moon.DecDeg, date)
	}

	w.Rise, w.Set = rs.Rise, rs.Set
	w.AlwaysUp, w.AlwaysDown = rs.AlwaysUp, rs.AlwaysDown
	w.Dark = astro.SunTwilight(date, lat, lon, astronomicalDuskDeg).Set
	return w
}
