// Package visibility scores how well a target can be seen by a ground
// observer. ScoreSurface handles surface-to-surface (or surface-to-satellite)
// sight lines; ScoreCelestial handles sky objects.
//
// Every function here is total: out-of-range weather is not rejected and NaN
// inputs propagate rather than panic. All functions are safe for concurrent use.
package visibility

import "fmt"

// Position is a point on or above the Earth.
type Position struct {
	Lat        float64 `json:"lat"`      // degrees [-90, 90]
	Lon        float64 `json:"lon"`      // degrees [-180, 180]
	AltitudeKm float64 `json:"altitude"` // km above sea level
}

func (p Position) String() string {
	return fmt.Sprintf("%.4f,%.4f@%.1fkm", p.Lat, p.Lon, p.AltitudeKm)
}

// Body identifies a body whose position is computed from an ephemeris.
type Body int

const (
	Moon Body = iota
	Sun
)

func (b Body) String() string {
	if b == Sun {
		return "sun"
	}
	return "moon"
}

// Target is what ScoreCelestial looks at. It is one of WellKnown,
// EquatorialObject or Unknown; a nil Target behaves like Unknown.
type Target interface {
	isTarget()
}

// WellKnown is the Sun or the Moon.
type WellKnown struct {
	Body Body
}

// EquatorialObject is any object with known RA/Dec, e.g. a planet or star.
type EquatorialObject struct {
	Name      string
	RAdeg     float64
	DecDeg    float64
	Magnitude float64 // apparent magnitude, lower is brighter
}

// Unknown is a target without usable coordinates. It is scored as the Moon.
type Unknown struct{}

func (WellKnown) isTarget()        {}
func (EquatorialObject) isTarget() {}
func (Unknown) isTarget()          {}

var (
	MoonTarget Target = WellKnown{Body: Moon}
	SunTarget  Target = WellKnown{Body: Sun}
)

// targetKind collapses a Target to the branch the scorer takes.
type targetKind int

const (
	kindMoon targetKind = iota
	kindSun
	kindEquatorial
)

func kindOf(t Target) targetKind {
	switch v := t.(type) {
	case WellKnown:
		if v.Body == Sun {
			return kindSun
		}
		return kindMoon
	case EquatorialObject:
		return kindEquatorial
	default:
		return kindMoon
	}
}
