package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-skyscore/internal/orbit"
	"github.com/litescript/ls-skyscore/internal/visibility"
)

const snapshot = `[
  {"id": "venus", "name": "Venus", "type": "planet", "ra": 350.1, "dec": -4.2, "magnitude": -3.9, "distance_au": 1.5, "radius_km": 6051.8},
  {"id": "europa", "name": "Europa", "type": "moon", "parent_body": "jupiter", "radius_km": 1560.8},
  {"id": "ceres", "name": "Ceres", "type": "dwarf_planet", "ra": 120, "dec": 10},
  {"id": "ISS", "name": "ISS (ZARYA)", "type": "satellite",
   "tle_line1": "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927",
   "tle_line2": "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"}
]`

func TestDefault(t *testing.T) {
	c := Default()

	sun, err := c.Get("sun")
	require.NoError(t, err)
	assert.Equal(t, TypeStar, sun.Type)
	require.NotNil(t, sun.RadiusKm)
	assert.Equal(t, 695700.0, *sun.RadiusKm)
	assert.Equal(t, visibility.SunTarget, sun.Target())

	moon, err := c.Get("MOON")
	require.NoError(t, err)
	assert.Equal(t, TypeMoon, moon.Type)
	assert.Equal(t, visibility.MoonTarget, moon.Target())

	sirius, err := c.Get("Sirius")
	require.NoError(t, err)
	target, ok := sirius.Target().(visibility.EquatorialObject)
	require.True(t, ok)
	assert.InDelta(t, 101.287, target.RAdeg, 1e-9)
	assert.InDelta(t, -1.46, target.Magnitude, 1e-9)

	assert.Greater(t, len(c.ByType(TypeStar)), 20)
}

func TestGet_Unknown(t *testing.T) {
	_, err := Default().Get("vulcan")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(snapshot))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"ISS", "ceres", "europa", "venus"}, c.IDs())

	venus, err := c.Get("venus")
	require.NoError(t, err)
	tgt := venus.Target().(visibility.EquatorialObject)
	assert.InDelta(t, -3.9, tgt.Magnitude, 1e-9)
	assert.Equal(t, "Venus", tgt.Name)

	ceres, _ := c.Get("ceres")
	assert.InDelta(t, DefaultMagnitude, ceres.Target().(visibility.EquatorialObject).Magnitude, 1e-9)

	europa, _ := c.Get("europa")
	assert.Equal(t, visibility.Unknown{}, europa.Target())
	assert.Equal(t, "jupiter", europa.ParentBody)

	iss, err := c.Get("iss")
	require.NoError(t, err)
	assert.True(t, iss.HasTLE())
	assert.False(t, iss.HasEquatorial())
}

func TestSatellite(t *testing.T) {
	c, err := Load(strings.NewReader(snapshot))
	require.NoError(t, err)

	sat, ok := c.Satellite("iss")
	require.True(t, ok)
	assert.Equal(t, "25544", sat.Number)

	_, ok = c.Satellite("venus")
	assert.False(t, ok)
	_, ok = c.Satellite("pluto")
	assert.False(t, ok)

	merged := Default().Merge(c)
	_, ok = merged.Satellite("ISS")
	assert.True(t, ok)
}

func TestLoadFile_BadElements(t *testing.T) {
	// Checksums are valid; the inclination column holds a letter.
	bad := `[{"id": "iss", "name": "ISS", "type": "satellite",
  "tle_line1": "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927",
  "tle_line2": "2 25544  51.64x6 247.4627 0006703 130.5360 325.0288 15.72125391563536"}]`
	path := filepath.Join(t.TempDir(), "objects.json")
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, orbit.ErrInvalidTLE)
	assert.Contains(t, err.Error(), `object "iss"`)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad json":     `[{"id": }]`,
		"empty id":     `[{"id": "", "name": "x", "type": "planet"}]`,
		"bad type":     `[{"id": "x", "name": "x", "type": "nebula"}]`,
		"duplicate id": `[{"id": "x", "type": "planet"}, {"id": "X", "type": "star"}]`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objects.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	extra, err := New(
		Object{ID: "Moon", Name: "Moon snapshot", Type: TypeMoon},
		Object{ID: "mars", Name: "Mars", Type: TypePlanet},
	)
	require.NoError(t, err)

	base := Default()
	merged := base.Merge(extra)

	assert.Equal(t, base.Len()+1, merged.Len())
	moon, err := merged.Get("moon")
	require.NoError(t, err)
	assert.Equal(t, "Moon snapshot", moon.Name)

	_, err = merged.Get("mars")
	assert.NoError(t, err)
}

func TestLegacyPosition(t *testing.T) {
	o := Object{ID: "x", Type: TypePlanet, RA: f(270), Dec: f(-20), DistanceAU: f(2)}
	p := o.LegacyPosition()
	assert.Equal(t, -20.0, p.Lat)
	assert.Equal(t, -90.0, p.Lon)
	assert.InDelta(t, 2*AUKm, p.AltitudeKm, 1e-3)

	set := Object{Position: visibility.Position{Lat: 1, Lon: 2, AltitudeKm: 3}, RA: f(10), Dec: f(10)}
	assert.Equal(t, set.Position, set.LegacyPosition())
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeMoon, TypePlanet, TypeDwarfPlanet, TypeStar, TypeAsteroid, TypeComet, TypeSatellite, TypeSpacecraft} {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, Type("galaxy").Valid())
}
