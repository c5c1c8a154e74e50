package catalog

// Default returns the built-in catalog: the Sun, the Moon and the brightest
// navigational stars (J2000 coordinates).
func Default() *Catalog {
	objects := []Object{
		{ID: "sun", Name: "Sun", Type: TypeStar, RadiusKm: f(695700)},
		{ID: "moon", Name: "Moon", Type: TypeMoon, RadiusKm: f(1737.4), ParentBody: "earth"},
	}
	for _, s := range brightStars {
		objects = append(objects, Object{
			ID:        s.id,
			Name:      s.name,
			Type:      TypeStar,
			RA:        f(s.ra),
			Dec:       f(s.dec),
			Magnitude: f(s.mag),
		})
	}

	c, err := New(objects...)
	if err != nil {
		panic("catalog: invalid built-in objects: " + err.Error())
	}
	return c
}

func f(v float64) *float64 { return &v }

type star struct {
	id, name     string
	ra, dec, mag float64
}

// Brightest first.
var brightStars = []star{
	{"sirius", "Sirius", 101.287, -16.716, -1.46},
	{"canopus", "Canopus", 95.988, -52.696, -0.74},
	{"arcturus", "Arcturus", 213.915, 19.182, -0.05},
	{"vega", "Vega", 279.235, 38.784, 0.03},
	{"capella", "Capella", 79.172, 45.998, 0.08},
	{"rigel", "Rigel", 78.634, -8.202, 0.13},
	{"procyon", "Procyon", 114.826, 5.225, 0.34},
	{"achernar", "Achernar", 24.429, -57.237, 0.46},
	{"betelgeuse", "Betelgeuse", 88.793, 7.407, 0.50},
	{"hadar", "Hadar", 210.956, -60.373, 0.61},
	{"altair", "Altair", 297.696, 8.868, 0.76},
	{"acrux", "Acrux", 186.650, -63.099, 0.76},
	{"aldebaran", "Aldebaran", 68.980, 16.509, 0.85},
	{"antares", "Antares", 247.352, -26.432, 0.96},
	{"spica", "Spica", 201.298, -11.161, 0.97},
	{"pollux", "Pollux", 116.329, 28.026, 1.14},
	{"fomalhaut", "Fomalhaut", 344.413, -29.622, 1.16},
	{"deneb", "Deneb", 310.358, 45.280, 1.25},
	{"regulus", "Regulus", 152.093, 11.967, 1.35},
	{"castor", "Castor", 113.650, 31.889, 1.58},
	{"polaris", "Polaris", 37.954, 89.264, 2.02},
}
