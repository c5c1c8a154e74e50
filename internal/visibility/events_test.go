package visibility

import (
	"testing"
	"time"
)

func TestEvents(t *testing.T) {
	date := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	sun := Events(SunTarget, 0, 0, date)
	if sun.Rise.IsZero() || sun.Set.IsZero() || !sun.Transit.IsZero() {
		t.Errorf("equinox Sun at the equator: %+v", sun)
	}
	if sun.Elongation != 0 {
		t.Errorf("Sun elongation = %v", sun.Elongation)
	}
	if !sun.Dark.After(sun.Set) {
		t.Errorf("dark %v should follow sunset %v", sun.Dark, sun.Set)
	}

	moon := Events(nil, 30, 35, date)
	if moon.AlwaysUp && moon.AlwaysDown {
		t.Errorf("Moon window cannot be both always up and down: %+v", moon)
	}
	if moon.Elongation <= 0 || moon.Elongation > 180 {
		t.Errorf("Moon elongation = %v", moon.Elongation)
	}

	vega := EquatorialObject{Name: "vega", RAdeg: 279.235, DecDeg: 38.784, Magnitude: 0.03}
	w := Events(vega, 60, 0, date)
	if !w.AlwaysUp {
		t.Errorf("Vega is circumpolar at 60°N: %+v", w)
	}
	if w.Transit.IsZero() || w.MaxAltitude < 68 || w.MaxAltitude > 69 {
		t.Errorf("Vega transit at 60°N: %+v", w)
	}
}

func TestEvents_NoDarkInPolarSummer(t *testing.T) {
	w := Events(SunTarget, 65, 0, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	if !w.Dark.IsZero() {
		t.Errorf("Sun never reaches -18° at 65°N in June, got dark at %v", w.Dark)
	}
}
