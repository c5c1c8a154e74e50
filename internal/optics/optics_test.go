package optics

import (
	"math"
	"testing"
)

func TestHorizonDistance(t *testing.T) {
	if got := HorizonDistance(0); got != 0 {
		t.Errorf("HorizonDistance(0) = %v, want 0", got)
	}

	// 1.7 m eye height → ~5.4 km with refraction.
	if got := HorizonDistance(0.0017); got < 5 || got > 5.7 {
		t.Errorf("HorizonDistance(1.7m) = %.2f km, want ≈ 5.4", got)
	}

	// 400 km orbit → ~2607 km.
	if got := HorizonDistance(400); math.Abs(got-2607.2) > 1 {
		t.Errorf("HorizonDistance(400) = %.1f km, want ≈ 2607.2", got)
	}
}

func TestHorizonDistance_Monotonic(t *testing.T) {
	prev := HorizonDistance(0)
	for h := 0.001; h < 1000; h *= 1.7 {
		cur := HorizonDistance(h)
		if cur <= prev {
			t.Fatalf("HorizonDistance(%v) = %v not greater than previous %v", h, cur, prev)
		}
		prev = cur
	}
}

func TestMaxLineOfSightDistance(t *testing.T) {
	got := MaxLineOfSightDistance(0, 400)
	if got != HorizonDistance(400) {
		t.Errorf("ground-to-orbit LOS = %v, want %v", got, HorizonDistance(400))
	}

	sym1 := MaxLineOfSightDistance(0.1, 2)
	sym2 := MaxLineOfSightDistance(2, 0.1)
	if sym1 != sym2 {
		t.Errorf("MaxLineOfSightDistance not symmetric: %v vs %v", sym1, sym2)
	}
}

func TestExtinctionCoefficient(t *testing.T) {
	if got := ExtinctionCoefficient(0, 0, 0); got != 0.05 {
		t.Errorf("clear sky β = %v, want exactly 0.05", got)
	}
	if got := ExtinctionCoefficient(0, 0, 1); got < 20.05 {
		t.Errorf("dense fog β = %v, want >= 20.05", got)
	}
	if got := ExtinctionCoefficient(1, 10, 1); math.Abs(got-21.55) > 1e-9 {
		t.Errorf("worst case β = %v, want 21.55", got)
	}
	// Out-of-range inputs are accepted, not rejected.
	if got := ExtinctionCoefficient(0, 500, 0); got != 50.05 {
		t.Errorf("extreme rain β = %v, want 50.05", got)
	}
}

func TestKoschmiederVisibility_DecreasesWithWeather(t *testing.T) {
	vis := func(c, p, f float64) float64 {
		return KoschmiederVisibility(ExtinctionCoefficient(c, p, f))
	}

	base := vis(0.2, 1, 0.1)
	if vis(0.5, 1, 0.1) >= base {
		t.Error("visibility should drop as cloud cover rises")
	}
	if vis(0.2, 3, 0.1) >= base {
		t.Error("visibility should drop as precipitation rises")
	}
	if vis(0.2, 1, 0.4) >= base {
		t.Error("visibility should drop as fog rises")
	}

	if got := vis(0, 0, 0); math.Abs(got-78.24) > 1e-9 {
		t.Errorf("clear-air visibility = %v km, want 78.24", got)
	}
	if got := vis(0, 0, 1); got >= 0.2 {
		t.Errorf("dense fog visibility = %v km, want < 0.2", got)
	}
	if got := KoschmiederVisibility(0); !math.IsInf(got, 1) {
		t.Errorf("KoschmiederVisibility(0) = %v, want +Inf", got)
	}
}

func TestContrastAtDistance(t *testing.T) {
	if got := ContrastAtDistance(0.05, 0); got != 1 {
		t.Errorf("contrast at 0 km = %v, want 1", got)
	}
	// At the Koschmieder range contrast is the 2% threshold.
	beta := 0.3
	if got := ContrastAtDistance(beta, KoschmiederVisibility(beta)); math.Abs(got-ContrastThreshold) > 1e-4 {
		t.Errorf("contrast at visibility range = %v, want %v", got, ContrastThreshold)
	}
	if ContrastAtDistance(beta, 10) >= ContrastAtDistance(beta, 5) {
		t.Error("contrast should decay with distance")
	}
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tol              float64
	}{
		{"same point", 10, 20, 10, 20, 0, 1e-9},
		{"one degree of longitude on the equator", 0, 0, 0, 1, 111.19, 0.01},
		{"pole to pole", 90, 0, -90, 0, math.Pi * EarthRadiusKm, 0.01},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111.19, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Haversine() = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}
