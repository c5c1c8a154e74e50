package astro

import (
	"math"
	"testing"
	"time"
)

func TestMoonIllumination_KnownPhases(t *testing.T) {
	tests := []struct {
		name        string
		time        time.Time
		minFraction float64
		maxFraction float64
		waxing      *bool
	}{
		{
			// Total solar eclipse, 2024-04-08 18:21 UTC
			name:        "New moon April 2024",
			time:        time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC),
			minFraction: 0,
			maxFraction: 0.02,
		},
		{
			name:        "Full moon April 2024",
			time:        time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC),
			minFraction: 0.97,
			maxFraction: 1,
		},
		{
			name:        "First quarter April 2024",
			time:        time.Date(2024, 4, 15, 19, 13, 0, 0, time.UTC),
			minFraction: 0.42,
			maxFraction: 0.58,
			waxing:      boolPtr(true),
		},
		{
			name:        "Last quarter May 2024",
			time:        time.Date(2024, 5, 1, 11, 27, 0, 0, time.UTC),
			minFraction: 0.42,
			maxFraction: 0.58,
			waxing:      boolPtr(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoonIllumination(tt.time)
			if got.Fraction < tt.minFraction || got.Fraction > tt.maxFraction {
				t.Errorf("Fraction = %.3f, want in [%.2f, %.2f]", got.Fraction, tt.minFraction, tt.maxFraction)
			}
			if got.Phase < 0 || got.Phase >= 1 {
				t.Errorf("Phase = %.3f, want in [0,1)", got.Phase)
			}
			if tt.waxing != nil && got.Waxing() != *tt.waxing {
				t.Errorf("Waxing() = %v, want %v (phase %.3f)", got.Waxing(), *tt.waxing, got.Phase)
			}
		})
	}
}

func TestMoonPosition_DistanceAndRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		tm := start.Add(time.Duration(i) * 13 * time.Hour)
		p := MoonPosition(tm, 40, -105)

		if p.DistanceKm < 356000 || p.DistanceKm > 407000 {
			t.Fatalf("DistanceKm = %.0f at %v, outside perigee/apogee range", p.DistanceKm, tm)
		}
		if p.AltitudeDeg < -90 || p.AltitudeDeg > 90 {
			t.Fatalf("AltitudeDeg = %v out of range", p.AltitudeDeg)
		}
		if p.TopocentricAltDeg > p.AltitudeDeg {
			t.Fatalf("topocentric altitude %v above geocentric %v", p.TopocentricAltDeg, p.AltitudeDeg)
		}
		if p.DecDeg < -30 || p.DecDeg > 30 {
			t.Fatalf("DecDeg = %v, Moon never leaves ±29°", p.DecDeg)
		}
	}
}

func TestMoonSemiDiameterDeg(t *testing.T) {
	sd := MoonSemiDiameterDeg(384400)
	if math.Abs(sd-0.259) > 0.002 {
		t.Errorf("MoonSemiDiameterDeg(mean) = %.4f°, want ≈ 0.259°", sd)
	}
	if MoonSemiDiameterDeg(360000) <= MoonSemiDiameterDeg(400000) {
		t.Error("closer Moon should look larger")
	}
}

func TestPhaseName(t *testing.T) {
	tests := []struct {
		fraction float64
		waxing   bool
		want     string
	}{
		{0.001, true, "New Moon"},
		{0.2, true, "Waxing Crescent"},
		{0.2, false, "Waning Crescent"},
		{0.5, true, "First Quarter"},
		{0.5, false, "Last Quarter"},
		{0.8, true, "Waxing Gibbous"},
		{0.8, false, "Waning Gibbous"},
		{0.995, false, "Full Moon"},
	}
	for _, tt := range tests {
		if got := PhaseName(tt.fraction, tt.waxing); got != tt.want {
			t.Errorf("PhaseName(%v, %v) = %q, want %q", tt.fraction, tt.waxing, got, tt.want)
		}
	}
}

func boolPtr(b bool) *bool { return &b }
