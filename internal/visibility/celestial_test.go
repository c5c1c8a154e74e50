package visibility

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-skyscore/internal/astro"
	"github.com/litescript/ls-skyscore/internal/weather"
)

var (
	equinoxNoon     = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	equinoxMidnight = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
)

// zenithObject returns an object on the meridian at the equator for (0,0) at t.
func zenithObject(t time.Time, mag float64) EquatorialObject {
	return EquatorialObject{RAdeg: astro.LocalSiderealTime(t, 0), DecDeg: 0, Magnitude: mag}
}

func TestScore_MoonAtNight(t *testing.T) {
	got := score(kindMoon, 45, -30, MoonBrightness(0.5), weather.Clear)

	// 0.30*1 + 0.30*1 + 0.25*0.75 + 0.15*0.55
	want := 0.87
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestScore_PlanetInDaylight(t *testing.T) {
	if got := score(kindEquatorial, 30, 10, MagnitudeBrightness(-4), weather.Clear); got != 0 {
		t.Errorf("score(planet, sun +10°) = %v, want 0", got)
	}
}

func TestScore_BelowHorizonGate(t *testing.T) {
	for _, kind := range []targetKind{kindMoon, kindSun, kindEquatorial} {
		if got := score(kind, -2.01, -30, 1, weather.Clear); got != 0 {
			t.Errorf("score(kind %d, alt -2.01) = %v, want 0", kind, got)
		}
	}
}

func TestScore_HorizonRampApplied(t *testing.T) {
	full := score(kindMoon, 10, -30, 1, weather.Clear)
	half := score(kindMoon, 4, -30, 1, weather.Clear)

	// At 4° the ramp is 0.5 and the altitude factor drops from 10/60 to 4/60.
	want := (0.30 + 0.30 + 0.25*4.0/60 + 0.15) * 0.5
	if math.Abs(half-want) > 1e-9 {
		t.Errorf("score(alt 4) = %v, want %v", half, want)
	}
	if half >= full {
		t.Errorf("score(alt 4) = %v should be below score(alt 10) = %v", half, full)
	}
}

func TestTimeFactor(t *testing.T) {
	tests := []struct {
		name   string
		kind   targetKind
		sunAlt float64
		want   float64
		ok     bool
	}{
		{"night", kindEquatorial, -30, 1.0, true},
		{"astronomical", kindEquatorial, -15, 0.9, true},
		{"nautical", kindEquatorial, -8, 0.75, true},
		{"civil", kindEquatorial, -3, 0.5, true},
		{"boundary -18", kindEquatorial, -18, 0.9, true},
		{"planet daytime", kindEquatorial, 0, 0, false},
		{"moon low sun", kindMoon, 9, 0.45, true},
		{"moon high sun", kindMoon, 70, 0.2, true},
		{"sun up", kindSun, 20, 1, true},
		{"sun down", kindSun, -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := timeFactor(tt.kind, tt.sunAlt)
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("timeFactor = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFactors(t *testing.T) {
	if got := HorizonRamp(-2); got != 0 {
		t.Errorf("HorizonRamp(-2) = %v", got)
	}
	if got := HorizonRamp(4); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("HorizonRamp(4) = %v", got)
	}
	if got := HorizonRamp(30); got != 1 {
		t.Errorf("HorizonRamp(30) = %v", got)
	}
	if got := MagnitudeBrightness(-4); got != 1 {
		t.Errorf("MagnitudeBrightness(-4) = %v", got)
	}
	if got := MagnitudeBrightness(6); got != 0.05 {
		t.Errorf("MagnitudeBrightness(6) = %v", got)
	}
	if got := MagnitudeBrightness(1); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("MagnitudeBrightness(1) = %v", got)
	}
	if got := MoonBrightness(0); got != 0.1 {
		t.Errorf("MoonBrightness(0) = %v", got)
	}
	if got := WeatherFactor(weather.Conditions{CloudCover: 1, Fog: 1}); got != 0 {
		t.Errorf("WeatherFactor(overcast fog) = %v", got)
	}
	if got := AltitudeFactor(90); got != 1 {
		t.Errorf("AltitudeFactor(90) = %v", got)
	}
}

func TestScoreCelestial_StarAtZenithAtNight(t *testing.T) {
	obj := zenithObject(equinoxMidnight, 0)

	got := ScoreCelestial(0, 0, equinoxMidnight, weather.Clear, obj)

	// Full weather, night, altitude 90°, brightness 0.6.
	want := 0.30 + 0.30 + 0.25 + 0.15*0.6
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("ScoreCelestial = %v, want %v", got, want)
	}
}

func TestScoreCelestial_DaytimeGate(t *testing.T) {
	obj := zenithObject(equinoxNoon, -4)

	if sun := astro.SunAltitude(equinoxNoon, 0, 0); sun < 60 {
		t.Fatalf("setup: sun altitude %v, expected high noon sun", sun)
	}
	if got := ScoreCelestial(0, 0, equinoxNoon, weather.Clear, obj); got != 0 {
		t.Errorf("ScoreCelestial(star, daytime) = %v, want 0", got)
	}
}

func TestScoreCelestial_BelowHorizonGate(t *testing.T) {
	obj := zenithObject(equinoxMidnight, -4)
	obj.RAdeg = math.Mod(obj.RAdeg+180, 360)

	if got := ScoreCelestial(0, 0, equinoxMidnight, weather.Clear, obj); got != 0 {
		t.Errorf("ScoreCelestial(nadir) = %v, want 0", got)
	}
}

func TestScoreCelestial_UnknownFallsBackToMoon(t *testing.T) {
	at := time.Date(2024, 4, 23, 22, 0, 0, 0, time.UTC)
	moon := ScoreCelestial(30, 35, at, weather.Clear, MoonTarget)

	if got := ScoreCelestial(30, 35, at, weather.Clear, Unknown{}); got != moon {
		t.Errorf("Unknown score = %v, Moon score = %v", got, moon)
	}
	if got := ScoreCelestial(30, 35, at, weather.Clear, nil); got != moon {
		t.Errorf("nil target score = %v, Moon score = %v", got, moon)
	}
}

func TestCelestialBreakdown_Sun(t *testing.T) {
	noon := CelestialBreakdown(0, 0, equinoxNoon, weather.Clear, SunTarget)
	if noon.TimeRating != 10 || !noon.IsAboveHorizon || noon.Score <= 0 {
		t.Errorf("noon sun breakdown = %+v", noon)
	}
	if noon.Illumination != nil {
		t.Errorf("sun illumination = %v, want nil", *noon.Illumination)
	}

	night := CelestialBreakdown(0, 0, equinoxMidnight, weather.Clear, SunTarget)
	if night.TimeRating != 1 || night.Score != 0 || night.IsAboveHorizon {
		t.Errorf("midnight sun breakdown = %+v", night)
	}
}

func TestCelestialBreakdown_Moon(t *testing.T) {
	full := time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)
	b := CelestialBreakdown(0, 0, full, weather.Conditions{CloudCover: 0.5}, MoonTarget)

	if b.Illumination == nil {
		t.Fatal("moon illumination is nil")
	}
	if *b.Illumination < 97 || *b.Illumination > 100 {
		t.Errorf("illumination = %v%%, want ~100", *b.Illumination)
	}
	if b.PhaseName != "Full Moon" && b.PhaseName != "Waning Gibbous" && b.PhaseName != "Waxing Gibbous" {
		t.Errorf("PhaseName = %q", b.PhaseName)
	}
	if b.WeatherRating != 6 {
		t.Errorf("WeatherRating = %d, want 6", b.WeatherRating)
	}
	if b.IsAboveHorizon != (b.ObjectAltitude > 0) {
		t.Errorf("IsAboveHorizon = %v with altitude %v", b.IsAboveHorizon, b.ObjectAltitude)
	}
}

func TestCelestialBreakdown_PlanetHasNoIllumination(t *testing.T) {
	b := CelestialBreakdown(0, 0, equinoxMidnight, weather.Clear, zenithObject(equinoxMidnight, -2))
	if b.Illumination != nil || b.PhaseName != "" {
		t.Errorf("planet illumination = %v phase = %q", b.Illumination, b.PhaseName)
	}
	if b.TimeRating != 10 {
		t.Errorf("TimeRating = %d, want 10", b.TimeRating)
	}
}

func TestCelestial_Bounded(t *testing.T) {
	targets := []Target{
		MoonTarget,
		SunTarget,
		Unknown{},
		EquatorialObject{RAdeg: 101.287, DecDeg: -16.716, Magnitude: -1.46},
		EquatorialObject{RAdeg: 37.954, DecDeg: 89.264, Magnitude: 12},
	}
	conds := []weather.Conditions{
		weather.Clear,
		{CloudCover: 1, Fog: 1},
		{CloudCover: 2, Fog: -1},
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, target := range targets {
		for _, w := range conds {
			for lat := -80.0; lat <= 80; lat += 40 {
				for h := 0; h < 48; h += 5 {
					at := start.Add(time.Duration(h) * time.Hour)
					b := CelestialBreakdown(lat, 20, at, w, target)
					if b.Score < 0 || b.Score > 1 {
						t.Errorf("score %v out of [0,1] for %#v at %v", b.Score, target, at)
					}
					if b.WeatherRating < 1 || b.WeatherRating > 10 || b.TimeRating < 1 || b.TimeRating > 10 {
						t.Errorf("ratings %d/%d out of [1,10] for %#v at %v", b.WeatherRating, b.TimeRating, target, at)
					}
					if got := ScoreCelestial(lat, 20, at, w, target); got != b.Score {
						t.Errorf("ScoreCelestial = %v, breakdown score = %v", got, b.Score)
					}
				}
			}
		}
	}
}
