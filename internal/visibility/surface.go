package visibility

import (
	"math"
	"time"

	"github.com/litescript/ls-skyscore/internal/optics"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// SurfaceResult is the full working of a surface-to-surface score.
type SurfaceResult struct {
	Score            float64 `json:"score"`
	Percentage       float64 `json:"percentage"`
	WeatherRating    int     `json:"weatherRating"`
	TimeRating       int     `json:"timeRating"`
	DistanceKm       float64 `json:"distanceKm"`
	MaxLOSDistanceKm float64 `json:"maxLosDistanceKm"`
	WeatherLimitKm   float64 `json:"weatherLimitKm"`
	ExtinctionCoeff  float64 `json:"extinctionCoeff"`
	Visible          bool    `json:"visible"`
}

// ScoreSurface returns a [0,1] score for seeing target from observer.
//
// Beyond the shorter of the geometric line of sight and the Koschmieder
// visibility the score is 0. Inside it the score is the contrast left after
// extinction, scaled by TimeOfDayFactor.
func ScoreSurface(observer, target Position, w weather.Conditions, t time.Time) float64 {
	return SurfaceReport(observer, target, w, t).Score
}

// SurfaceReport computes ScoreSurface and returns every intermediate value.
func SurfaceReport(observer, target Position, w weather.Conditions, t time.Time) SurfaceResult {
	beta := w.Extinction()
	tod := TimeOfDayFactor(t)

	res := SurfaceResult{
		DistanceKm:       optics.Haversine(observer.Lat, observer.Lon, target.Lat, target.Lon),
		MaxLOSDistanceKm: optics.MaxLineOfSightDistance(observer.AltitudeKm, target.AltitudeKm),
		WeatherLimitKm:   optics.KoschmiederVisibility(beta),
		ExtinctionCoeff:  beta,
		WeatherRating:    w.Rating(),
		TimeRating:       rating(tod),
	}

	limit := math.Min(res.MaxLOSDistanceKm, res.WeatherLimitKm)
	if res.DistanceKm > limit {
		return res
	}

	res.Score = clamp01(optics.ContrastAtDistance(beta, res.DistanceKm) * tod)
	res.Percentage = math.Round(res.Score*1000) / 10
	res.Visible = res.Score > 0
	return res
}

// TimeOfDayFactor is a coarse light factor from the hour of t in its own
// location: daytime 08-17 is 1.0, the 06-07 and 18-19 shoulders 0.7, 05 and
// 20 are 0.5 and the rest of the night 0.3.
func TimeOfDayFactor(t time.Time) float64 {
	switch h := t.Hour(); {
	case h >= 8 && h < 18:
		return 1.0
	case h >= 6 && h < 8, h >= 18 && h < 20:
		return 0.7
	case h == 5, h == 20:
		return 0.5
	default:
		return 0.3
	}
}

// rating maps a [0,1] factor onto 1-10.
func rating(f float64) int {
	r := int(math.Round(f * 10))
	if r < 1 {
		return 1
	}
	if r > 10 {
		return 10
	}
	return r
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
