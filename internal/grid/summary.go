package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/litescript/ls-skyscore/internal/crescent"
)

// VisibleThreshold is the score above which a point counts as visible.
const VisibleThreshold = 0.5

// Summary describes the distribution of scores in a grid.
type Summary struct {
	Count           int     `json:"count"`
	Missing         int     `json:"missing"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"stdDev"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	VisibleFraction float64 `json:"visibleFraction"`
}

// Summarize computes statistics over the evaluated rows, skipping NaN scores.
func Summarize(r *Result[float64]) Summary {
	var xs []float64
	var s Summary
	for row := 0; row < r.Spec.Rows; row++ {
		if !r.Done[row] {
			continue
		}
		for _, v := range r.Row(row) {
			if math.IsNaN(v) {
				s.Missing++
				continue
			}
			xs = append(xs, v)
		}
	}

	s.Count = len(xs)
	if s.Count == 0 {
		return s
	}

	s.Mean = stat.Mean(xs, nil)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)

	visible := 0
	for _, v := range xs {
		if v > VisibleThreshold {
			visible++
		}
	}
	s.VisibleFraction = float64(visible) / float64(s.Count)
	return s
}

// ZoneCounts tallies crescent zones over the evaluated rows.
func ZoneCounts(r *Result[crescent.Zone]) map[crescent.Zone]int {
	counts := make(map[crescent.Zone]int, len(crescent.Zones))
	for row := 0; row < r.Spec.Rows; row++ {
		if !r.Done[row] {
			continue
		}
		for _, z := range r.Row(row) {
			counts[z]++
		}
	}
	return counts
}
