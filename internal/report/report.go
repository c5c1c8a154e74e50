// Package report writes headless text and JSON output for scores, crescent
// results and grids.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-skyscore/internal/astro"
	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/grid"
	"github.com/litescript/ls-skyscore/internal/visibility"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// PointExport is the JSON form of one celestial score.
type PointExport struct {
	Time      time.Time            `json:"time"`
	Lat       float64              `json:"lat"`
	Lon       float64              `json:"lon"`
	Object    string               `json:"object"`
	Weather   weather.Conditions   `json:"weather"`
	Breakdown visibility.Breakdown `json:"breakdown"`
	Window    *visibility.Window   `json:"window,omitempty"`
}

// CrescentExport is the JSON form of one crescent result. Q is nil when no
// best time exists.
type CrescentExport struct {
	Date       string     `json:"date"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Q          *float64   `json:"q"`
	Zone       string     `json:"zone"`
	Label      string     `json:"label"`
	Reason     string     `json:"reason,omitempty"`
	BestTime   *time.Time `json:"best_time,omitempty"`
	LagMinutes float64    `json:"lag_minutes"`
}

// GridExport is the JSON form of an evaluated grid. Cells that were not
// scored are null.
type GridExport struct {
	Time    time.Time     `json:"time"`
	Kind    string        `json:"kind"`
	Spec    grid.Spec     `json:"spec"`
	Summary *grid.Summary `json:"summary,omitempty"`
	Scores  [][]*float64  `json:"scores,omitempty"`
	Zones   [][]string    `json:"zones,omitempty"`

	ZoneCounts map[string]int `json:"zoneCounts,omitempty"`
}

// ExportCrescent converts a crescent result.
func ExportCrescent(lat, lon float64, date time.Time, r crescent.Result) *CrescentExport {
	out := &CrescentExport{
		Date:       date.Format("2006-01-02"),
		Lat:        lat,
		Lon:        lon,
		Zone:       r.Zone.String(),
		Label:      r.Label,
		Reason:     string(r.Reason),
		LagMinutes: r.LagMinutes,
	}
	if r.HasQ() {
		q := r.Q
		out.Q = &q
		bt := r.BestTime
		out.BestTime = &bt
	}
	return out
}

// ExportScores converts a score grid.
func ExportScores(kind string, t time.Time, res *grid.Result[float64]) *GridExport {
	s := grid.Summarize(res)
	out := &GridExport{Time: t, Kind: kind, Spec: res.Spec, Summary: &s}
	for r := 0; r < res.Spec.Rows; r++ {
		row := make([]*float64, res.Spec.Cols)
		if res.Done[r] {
			for c, v := range res.Row(r) {
				if !math.IsNaN(v) {
					row[c] = &v
				}
			}
		}
		out.Scores = append(out.Scores, row)
	}
	return out
}

// ExportZones converts a crescent zone grid.
func ExportZones(t time.Time, res *grid.Result[crescent.Zone]) *GridExport {
	out := &GridExport{Time: t, Kind: "crescent", Spec: res.Spec, ZoneCounts: map[string]int{}}
	for z, n := range grid.ZoneCounts(res) {
		out.ZoneCounts[z.String()] = n
	}
	for r := 0; r < res.Spec.Rows; r++ {
		row := make([]string, res.Spec.Cols)
		if res.Done[r] {
			for c, z := range res.Row(r) {
				row[c] = z.String()
			}
		}
		out.Zones = append(out.Zones, row)
	}
	return out
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePointTable writes a celestial breakdown as a text table.
func WritePointTable(w io.Writer, p *PointExport) {
	b := p.Breakdown
	fmt.Fprintf(w, "%s from %.3f, %.3f @ %s\n", p.Object, p.Lat, p.Lon, p.Time.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 48))
	fmt.Fprintf(w, "%-14s %5.1f%%\n", "Score", b.Score*100)
	fmt.Fprintf(w, "%-14s %6.1f°  az %.0f°\n", "Altitude", b.ObjectAltitude, b.ObjectAzimuth)
	if !b.IsAboveHorizon {
		fmt.Fprintf(w, "%-14s %s\n", "", "below horizon")
	}
	if b.Illumination != nil {
		fmt.Fprintf(w, "%-14s %s (%.0f%%)\n", "Phase", b.PhaseName, *b.Illumination)
	}
	fmt.Fprintf(w, "%-14s %d/10  (cloud %.0f%%, precip %.1f mm/h, fog %.0f%%, %.0f km)\n", "Weather",
		b.WeatherRating, p.Weather.CloudCover*100, p.Weather.Precipitation, p.Weather.Fog*100, p.Weather.VisibilityKm())
	fmt.Fprintf(w, "%-14s %d/10  (sun %.1f°, %s)\n", "Time", b.TimeRating, b.SunAltitude, astro.GetSunPhase(b.SunAltitude))
	if p.Window != nil {
		fmt.Fprintf(w, "%-14s %s\n", "Today", windowLine(p.Window))
		fmt.Fprintf(w, "%-14s %.0f° from the Sun\n", "Elongation", p.Window.Elongation)
		if !p.Window.Dark.IsZero() {
			fmt.Fprintf(w, "%-14s %s\n", "Dark from", p.Window.Dark.UTC().Format("15:04"))
		}
	}
}

// windowLine formats a rise/transit/set window as "Rise 22:14  Peak 03:10 (68°)  Set 08:02" in UTC.
func windowLine(win *visibility.Window) string {
	switch {
	case win.AlwaysUp && win.Transit.IsZero():
		return "up all day"
	case win.AlwaysDown:
		return "never rises"
	}

	var parts []string
	if !win.Rise.IsZero() {
		parts = append(parts, "Rise "+win.Rise.UTC().Format("15:04"))
	}
	if !win.Transit.IsZero() {
		parts = append(parts, fmt.Sprintf("Peak %s (%.0f°)", win.Transit.UTC().Format("15:04"), win.MaxAltitude))
	}
	if !win.Set.IsZero() {
		parts = append(parts, "Set "+win.Set.UTC().Format("15:04"))
	}
	if win.AlwaysUp {
		parts = append(parts, "circumpolar")
	}
	if len(parts) == 0 {
		return "no events"
	}
	return strings.Join(parts, "  ")
}

// WriteCrescentTable writes a crescent result as text.
func WriteCrescentTable(w io.Writer, c *CrescentExport) {
	fmt.Fprintf(w, "Crescent %s from %.3f, %.3f\n", c.Date, c.Lat, c.Lon)
	fmt.Fprintln(w, strings.Repeat("─", 48))
	fmt.Fprintf(w, "%-14s %s  %s\n", "Zone", c.Zone, c.Label)
	if c.Q == nil {
		fmt.Fprintf(w, "%-14s %s\n", "Reason", c.Reason)
		return
	}
	fmt.Fprintf(w, "%-14s %+.3f\n", "q", *c.Q)
	fmt.Fprintf(w, "%-14s %s\n", "Best time", c.BestTime.Format("15:04 MST"))
	fmt.Fprintf(w, "%-14s %.0f min\n", "Lag", c.LagMinutes)
}

// WriteGridSummary writes summary statistics for a score grid.
func WriteGridSummary(w io.Writer, g *GridExport) {
	fmt.Fprintf(w, "%s grid %dx%d @ %s\n", g.Kind, g.Spec.Rows, g.Spec.Cols, g.Time.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 48))
	if g.Summary == nil || g.Summary.Count == 0 {
		fmt.Fprintln(w, "No scored points")
		return
	}
	s := g.Summary
	fmt.Fprintf(w, "%-14s %d (%d missing)\n", "Points", s.Count, s.Missing)
	fmt.Fprintf(w, "%-14s %5.1f%% ± %.1f%%\n", "Mean", s.Mean*100, s.StdDev*100)
	fmt.Fprintf(w, "%-14s %5.1f%% .. %.1f%%\n", "Range", s.Min*100, s.Max*100)
	fmt.Fprintf(w, "%-14s %5.1f%%\n", "Visible", s.VisibleFraction*100)
}

// mapRamp runs from no visibility to certain visibility.
const mapRamp = " .:-=+*#%@"

// WriteMiniMap writes a score grid as ASCII, one character per cell,
// north at the top. Unscored cells are '?'.
func WriteMiniMap(w io.Writer, res *grid.Result[float64]) {
	border := "+" + strings.Repeat("-", res.Spec.Cols) + "+"
	fmt.Fprintln(w, border)
	for r := 0; r < res.Spec.Rows; r++ {
		var b strings.Builder
		b.WriteByte('|')
		for c := 0; c < res.Spec.Cols; c++ {
			b.WriteByte(rampChar(res.Done[r], res.At(r, c)))
		}
		b.WriteByte('|')
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintln(w, border)
}

func rampChar(done bool, v float64) byte {
	if !done || math.IsNaN(v) {
		return '?'
	}
	i := int(v * float64(len(mapRamp)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(mapRamp) {
		i = len(mapRamp) - 1
	}
	return mapRamp[i]
}

// WriteZoneMap writes a crescent grid as zone letters.
func WriteZoneMap(w io.Writer, res *grid.Result[crescent.Zone]) {
	border := "+" + strings.Repeat("-", res.Spec.Cols) + "+"
	fmt.Fprintln(w, border)
	for r := 0; r < res.Spec.Rows; r++ {
		var b strings.Builder
		b.WriteByte('|')
		for c := 0; c < res.Spec.Cols; c++ {
			if !res.Done[r] {
				b.WriteByte('?')
				continue
			}
			b.WriteByte(byte(res.At(r, c)))
		}
		b.WriteByte('|')
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintln(w, border)

	counts := grid.ZoneCounts(res)
	parts := make([]string, 0, len(crescent.Zones))
	for _, z := range crescent.Zones {
		parts = append(parts, fmt.Sprintf("%s:%d", z, counts[z]))
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
