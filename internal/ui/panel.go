package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyscore/internal/astro"
	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/visibility"
)

// Score ramp colors
const (
	colorScoreExcellent = "#7CFC00" // Lawn green
	colorScoreGood      = "#ADFF2F" // Green yellow
	colorScoreFair      = "#FFD700" // Gold
	colorScorePoor      = "#FF6347" // Tomato
	colorScoreNone      = "#444444" // Dark gray
	colorScoreMissing   = "#2A2A3A"

	// Yallop zone colors, best to worst
	colorZoneA = "#00C853"
	colorZoneB = "#64DD17"
	colorZoneC = "#FFD600"
	colorZoneD = "#FF9100"
	colorZoneE = "#D50000"
	colorZoneF = "#444444"
)

// ScoreColor maps a [0,1] score onto the ramp. NaN gets the missing color.
func ScoreColor(score float64) string {
	switch {
	case math.IsNaN(score):
		return colorScoreMissing
	case score >= 0.75:
		return colorScoreExcellent
	case score >= 0.5:
		return colorScoreGood
	case score >= 0.25:
		return colorScoreFair
	case score > 0:
		return colorScorePoor
	default:
		return colorScoreNone
	}
}

// ZoneColor returns the color for a Yallop zone.
func ZoneColor(z crescent.Zone) string {
	switch z {
	case crescent.ZoneA:
		return colorZoneA
	case crescent.ZoneB:
		return colorZoneB
	case crescent.ZoneC:
		return colorZoneC
	case crescent.ZoneD:
		return colorZoneD
	case crescent.ZoneE:
		return colorZoneE
	default:
		return colorZoneF
	}
}

func colored(color, text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

// ScoreCell renders one map cell for a score.
func ScoreCell(score float64) string {
	if math.IsNaN(score) {
		return colored(colorScoreMissing, "·")
	}
	return colored(ScoreColor(score), "█")
}

// ZoneCell renders one map cell for a crescent zone.
func ZoneCell(z crescent.Zone) string {
	return colored(ZoneColor(z), "█")
}

// scoreBar converts a score to a 4-character bar.
func scoreBar(score float64) string {
	switch {
	case math.IsNaN(score) || score <= 0:
		return "░░░░"
	case score < 0.25:
		return "█░░░"
	case score < 0.5:
		return "██░░"
	case score < 0.75:
		return "███░"
	default:
		return "████"
	}
}

// RenderScoreBar renders a compact colored bar with the percentage.
// Format: ███░ 62%
func RenderScoreBar(score float64) string {
	if math.IsNaN(score) {
		return colored(colorScoreMissing, "···· n/a")
	}
	return colored(ScoreColor(score), fmt.Sprintf("%s %3.0f%%", scoreBar(score), score*100))
}

// RenderBreakdown renders the tooltip for one scored point.
// Format:
//
//	Moon
//	Score      ███░ 62%
//	Altitude   34.2°  az 128°
//	Phase      Waxing Gibbous (78%)
//	Weather    8/10
//	Time       9/10   sun -21.4°
func RenderBreakdown(name string, b visibility.Breakdown) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	label := func(s string) string { return labelStyle.Render(fmt.Sprintf("%-11s", s)) }

	lines := []string{
		labelStyle.Render(name),
		label("Score") + RenderScoreBar(b.Score),
	}

	alt := fmt.Sprintf("%.1f°  az %.0f°  %s", b.ObjectAltitude, b.ObjectAzimuth, astro.GetElevationTier(b.ObjectAltitude))
	if b.IsAboveHorizon {
		lines = append(lines, label("Altitude")+alt)
	} else {
		lines = append(lines, label("Altitude")+dimStyle.Render(alt))
	}

	if b.Illumination != nil {
		lines = append(lines, label("Phase")+fmt.Sprintf("%s (%.0f%%)", b.PhaseName, *b.Illumination))
	}

	lines = append(lines,
		label("Weather")+ratingText(b.WeatherRating),
		label("Time")+ratingText(b.TimeRating)+dimStyle.Render(fmt.Sprintf("   sun %.1f° %s", b.SunAltitude, astro.GetSunPhase(b.SunAltitude))),
	)
	return strings.Join(lines, "\n")
}

// RenderCrescent renders the tooltip for one crescent result.
func RenderCrescent(r crescent.Result) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	label := func(s string) string { return labelStyle.Render(fmt.Sprintf("%-11s", s)) }

	lines := []string{
		labelStyle.Render("Crescent"),
		label("Zone") + colored(ZoneColor(r.Zone), fmt.Sprintf("%s  %s", r.Zone, r.Label)),
	}
	if !r.HasQ() {
		lines = append(lines, label("Reason")+dimStyle.Render(string(r.Reason)))
		return strings.Join(lines, "\n")
	}
	lines = append(lines,
		label("q")+fmt.Sprintf("%+.3f", r.Q),
		label("Best time")+r.BestTime.Format("15:04 MST"),
		label("ARCV")+fmt.Sprintf("%.1f°", r.ARCV),
		label("Width")+fmt.Sprintf("%.2f'", r.WidthArcmin),
		label("Lag")+fmt.Sprintf("%.0f min", r.LagMinutes),
	)
	return strings.Join(lines, "\n")
}

func ratingText(r int) string {
	return colored(ScoreColor(float64(r)/10), fmt.Sprintf("%d/10", r))
}

// RenderLegend renders the color key for the active layer.
func RenderLegend(crescentMode bool) string {
	if crescentMode {
		var parts []string
		for _, z := range crescent.Zones {
			parts = append(parts, ZoneCell(z)+" "+z.String())
		}
		return strings.Join(parts, "  ")
	}
	return strings.Join([]string{
		ScoreCell(0.9) + " ≥75%",
		ScoreCell(0.6) + " ≥50%",
		ScoreCell(0.3) + " ≥25%",
		ScoreCell(0.1) + " >0",
		ScoreCell(0) + " none",
		ScoreCell(math.NaN()) + " no data",
	}, "  ")
}
