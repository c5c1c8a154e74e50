// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyscore/internal/catalog"
	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/grid"
	"github.com/litescript/ls-skyscore/internal/logging"
	"github.com/litescript/ls-skyscore/internal/observability"
	"github.com/litescript/ls-skyscore/internal/version"
	"github.com/litescript/ls-skyscore/internal/visibility"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// Layer selects what the map shows.
type Layer int

const (
	LayerScore Layer = iota
	LayerCrescent
)

const (
	tooltipWidth = 36
	chromeHeight = 6 // title, status, legend, footer and spacing
	minRows      = 4
	minCols      = 8
	minSpanLat   = 10.0
	panFraction  = 0.25
)

// Msg types for Bubble Tea
type (
	// gridDoneMsg carries a finished evaluation. gen drops stale results.
	gridDoneMsg struct {
		gen       int
		scores    *grid.Result[float64]
		zones     *grid.Result[crescent.Zone]
		breakdown visibility.Breakdown
		crescent  crescent.Result
		err       error
	}
)

// Deps are the collaborators the map needs.
type Deps struct {
	Catalog  *catalog.Catalog
	Weather  weather.Provider
	Scores   *grid.ScoreCache
	Crescent *crescent.Cache
	Metrics  *observability.Metrics
	Logger   *logging.Logger
	Workers  int
}

// Model is the root Bubble Tea model: a score heatmap centred on a point,
// with a breakdown tooltip for the centre.
type Model struct {
	deps    Deps
	objects []catalog.Object
	objIdx  int

	at               time.Time
	centerLat        float64
	centerLon        float64
	spanLat, spanLon float64
	layer            Layer

	width  int
	height int
	ready  bool

	gen       int
	computing bool
	scores    *grid.Result[float64]
	zones     *grid.Result[crescent.Zone]
	breakdown visibility.Breakdown
	crescent  crescent.Result
	err       error
}

// New creates the map model centred on (lat, lon) at time at.
func New(deps Deps, at time.Time, lat, lon float64) Model {
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if deps.Weather == nil {
		deps.Weather = weather.Static(weather.Clear)
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Crescent == nil {
		deps.Crescent = crescent.NewCache(crescent.DefaultCacheSize)
	}

	m := Model{
		deps:      deps,
		objects:   scorable(deps.Catalog),
		at:        at,
		centerLat: lat,
		centerLon: wrapLon(lon),
		spanLat:   180,
		spanLon:   360,
	}
	for i, o := range m.objects {
		if o.ID == "moon" {
			m.objIdx = i
		}
	}
	return m
}

// scorable returns the objects the celestial scorer can place in the sky.
func scorable(c *catalog.Catalog) []catalog.Object {
	var out []catalog.Object
	for _, o := range c.All() {
		if _, unknown := o.Target().(visibility.Unknown); !unknown {
			out = append(out, o)
		}
	}
	return out
}

// Object returns the object being scored.
func (m Model) Object() catalog.Object {
	if len(m.objects) == 0 {
		return catalog.Object{ID: "moon", Name: "Moon", Type: catalog.TypeMoon}
	}
	return m.objects[m.objIdx]
}

// Time returns the evaluation time.
func (m Model) Time() time.Time { return m.at }

// Center returns the map centre.
func (m Model) Center() (lat, lon float64) { return m.centerLat, m.centerLon }

// Layer returns the active layer.
func (m Model) Layer() Layer { return m.layer }

// Spec returns the grid currently on screen.
func (m Model) Spec() grid.Spec {
	rows := m.height - chromeHeight
	cols := m.width - tooltipWidth - 4
	if rows < minRows {
		rows = minRows
	}
	if cols < minCols {
		cols = minCols
	}
	return grid.Around(m.centerLat, m.centerLon, m.spanLat, m.spanLon, rows, cols)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.centerLat = math.Min(90, m.centerLat+m.spanLat*panFraction)
		case "down", "j":
			m.centerLat = math.Max(-90, m.centerLat-m.spanLat*panFraction)
		case "left", "h":
			m.centerLon = wrapLon(m.centerLon - m.spanLon*panFraction)
		case "right", "l":
			m.centerLon = wrapLon(m.centerLon + m.spanLon*panFraction)
		case "+", "=":
			m.at = m.at.Add(time.Hour)
		case "-", "_":
			m.at = m.at.Add(-time.Hour)
		case "z":
			m.spanLat = math.Max(minSpanLat, m.spanLat/2)
			m.spanLon = math.Max(2*minSpanLat, m.spanLon/2)
		case "x":
			m.spanLat = math.Min(180, m.spanLat*2)
			m.spanLon = math.Min(360, m.spanLon*2)
		case "c":
			if m.layer == LayerCrescent {
				m.layer = LayerScore
			} else {
				m.layer = LayerCrescent
			}
		case "o":
			if len(m.objects) > 0 {
				m.objIdx = (m.objIdx + 1) % len(m.objects)
			}
		default:
			return m, nil
		}
		return m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m.refresh()

	case gridDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.computing = false
		m.err = msg.err
		if msg.scores != nil {
			m.scores = msg.scores
			m.breakdown = msg.breakdown
		}
		if msg.zones != nil {
			m.zones = msg.zones
			m.crescent = msg.crescent
		}
	}
	return m, nil
}

// refresh starts a new evaluation for the current view.
func (m Model) refresh() (Model, tea.Cmd) {
	m.gen++
	m.computing = true
	return m, m.evaluate(m.gen, m.Spec())
}

func (m Model) evaluate(gen int, spec grid.Spec) tea.Cmd {
	deps := m.deps
	at, lat, lon, layer := m.at, m.centerLat, m.centerLon, m.layer
	obj := m.Object()

	return func() tea.Msg {
		ctx := context.Background()
		opts := []grid.Option{grid.WithWorkers(deps.Workers), grid.WithLogger(deps.Logger)}
		out := gridDoneMsg{gen: gen}

		if layer == LayerCrescent {
			opts = append(opts, grid.WithMetrics(deps.Metrics, "crescent"))
			out.zones, out.err = grid.Evaluate(ctx, spec, grid.Crescent(at, deps.Crescent), opts...)
			out.crescent = deps.Crescent.Q(lat, lon, crescent.LocalDate(at, lon))
			return out
		}

		target := obj.Target()
		opts = append(opts, grid.WithMetrics(deps.Metrics, "celestial"))
		out.scores, out.err = grid.Evaluate(ctx, spec, grid.Celestial(at, deps.Weather, target, deps.Scores), opts...)
		if out.err != nil {
			return out
		}
		cond, err := deps.Weather.Conditions(ctx, lat, lon, at)
		if err != nil {
			out.err = err
			return out
		}
		out.breakdown = visibility.CelestialBreakdown(lat, lon, at, cond, target)
		return out
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	mapView := m.renderMap()
	tooltip := lipgloss.NewStyle().Width(tooltipWidth).PaddingLeft(2).Render(m.renderTooltip())
	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, tooltip)

	return strings.Join([]string{
		m.renderTitle(),
		m.renderStatusLine(),
		body,
		"  " + RenderLegend(m.layer == LayerCrescent),
		m.renderFooter(),
	}, "\n")
}

func (m Model) renderTitle() string {
	title := fmt.Sprintf("  ls-skyscore v%s", version.Version)
	runes := []rune(title)

	var b strings.Builder
	for col, r := range runes {
		b.WriteString(colored(gradientColor(col, 0, len(runes), 1), string(r)))
	}
	return b.String()
}

func (m Model) renderStatusLine() string {
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	layer := m.Object().Name
	if m.layer == LayerCrescent {
		layer = "Crescent zones " + crescent.LocalDate(m.at, m.centerLon).Format("2006-01-02")
	}
	status := fmt.Sprintf("  %s   %s   centre %.1f, %.1f",
		activeStyle.Render("▶ "+layer),
		m.at.UTC().Format("2006-01-02 15:04 UTC"),
		m.centerLat, m.centerLon)

	if m.computing {
		status += dimStyle.Render("   computing…")
	}
	return status
}

func (m Model) renderMap() string {
	spec := m.Spec()
	centreRow, centreCol := spec.Rows/2, spec.Cols/2
	crosshair := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Render("+")

	var b strings.Builder
	for r := 0; r < spec.Rows; r++ {
		b.WriteString("  ")
		for c := 0; c < spec.Cols; c++ {
			switch {
			case r == centreRow && c == centreCol:
				b.WriteString(crosshair)
			case m.layer == LayerCrescent:
				b.WriteString(m.zoneCell(spec, r, c))
			default:
				b.WriteString(m.scoreCell(spec, r, c))
			}
		}
		if r < spec.Rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) scoreCell(spec grid.Spec, r, c int) string {
	if m.scores == nil || m.scores.Spec != spec || !m.scores.Done[r] {
		return ScoreCell(math.NaN())
	}
	return ScoreCell(m.scores.At(r, c))
}

func (m Model) zoneCell(spec grid.Spec, r, c int) string {
	if m.zones == nil || m.zones.Spec != spec || !m.zones.Done[r] {
		return ScoreCell(math.NaN())
	}
	return ZoneCell(m.zones.At(r, c))
}

func (m Model) renderTooltip() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	var parts []string
	if m.err != nil {
		parts = append(parts, errorStyle.Render("ERROR: "+m.err.Error()))
	}
	switch {
	case m.layer == LayerCrescent && m.zones != nil:
		parts = append(parts, RenderCrescent(m.crescent))
	case m.layer == LayerScore && m.scores != nil:
		parts = append(parts, RenderBreakdown(m.Object().Name, m.breakdown))
		parts = append(parts, "", renderSummary(grid.Summarize(m.scores)))
	}
	return strings.Join(parts, "\n")
}

func renderSummary(s grid.Summary) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	if s.Count == 0 {
		return dimStyle.Render("no scored points")
	}
	return dimStyle.Render(fmt.Sprintf("map mean %.0f%%  max %.0f%%\nvisible %.0f%% of %d points",
		s.Mean*100, s.Max*100, s.VisibleFraction*100, s.Count))
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	return dimStyle.Render("  ←↑↓→ pan  z/x zoom  +/- hour  c crescent  o object  q quit")
}

// gradientColor returns a hex color for a position in the title gradient.
// Blue -> purple -> magenta -> pink, darker toward the bottom row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r, g, b = 59+t*(139-59), 130+t*(92-130), 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r, g, b = 139+t*(217-139), 92+t*(70-92), 246+t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r, g, b = 217+t*(236-217), 70+t*(72-70), 239+t*(153-239)
	}

	fade := 1.0 - yRatio*0.5
	return fmt.Sprintf("#%02X%02X%02X", channel(r*fade), channel(g*fade), channel(b*fade))
}

func channel(v float64) int {
	return int(math.Max(0, math.Min(255, v)))
}

// wrapLon wraps a longitude into [-180, 180).
func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
