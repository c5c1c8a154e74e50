// Command ls-skyscore scores how visible the Moon, Sun, stars and satellites
// are from anywhere on Earth, as a terminal map, headless reports or an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-skyscore/internal/catalog"
	"github.com/litescript/ls-skyscore/internal/config"
	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/grid"
	"github.com/litescript/ls-skyscore/internal/httpapi"
	"github.com/litescript/ls-skyscore/internal/logging"
	"github.com/litescript/ls-skyscore/internal/observability"
	"github.com/litescript/ls-skyscore/internal/report"
	"github.com/litescript/ls-skyscore/internal/ui"
	"github.com/litescript/ls-skyscore/internal/version"
	"github.com/litescript/ls-skyscore/internal/visibility"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// CLI flags for headless mode
var (
	serveMode     bool
	pointMode     bool
	crescentMode  bool
	gridMode      bool
	jsonMode      bool
	watchInterval time.Duration
	lat, lon      float64
	atFlag        string
	objectID      string
	weatherMode   string
	seed          float64
	rows, cols    int
	spanLat       float64
	spanLon       float64
)

const (
	minWatch = 1 * time.Second
	maxWatch = 1 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", cfg.LogFormat, "Log format (console, json)")
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address for -serve")
	catalogPath := flag.String("catalog", cfg.CatalogPath, "JSON catalog merged over the built-in objects")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&serveMode, "serve", false, "Run the HTTP API")
	flag.BoolVar(&pointMode, "point", false, "Print the score breakdown for -lat/-lon")
	flag.BoolVar(&crescentMode, "crescent", false, "Print the Yallop crescent zone for -lat/-lon")
	flag.BoolVar(&gridMode, "grid", false, "Print a score grid summary and ASCII map")
	flag.BoolVar(&jsonMode, "json", false, "Write headless output as JSON")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat headless output at interval (e.g., 1m)")
	flag.Float64Var(&lat, "lat", 0, "Observer latitude in degrees")
	flag.Float64Var(&lon, "lon", 0, "Observer longitude in degrees")
	flag.StringVar(&atFlag, "time", "", "Evaluation time, RFC3339 (default now); date only for -crescent")
	flag.StringVar(&objectID, "object", "moon", "Catalog object id to score")
	flag.StringVar(&weatherMode, "weather", "synthetic", "Weather source (synthetic, clear)")
	flag.Float64Var(&seed, "seed", 0, "Seed for the synthetic weather field")
	flag.IntVar(&rows, "rows", 18, "Grid rows for -grid")
	flag.IntVar(&cols, "cols", 72, "Grid columns for -grid")
	flag.Float64Var(&spanLat, "span-lat", 180, "Grid latitude span in degrees")
	flag.Float64Var(&spanLon, "span-lon", 360, "Grid longitude span in degrees")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ls-skyscore v%s\n", version.Version)
		return
	}

	if watchInterval != 0 {
		if watchInterval < minWatch {
			watchInterval = minWatch
		} else if watchInterval > maxWatch {
			watchInterval = maxWatch
		}
	}

	// Set up logging
	logger := logging.NewWithFormat(logging.ParseLevel(*logLevel), logging.ParseFormat(*logFormat), os.Stderr)
	defer logger.Sync()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	provider, err := newWeather(weatherMode, seed, cfg.WeatherTTL)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	crescents := crescent.NewCache(cfg.CrescentCacheSize)

	if serveMode {
		metrics := observability.NewMetrics()
		if err := runServer(ctx, *addr, cfg.ShutdownTimeout, httpapi.Deps{
			Catalog:  cat,
			Weather:  provider,
			Crescent: crescents,
			Metrics:  metrics,
			Logger:   logger,
		}, logger); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	deps := ui.Deps{
		Catalog:  cat,
		Weather:  provider,
		Scores:   grid.NewScoreCache(cfg.ScoreCacheSize, 0, 0, nil),
		Crescent: crescents,
		Logger:   logger,
		Workers:  cfg.GridWorkers,
	}

	// Headless mode: no TUI
	headless := pointMode || crescentMode || gridMode || jsonMode || !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		if !crescentMode && !gridMode {
			pointMode = true
		}
		if err := runHeadless(ctx, os.Stdout, deps); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	at, err := parseTime(atFlag)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; keep logs out of it.
	logger.SetOutput(io.Discard)
	p := tea.NewProgram(ui.New(deps, at, lat, lon), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if path == "" {
		return cat, nil
	}
	extra, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cat.Merge(extra), nil
}

func newWeather(mode string, seed float64, ttl time.Duration) (weather.Provider, error) {
	switch mode {
	case "synthetic":
		inner := weather.NewSynthetic(seed)
		cache := weather.NewBucketedCache(ttl, inner.Bucket, nil)
		return weather.NewCachedProvider(inner, cache, weather.DefaultNeighborRadiusKm), nil
	case "clear":
		return weather.Static(weather.Clear), nil
	default:
		return nil, fmt.Errorf("unknown weather source %q", mode)
	}
}

// parseTime accepts RFC3339 or a bare date. Empty means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -time %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

func runServer(ctx context.Context, addr string, shutdownTimeout time.Duration, deps httpapi.Deps, logger *logging.Logger) error {
	srv := httpapi.NewServer(addr, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, w io.Writer, deps ui.Deps) error {
	fixedTime := atFlag != ""

	outputOnce := func() error {
		at, err := parseTime(atFlag)
		if err != nil {
			return err
		}

		if pointMode {
			if err := writePoint(ctx, w, deps, at); err != nil {
				return err
			}
		}
		if crescentMode {
			writeCrescent(w, deps.Crescent, at)
		}
		if gridMode {
			if err := writeGrid(ctx, w, deps, at); err != nil {
				return err
			}
		}
		return nil
	}

	// Single run
	if watchInterval == 0 || fixedTime {
		return outputOnce()
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		deps.Logger.Error("%v", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !jsonMode {
				fmt.Fprintln(w) // Blank line between outputs
			}
			if err := outputOnce(); err != nil {
				deps.Logger.Error("%v", err)
			}
		}
	}
}

func writePoint(ctx context.Context, w io.Writer, deps ui.Deps, at time.Time) error {
	obj, err := deps.Catalog.Get(objectID)
	if err != nil {
		return err
	}
	cond, err := deps.Weather.Conditions(ctx, lat, lon, at)
	if err != nil {
		return err
	}

	p := &report.PointExport{
		Time:      at,
		Lat:       lat,
		Lon:       lon,
		Object:    obj.Name,
		Weather:   cond,
		Breakdown: visibility.CelestialBreakdown(lat, lon, at, cond, obj.Target()),
	}
	win := visibility.Events(obj.Target(), lat, lon, crescent.LocalDate(at, lon))
	p.Window = &win
	if jsonMode {
		return report.WriteJSON(w, p)
	}
	report.WritePointTable(w, p)
	return nil
}

func writeCrescent(w io.Writer, cache *crescent.Cache, at time.Time) {
	local := crescent.LocalDate(at, lon)
	c := report.ExportCrescent(lat, lon, local, cache.Q(lat, lon, local))
	if jsonMode {
		_ = report.WriteJSON(w, c)
		return
	}
	report.WriteCrescentTable(w, c)
}

func writeGrid(ctx context.Context, w io.Writer, deps ui.Deps, at time.Time) error {
	spec := grid.Around(lat, lon, spanLat, spanLon, rows, cols)
	opts := []grid.Option{grid.WithWorkers(deps.Workers), grid.WithLogger(deps.Logger)}

	if crescentMode {
		res, err := grid.Evaluate(ctx, spec, grid.Crescent(at, deps.Crescent), opts...)
		if err != nil && res == nil {
			return err
		}
		if jsonMode {
			return report.WriteJSON(w, report.ExportZones(at, res))
		}
		report.WriteZoneMap(w, res)
		return err
	}

	obj, err := deps.Catalog.Get(objectID)
	if err != nil {
		return err
	}
	res, err := grid.Evaluate(ctx, spec, grid.Celestial(at, deps.Weather, obj.Target(), deps.Scores), opts...)
	if err != nil && res == nil {
		return err
	}
	g := report.ExportScores(obj.ID, at, res)
	if jsonMode {
		return report.WriteJSON(w, g)
	}
	report.WriteGridSummary(w, g)
	report.WriteMiniMap(w, res)
	return err
}
