// Package grid evaluates point scorers over a lat/lon grid in parallel.
//
// Work is handed out one row at a time. Cancellation is checked between rows
// only, so a row that has started always completes.
package grid

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/litescript/ls-skyscore/internal/logging"
	"github.com/litescript/ls-skyscore/internal/observability"
)

// ErrInvalidSpec is returned for grids with no cells or inverted bounds.
var ErrInvalidSpec = errors.New("invalid grid spec")

// Spec describes a grid of cell centres between the given bounds.
type Spec struct {
	North float64 `json:"north"` // North > South
	South float64 `json:"south"`
	West  float64 `json:"west"` // East > West
	East  float64 `json:"east"`
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
}

// Validate checks the spec.
func (s Spec) Validate() error {
	switch {
	case s.Rows <= 0 || s.Cols <= 0:
		return fmt.Errorf("%w: %dx%d cells", ErrInvalidSpec, s.Rows, s.Cols)
	case s.North <= s.South:
		return fmt.Errorf("%w: north %.3f <= south %.3f", ErrInvalidSpec, s.North, s.South)
	case s.East <= s.West:
		return fmt.Errorf("%w: east %.3f <= west %.3f", ErrInvalidSpec, s.East, s.West)
	case s.North > 90 || s.South < -90:
		return fmt.Errorf("%w: latitude outside [-90, 90]", ErrInvalidSpec)
	}
	return nil
}

// Lat returns the latitude of the centre of row r (row 0 is northmost).
func (s Spec) Lat(r int) float64 {
	return s.North - (float64(r)+0.5)*(s.North-s.South)/float64(s.Rows)
}

// Lon returns the longitude of the centre of column c (column 0 is westmost).
func (s Spec) Lon(c int) float64 {
	return s.West + (float64(c)+0.5)*(s.East-s.West)/float64(s.Cols)
}

// World returns a whole-Earth spec.
func World(rows, cols int) Spec {
	return Spec{North: 90, South: -90, West: -180, East: 180, Rows: rows, Cols: cols}
}

// Around returns a spec centred on (lat, lon) spanning the given degrees,
// clipped to valid latitudes.
func Around(lat, lon, spanLat, spanLon float64, rows, cols int) Spec {
	s := Spec{
		North: lat + spanLat/2,
		South: lat - spanLat/2,
		West:  lon - spanLon/2,
		East:  lon + spanLon/2,
		Rows:  rows,
		Cols:  cols,
	}
	if s.North > 90 {
		s.North = 90
	}
	if s.South < -90 {
		s.South = -90
	}
	return s
}

// PointFunc scores one point.
type PointFunc[T any] func(ctx context.Context, lat, lon float64) T

// Result holds row-major values for a Spec.
type Result[T any] struct {
	Spec   Spec
	Values []T
	Done   []bool // per row, false for rows skipped after cancellation
}

// At returns the value at row r, column c.
func (r *Result[T]) At(row, col int) T {
	return r.Values[row*r.Spec.Cols+col]
}

// Row returns the values of one row.
func (r *Result[T]) Row(row int) []T {
	return r.Values[row*r.Spec.Cols : (row+1)*r.Spec.Cols]
}

// Complete reports whether every row was evaluated.
func (r *Result[T]) Complete() bool {
	for _, d := range r.Done {
		if !d {
			return false
		}
	}
	return true
}

type options struct {
	workers int
	metrics *observability.Metrics
	kind    string
	logger  *logging.Logger
}

// Option configures Evaluate.
type Option func(*options)

// WithWorkers sets the worker count. Zero or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMetrics records evaluation metrics under the given kind label.
func WithMetrics(m *observability.Metrics, kind string) Option {
	return func(o *options) { o.metrics, o.kind = m, kind }
}

// WithLogger sets the logger used for evaluation summaries.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Evaluate scores every cell of spec with fn. When ctx is cancelled the rows
// already started finish, the rest are skipped, and the partial result is
// returned together with ctx.Err().
func Evaluate[T any](ctx context.Context, spec Spec, fn PointFunc[T], opts ...Option) (*Result[T], error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: logging.Discard(), kind: "grid"}
	for _, opt := range opts {
		opt(&o)
	}
	workers := o.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > spec.Rows {
		workers = spec.Rows
	}

	res := &Result[T]{
		Spec:   spec,
		Values: make([]T, spec.Rows*spec.Cols),
		Done:   make([]bool, spec.Rows),
	}

	start := time.Now()
	rows := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range rows {
				lat := spec.Lat(r)
				base := r * spec.Cols
				for c := 0; c < spec.Cols; c++ {
					res.Values[base+c] = fn(ctx, lat, spec.Lon(c))
				}
				res.Done[r] = true
			}
		}()
	}

	var err error
feed:
	for r := 0; r < spec.Rows; r++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case rows <- r:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(rows)
	wg.Wait()

	points := 0
	for _, d := range res.Done {
		if d {
			points += spec.Cols
		}
	}
	o.record(points, err, time.Since(start))
	return res, err
}

func (o options) record(points int, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "cancelled"
		o.logger.Warn("grid %s evaluation stopped after %d points in %v: %v", o.kind, points, elapsed, err)
	} else {
		o.logger.Debug("grid %s evaluation scored %d points in %v", o.kind, points, elapsed)
	}

	if o.metrics == nil {
		return
	}
	o.metrics.GridEvaluations.WithLabelValues(o.kind, outcome).Inc()
	o.metrics.GridPoints.WithLabelValues(o.kind).Add(float64(points))
	o.metrics.GridDuration.WithLabelValues(o.kind).Observe(elapsed.Seconds())
}
