// Package httpapi serves the scoring engine over JSON HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-skyscore/internal/catalog"
	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/logging"
	"github.com/litescript/ls-skyscore/internal/observability"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Deps are the collaborators the handlers need. Nil fields get defaults.
type Deps struct {
	Catalog  *catalog.Catalog
	Weather  weather.Provider
	Crescent *crescent.Cache
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer // source for /metrics, default registry when nil
	Logger   *logging.Logger
	Clock    clockwork.Clock
}

func (d *Deps) defaults() {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Weather == nil {
		d.Weather = weather.Static(weather.Clear)
	}
	if d.Crescent == nil {
		d.Crescent = crescent.NewCache(crescent.DefaultCacheSize)
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
}

// Server exposes the scoring API plus health and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
}

// NewServer creates a server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	deps.defaults()
	s := &Server{deps: deps}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.instrument)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/visibility/celestial", s.handleCelestial).Methods(http.MethodPost)
	v1.HandleFunc("/visibility/surface", s.handleSurface).Methods(http.MethodPost)
	v1.HandleFunc("/crescent", s.handleCrescent).Methods(http.MethodGet)
	v1.HandleFunc("/objects", s.handleObjects).Methods(http.MethodGet)
	v1.HandleFunc("/objects/{id}", s.handleObject).Methods(http.MethodGet)
	v1.HandleFunc("/weather", s.handleWeather).Methods(http.MethodGet)
	v1.HandleFunc("/weather/cache-stats", s.handleWeatherCacheStats).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	} else {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.deps.Logger.Info("http server starting on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the request ID stored by the server middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.deps.Logger.Debug("%s %s %d %v id=%s", r.Method, route, rec.status, elapsed, RequestID(r.Context()))
		if m := s.deps.Metrics; m != nil {
			m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}
	})
}
