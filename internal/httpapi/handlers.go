package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/litescript/ls-skyscore/internal/catalog"
	"github.com/litescript/ls-skyscore/internal/crescent"
	"github.com/litescript/ls-skyscore/internal/orbit"
	"github.com/litescript/ls-skyscore/internal/visibility"
	"github.com/litescript/ls-skyscore/internal/weather"
)

// errBadRequest marks errors that are the caller's fault.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, orbit.ErrInvalidTLE):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnknownObject):
		status = http.StatusNotFound
	case errors.Is(err, orbit.ErrPropagation):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.deps.Logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: RequestID(r.Context())})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("decode body: %v", err)
	}
	return nil
}

func validateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return badRequest("lat must be within [-90, 90]")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return badRequest("lon must be within [-180, 180]")
	}
	return nil
}

func (s *Server) at(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.deps.Clock.Now().UTC()
	}
	return *t
}

// conditions resolves weather for a point. An explicit override wins over
// the provider.
func (s *Server) conditions(ctx context.Context, override *weather.Conditions, lat, lon float64, t time.Time) (weather.Conditions, weather.Source, error) {
	if override != nil {
		return override.Clamp(), sourceRequest, nil
	}
	if cp, ok := s.deps.Weather.(*weather.CachedProvider); ok {
		cond, src, err := cp.Lookup(ctx, lat, lon, t)
		if err == nil {
			s.deps.Metrics.CacheHit("weather", weatherResult(src))
		}
		return cond, src, err
	}
	cond, err := s.deps.Weather.Conditions(ctx, lat, lon, t)
	return cond.Clamp(), weather.SourceProvider, err
}

const sourceRequest weather.Source = "request"

func weatherResult(src weather.Source) string {
	switch src {
	case weather.SourceCache:
		return "hit"
	case weather.SourceNeighbor:
		return "neighbor"
	default:
		return "miss"
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type equatorialTarget struct {
	Name      string   `json:"name"`
	RA        float64  `json:"ra"`
	Dec       float64  `json:"dec"`
	Magnitude *float64 `json:"magnitude"`
}

type celestialRequest struct {
	Lat     float64             `json:"lat"`
	Lon     float64             `json:"lon"`
	Time    *time.Time          `json:"time"`
	Object  string              `json:"object"`
	Target  *equatorialTarget   `json:"target"`
	Weather *weather.Conditions `json:"weather"`
}

type celestialResponse struct {
	visibility.Breakdown
	Object        string             `json:"object"`
	Time          time.Time          `json:"time"`
	Weather       weather.Conditions `json:"weather"`
	WeatherSource weather.Source     `json:"weatherSource"`
	Window        visibility.Window  `json:"window"`
}

func (s *Server) celestialTarget(req celestialRequest) (visibility.Target, string, error) {
	if t := req.Target; t != nil {
		if math.IsNaN(t.RA) || t.RA < 0 || t.RA >= 360 || t.Dec < -90 || t.Dec > 90 {
			return nil, "", badRequest("target ra must be within [0, 360) and dec within [-90, 90]")
		}
		mag := catalog.DefaultMagnitude
		if t.Magnitude != nil {
			mag = *t.Magnitude
		}
		return visibility.EquatorialObject{Name: t.Name, RAdeg: t.RA, DecDeg: t.Dec, Magnitude: mag}, t.Name, nil
	}

	id := req.Object
	if id == "" {
		id = "moon"
	}
	obj, err := s.deps.Catalog.Get(id)
	if err != nil {
		return nil, "", err
	}
	return obj.Target(), obj.ID, nil
}

func (s *Server) handleCelestial(w http.ResponseWriter, r *http.Request) {
	var req celestialRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateCoords(req.Lat, req.Lon); err != nil {
		s.writeError(w, r, err)
		return
	}
	target, name, err := s.celestialTarget(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	t := s.at(req.Time)
	cond, src, err := s.conditions(r.Context(), req.Weather, req.Lat, req.Lon, t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, celestialResponse{
		Breakdown:     visibility.CelestialBreakdown(req.Lat, req.Lon, t, cond, target),
		Object:        name,
		Time:          t,
		Weather:       cond,
		WeatherSource: src,
		Window:        visibility.Events(target, req.Lat, req.Lon, crescent.LocalDate(t, req.Lon)),
	})
}

type surfaceRequest struct {
	Observer visibility.Position  `json:"observer"`
	Target   *visibility.Position `json:"target"`
	Object   string               `json:"object"`
	Time     *time.Time           `json:"time"`
	Weather  *weather.Conditions  `json:"weather"`
}

type surfaceResponse struct {
	visibility.SurfaceResult
	Target        visibility.Position `json:"target"`
	Time          time.Time           `json:"time"`
	Weather       weather.Conditions  `json:"weather"`
	WeatherSource weather.Source      `json:"weatherSource"`
	LookAngles    *orbit.LookAngles   `json:"lookAngles,omitempty"` // satellites only
}

// surfaceTarget resolves the target position, propagating satellites to t.
// The satellite is nil for fixed targets.
func (s *Server) surfaceTarget(req surfaceRequest, t time.Time) (visibility.Position, *orbit.Satellite, error) {
	switch {
	case req.Target != nil:
		if err := validateCoords(req.Target.Lat, req.Target.Lon); err != nil {
			return visibility.Position{}, nil, err
		}
		return *req.Target, nil, nil
	case req.Object != "":
		obj, err := s.deps.Catalog.Get(req.Object)
		if err != nil {
			return visibility.Position{}, nil, err
		}
		sat, ok := s.deps.Catalog.Satellite(obj.ID)
		if !ok {
			return obj.LegacyPosition(), nil, nil
		}
		pos, err := sat.PositionAt(t)
		return pos, sat, err
	default:
		return visibility.Position{}, nil, badRequest("one of target or object is required")
	}
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	var req surfaceRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateCoords(req.Observer.Lat, req.Observer.Lon); err != nil {
		s.writeError(w, r, err)
		return
	}

	t := s.at(req.Time)
	target, sat, err := s.surfaceTarget(req, t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cond, src, err := s.conditions(r.Context(), req.Weather, req.Observer.Lat, req.Observer.Lon, t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := surfaceResponse{
		SurfaceResult: visibility.SurfaceReport(req.Observer, target, cond, t),
		Target:        target,
		Time:          t,
		Weather:       cond,
		WeatherSource: src,
	}
	if sat != nil {
		la, err := sat.LookAnglesFrom(req.Observer, t)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.LookAngles = &la
	}
	writeJSON(w, http.StatusOK, resp)
}

type crescentResponse struct {
	Date        string     `json:"date"`
	Q           *float64   `json:"q"` // null when no best time exists
	Zone        string     `json:"zone"`
	Label       string     `json:"label"`
	Reason      string     `json:"reason,omitempty"`
	NearNewMoon bool       `json:"nearNewMoon"`
	Sunset      *time.Time `json:"sunset,omitempty"`
	Moonset     *time.Time `json:"moonset,omitempty"`
	BestTime    *time.Time `json:"bestTime,omitempty"`
	ARCV        float64    `json:"arcv"`
	ARCL        float64    `json:"arcl"`
	DAZ         float64    `json:"daz"`
	WidthArcmin float64    `json:"widthArcmin"`
	LagMinutes  float64    `json:"lagMinutes"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func newCrescentResponse(date time.Time, res crescent.Result) crescentResponse {
	out := crescentResponse{
		Date:        date.Format("2006-01-02"),
		Zone:        res.Zone.String(),
		Label:       res.Label,
		Reason:      string(res.Reason),
		NearNewMoon: crescent.IsNearNewMoon(date),
		Sunset:      timePtr(res.Sunset),
		Moonset:     timePtr(res.Moonset),
		BestTime:    timePtr(res.BestTime),
		ARCV:        res.ARCV,
		ARCL:        res.ARCL,
		DAZ:         res.DAZ,
		WidthArcmin: res.WidthArcmin,
		LagMinutes:  res.LagMinutes,
	}
	if res.HasQ() {
		q := res.Q
		out.Q = &q
	}
	return out
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, badRequest("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, badRequest("%s: %v", key, err)
	}
	return v, nil
}

func (s *Server) handleCrescent(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateCoords(lat, lon); err != nil {
		s.writeError(w, r, err)
		return
	}

	day := s.deps.Clock.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			s.writeError(w, r, badRequest("date must be YYYY-MM-DD"))
			return
		}
	}

	local := crescent.LocalDate(day, lon)
	res, hit := s.deps.Crescent.Lookup(lat, lon, local)
	if hit {
		s.deps.Metrics.CacheHit("crescent", "hit")
	} else {
		s.deps.Metrics.CacheHit("crescent", "miss")
	}

	writeJSON(w, http.StatusOK, newCrescentResponse(local, res))
}

type objectsResponse struct {
	Objects []catalog.Object `json:"objects"`
	Count   int              `json:"count"`
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	objs := s.deps.Catalog.All()
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := catalog.Type(raw)
		if !t.Valid() {
			s.writeError(w, r, badRequest("unknown object type %q", raw))
			return
		}
		objs = s.deps.Catalog.ByType(t)
	}
	if objs == nil {
		objs = []catalog.Object{}
	}
	writeJSON(w, http.StatusOK, objectsResponse{Objects: objs, Count: len(objs)})
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	obj, err := s.deps.Catalog.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

type weatherResponse struct {
	Lat          float64            `json:"lat"`
	Lon          float64            `json:"lon"`
	Time         time.Time          `json:"time"`
	Weather      weather.Conditions `json:"weather"`
	Source       weather.Source     `json:"source"`
	VisibilityKm float64            `json:"visibilityKm"`
}

// handleWeather reports the conditions the scorers would use at a point.
// time is optional RFC3339 and defaults to now.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateCoords(lat, lon); err != nil {
		s.writeError(w, r, err)
		return
	}

	t := s.at(nil)
	if raw := r.URL.Query().Get("time"); raw != "" {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			s.writeError(w, r, badRequest("time must be RFC3339"))
			return
		}
	}

	cond, src, err := s.conditions(r.Context(), nil, lat, lon, t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cond = cond.WithExtinction()
	writeJSON(w, http.StatusOK, weatherResponse{
		Lat:          lat,
		Lon:          lon,
		Time:         t,
		Weather:      cond,
		Source:       src,
		VisibilityKm: cond.VisibilityKm(),
	})
}

type weatherCacheStatsResponse struct {
	Enabled          bool    `json:"enabled"`
	Entries          int     `json:"entries"`
	Valid            int     `json:"valid"`
	TTLSeconds       float64 `json:"ttlSeconds"`
	BucketSeconds    float64 `json:"bucketSeconds"`
	NeighborRadiusKm float64 `json:"neighborRadiusKm"`
}

func (s *Server) handleWeatherCacheStats(w http.ResponseWriter, _ *http.Request) {
	cp, ok := s.deps.Weather.(*weather.CachedProvider)
	if !ok {
		writeJSON(w, http.StatusOK, weatherCacheStatsResponse{})
		return
	}
	st := cp.Cache().Stats()
	writeJSON(w, http.StatusOK, weatherCacheStatsResponse{
		Enabled:          true,
		Entries:          st.Entries,
		Valid:            st.Valid,
		TTLSeconds:       st.TTL.Seconds(),
		BucketSeconds:    st.Bucket.Seconds(),
		NeighborRadiusKm: cp.NeighborRadiusKm(),
	})
}
