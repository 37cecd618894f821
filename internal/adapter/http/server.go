package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/geomap"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/geo"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNearbyCount = 5

// AnalysisService is the pipeline as seen by the HTTP layer.
type AnalysisService interface {
	CheckReadiness(ctx context.Context) error
	Latest() (domain.Analysis, bool)
	RunOnce(ctx context.Context) (domain.Analysis, error)
}

// Server exposes health, readiness, metrics, and analysis HTTP endpoints.
type Server struct {
	httpServer *http.Server
	service    AnalysisService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health and /api/v1 routes.
func NewServer(addr string, service AnalysisService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(service))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/stations", s.handleStations)
	mux.HandleFunc("GET /api/v1/stations/nearby", s.handleNearby)
	mux.HandleFunc("GET /api/v1/map", s.handleMap)
	mux.HandleFunc("GET /api/v1/heatmap", s.handleHeatmap)
	mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// latest writes a 503 and returns false when no analysis is available yet.
func (s *Server) latest(w http.ResponseWriter) (domain.Analysis, bool) {
	a, ok := s.service.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no analysis available yet")
	}
	return a, ok
}

type summaryResponse struct {
	Reference  domain.ReferencePoint `json:"reference"`
	AnalyzedAt time.Time             `json:"analyzed_at"`
	Summary    domain.Summary        `json:"summary"`
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summaryResponse{
		Reference:  a.Reference,
		AnalyzedAt: a.AnalyzedAt,
		Summary:    a.Summary,
	})
}

type stationsResponse struct {
	AnalyzedAt time.Time                `json:"analyzed_at"`
	Count      int                      `json:"count"`
	Stations   []domain.EnrichedStation `json:"stations"`
}

// handleStations lists located stations nearest first, optionally filtered by
// ?band= (distance band) and ?level= (coarse AQI level).
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	band := domain.DistanceBand(r.URL.Query().Get("band"))
	level := domain.AQILevel(r.URL.Query().Get("level"))

	stations := make([]domain.EnrichedStation, 0, len(a.Stations))
	for _, st := range a.Stations {
		if band != "" && st.DistanceBand != band {
			continue
		}
		if level != "" && st.AQILevel != level {
			continue
		}
		stations = append(stations, st)
	}
	sharedobs.WriteJSON(w, http.StatusOK, stationsResponse{
		AnalyzedAt: a.AnalyzedAt,
		Count:      len(stations),
		Stations:   stations,
	})
}

type nearbyResponse struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Count     int         `json:"count"`
	Matches   []geo.Match `json:"matches"`
}

// handleNearby answers ?lat=&lon= with either the k nearest stations (?k=,
// default 5) or every station within ?radius_km=.
func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required numeric parameters")
		return
	}

	a, ok := s.latest(w)
	if !ok {
		return
	}
	idx := geo.NewStationIndex(a.Stations)

	var (
		matches []geo.Match
		err     error
	)
	if v := q.Get("radius_km"); v != "" {
		radius, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "radius_km must be numeric")
			return
		}
		matches, err = idx.WithinRadius(lat, lon, radius)
	} else {
		k := defaultNearbyCount
		if v := q.Get("k"); v != "" {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				writeError(w, http.StatusBadRequest, "k must be an integer")
				return
			}
			k = n
		}
		matches, err = idx.Nearest(lat, lon, k)
	}
	if err != nil {
		if errors.Is(err, geo.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		matches = []geo.Match{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, nearbyResponse{
		Latitude:  lat,
		Longitude: lon,
		Count:     len(matches),
		Matches:   matches,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	data, err := geomap.Encode(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // best-effort response body
}

// handleHeatmap returns [lat, lon, aqi] samples and their mean center.
func (s *Server) handleHeatmap(w http.ResponseWriter, _ *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, geomap.NewHeatmap(a))
}

type refreshResponse struct {
	AnalyzedAt time.Time `json:"analyzed_at"`
	Count      int       `json:"count"`
	Total      int       `json:"total_stations"`
	LoadError  string    `json:"load_error,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.RunOnce(r.Context())
	if err != nil && len(a.Stations) == 0 {
		s.logger.Error("refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	resp := refreshResponse{
		AnalyzedAt: a.AnalyzedAt,
		Count:      a.Summary.Count,
		Total:      a.Summary.TotalStations,
	}
	if err != nil {
		resp.LoadError = err.Error()
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
