// Package server exposes the zone registry, pollution analysis, and
// geometric zone operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/config"
	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/pollution"
	"github.com/terrawatch/envzone/internal/store"
	"github.com/terrawatch/envzone/internal/zoneops"
)

// Server wires the HTTP API to the store, analyzer, and zone operator.
type Server struct {
	store    store.Store
	analyzer *pollution.Analyzer
	operator *zoneops.Operator
	cfg      config.ServerConfig
}

// New creates a Server.
func New(st store.Store, analyzer *pollution.Analyzer, operator *zoneops.Operator, cfg config.ServerConfig) *Server {
	return &Server{store: st, analyzer: analyzer, operator: operator, cfg: cfg}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/zones", func(r chi.Router) {
		r.Get("/", s.handleListZones)
		r.Post("/", s.handleCreateZone)
		r.Route("/{zoneID}", func(r chi.Router) {
			r.Get("/", s.handleGetZone)
			r.Delete("/", s.handleDeleteZone)
			r.Get("/analysis", s.handleAnalyzeZone)
			r.Get("/sensors", s.handleListSensors)
			r.Post("/sensors", s.handleCreateSensor)
		})
	})

	r.Post("/sensors/{sensorID}/readings", s.handleAddReading)
	r.Post("/operations", s.handleOperation)

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.Int("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.store.ListZones(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list zones failed", err)
		return
	}
	if zones == nil {
		zones = []model.Zone{}
	}
	respondJSON(w, http.StatusOK, zones)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var zone model.Zone
	if err := json.NewDecoder(r.Body).Decode(&zone); err != nil {
		respondError(w, http.StatusBadRequest, "malformed zone body", err)
		return
	}
	if zone.Name == "" || zone.Geometry.IsZero() {
		respondError(w, http.StatusBadRequest, "zone requires a name and a geometry", nil)
		return
	}

	created, err := s.store.CreateZone(r.Context(), zone)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create zone failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zone, err := s.store.GetZone(r.Context(), chi.URLParam(r, "zoneID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "get zone failed", err)
		return
	}
	if zone == nil {
		respondError(w, http.StatusNotFound, "zone not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, zone)
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	if err := s.store.DeleteZone(r.Context(), zoneID); err != nil {
		respondError(w, http.StatusNotFound, "zone not found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyzeZone runs a fresh pollution analysis over the zone's
// sensors and persists the snapshot.
func (s *Server) handleAnalyzeZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zoneID := chi.URLParam(r, "zoneID")

	zone, err := s.store.GetZone(ctx, zoneID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "get zone failed", err)
		return
	}
	if zone == nil {
		respondError(w, http.StatusNotFound, "zone not found", nil)
		return
	}

	sensors, err := s.store.ListSensors(ctx, zoneID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list sensors failed", err)
		return
	}

	analysis := s.analyzer.AnalyzeZone(ctx, zoneID, sensors)
	if err := s.store.SaveAnalysis(ctx, analysis); err != nil {
		zap.L().Warn("server: saving analysis snapshot failed",
			zap.String("zone_id", zoneID),
			zap.Error(err),
		)
	}
	respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := s.store.ListSensors(r.Context(), chi.URLParam(r, "zoneID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list sensors failed", err)
		return
	}
	if sensors == nil {
		sensors = []model.Sensor{}
	}
	respondJSON(w, http.StatusOK, sensors)
}

func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var sensor model.Sensor
	if err := json.NewDecoder(r.Body).Decode(&sensor); err != nil {
		respondError(w, http.StatusBadRequest, "malformed sensor body", err)
		return
	}
	if !sensor.Type.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown sensor type %q", sensor.Type), nil)
		return
	}
	sensor.ZoneID = chi.URLParam(r, "zoneID")

	created, err := s.store.CreateSensor(r.Context(), sensor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create sensor failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleAddReading(w http.ResponseWriter, r *http.Request) {
	var reading model.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		respondError(w, http.StatusBadRequest, "malformed reading body", err)
		return
	}

	sensorID := chi.URLParam(r, "sensorID")
	if err := s.store.AddReading(r.Context(), sensorID, reading); err != nil {
		respondError(w, http.StatusInternalServerError, "add reading failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// operationRequest is the body of POST /operations.
type operationRequest struct {
	Operation string   `json:"operation"`
	ZoneIDs   []string `json:"zoneIds"`
}

// handleOperation loads the referenced zones in order and runs the
// requested geometric operation. A nil operation result (disjoint
// intersection, bad arity, degenerate geometry) maps to 422.
func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed operation body", err)
		return
	}

	ctx := r.Context()
	zones := make([]model.Zone, 0, len(req.ZoneIDs))
	for _, zoneID := range req.ZoneIDs {
		zone, err := s.store.GetZone(ctx, zoneID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "get zone failed", err)
			return
		}
		if zone == nil {
			respondError(w, http.StatusNotFound, fmt.Sprintf("zone %s not found", zoneID), nil)
			return
		}
		zones = append(zones, *zone)
	}

	result := s.operator.Perform(zoneops.Operation(req.Operation), zones)
	if result == nil {
		respondError(w, http.StatusUnprocessableEntity, "operation produced no result", nil)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encoding response failed", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		zap.L().Warn("server: request failed",
			zap.Int("status", status),
			zap.String("msg", msg),
			zap.Error(err),
		)
	}
	respondJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}
