// Package httpserver exposes the insight engine to the advertiser dashboard.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/database"
	"github.com/radiusdt/vector-insights/internal/insights"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"go.uber.org/zap"
)

const (
	healthPath    = "/health"
	healthTimeout = 2 * time.Second
	maxBodyBytes  = 1 << 20
)

// Dependencies holds everything the server needs.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Reports     *insights.ReportService
	Segments    *insights.SegmentService
	Suggestions *insights.SuggestionService
	Builds      *insights.BuildService
	Statuses    *insights.StatusService

	// Checkers are the live connections reported by the health endpoint.
	Checkers []database.Checker
}

// Server holds the HTTP handlers.
type Server struct {
	reports     *insights.ReportService
	segments    *insights.SegmentService
	suggestions *insights.SuggestionService
	builds      *insights.BuildService
	statuses    *insights.StatusService
	checkers    []database.Checker
	logger      *zap.Logger
}

// NewServer returns the router with the middleware chain applied.
func NewServer(deps *Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		reports:     deps.Reports,
		segments:    deps.Segments,
		suggestions: deps.Suggestions,
		builds:      deps.Builds,
		statuses:    deps.Statuses,
		checkers:    deps.Checkers,
		logger:      logger,
	}
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware(logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(logger, healthPath, cfg.Metrics.Path).Handler)
	r.Use(middleware.NewRateLimitMiddleware(cfg.RateLimit, logger, deps.Metrics).Handler)
	r.Use(middleware.NewAuthMiddleware(cfg.Auth, logger).Handler)

	r.Get(healthPath, s.handleHealth)
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/kpis/derive", s.handleDerive)
		r.Post("/aggregate", s.handleAggregate)
		r.Get("/accounts/{accountID}/summary", s.handleAccountSummary)

		r.Post("/segments/resolve", s.handleResolveSegments)
		r.Get("/entities/{entityID}/segments", s.handleEntitySegments)

		r.Post("/suggestions/map", s.handleMapSuggestion)
		r.Post("/suggestions/apply", s.handleApplySuggestion)

		r.Post("/builds/preview", s.handlePreviewBuild)
		r.Post("/builds", s.handleSubmitBuild)

		r.Post("/entities/{entityID}/toggle", s.handleToggle)
		r.Get("/entities/{entityID}/status", s.handleStatus)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := database.CheckAll(r.Context(), healthTimeout, s.checkers...)
	state, code := "ok", http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			state, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, map[string]any{"status": state, "checks": checks})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// decode reads a JSON body. An empty body leaves v untouched when optional
// is set.
func decode(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// detached drops the request's cancellation. Dispatched mutations are not
// aborted when the client goes away.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
