package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/radiusdt/vector-insights/internal/builder"
	"github.com/radiusdt/vector-insights/internal/execution"
	"github.com/radiusdt/vector-insights/internal/insights"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/segments"
	"github.com/radiusdt/vector-insights/internal/status"
	"github.com/radiusdt/vector-insights/internal/storage"
	"go.uber.org/zap"
)

// ---- KPIs ----

func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	var m models.EntityMetrics
	if err := decode(w, r, &m, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.reports.Derive(m))
}

type aggregateRequest struct {
	Entities []models.EntityMetrics `json:"entities"`
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if err := decode(w, r, &req, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.reports.Aggregate(req.Entities))
}

func (s *Server) handleAccountSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.reports.AccountSummary(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ---- Segments ----

type resolveRequest struct {
	Entity   models.EntityMetrics   `json:"entity"`
	Platform models.Platform        `json:"platform"`
	Real     models.RealSegmentData `json:"real"`
}

func (s *Server) handleResolveSegments(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(w, r, &req, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Platform != "" {
		p, err := models.ParsePlatform(string(req.Platform))
		if err != nil {
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Platform = p
	}
	res, err := s.segments.Resolve(r.Context(), req.Entity, req.Platform, req.Real)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEntitySegments(w http.ResponseWriter, r *http.Request) {
	res, err := s.segments.EntitySegments(r.Context(), chi.URLParam(r, "entityID"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---- Suggestions ----

type mapRequest struct {
	SuggestionType models.SuggestionType `json:"suggestion_type"`
	CurrentBudget  float64               `json:"current_budget"`
}

type mapResponse struct {
	SuggestionType models.SuggestionType `json:"suggestion_type"`
	Action         *models.Action        `json:"action"`
}

func (s *Server) handleMapSuggestion(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if err := decode(w, r, &req, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.SuggestionType == "" {
		s.errorResponse(w, "suggestion_type is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{
		SuggestionType: req.SuggestionType,
		Action:         s.suggestions.Map(req.SuggestionType, req.CurrentBudget),
	})
}

func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var req insights.ApplyRequest
	if err := decode(w, r, &req, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	res, err := s.suggestions.Apply(detached(r), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---- Builds ----

func (s *Server) handlePreviewBuild(w http.ResponseWriter, r *http.Request) {
	var req insights.BuildRequest
	if err := decode(w, r, &req, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	cfg, err := s.builds.Preview(r.Context(), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSubmitBuild(w http.ResponseWriter, r *http.Request) {
	var req insights.BuildRequest
	if err := decode(w, r, &req, false); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	res, err := s.builds.Submit(detached(r), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ---- Status ----

type toggleRequest struct {
	ObservedStatus models.EntityStatus `json:"observed_status,omitempty"`
}

type toggleFailure struct {
	Error  string              `json:"error"`
	Status models.EntityStatus `json:"status,omitempty"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decode(w, r, &req, true); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	entityID := chi.URLParam(r, "entityID")
	view, err := s.statuses.Toggle(detached(r), entityID, req.ObservedStatus)
	if err != nil {
		code := statusCode(err)
		s.logFailure(r, code, err)
		// A rolled-back toggle still reports the status now shown.
		writeJSON(w, code, toggleFailure{Error: err.Error(), Status: view.Status})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.statuses.Status(r.Context(), chi.URLParam(r, "entityID"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ---- Errors ----

func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	s.logFailure(r, code, err)
	s.errorResponse(w, err.Error(), code)
}

func (s *Server) logFailure(r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err))
	}
}

// statusCode maps service errors to HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, insights.ErrInvalidInput),
		errors.Is(err, segments.ErrUnsupportedPlatform),
		errors.Is(err, builder.ErrEmptySelection),
		errors.Is(err, builder.ErrUnknownBuildType),
		errors.Is(err, builder.ErrUnknownBudgetMode),
		errors.Is(err, builder.ErrUnknownTopology),
		errors.Is(err, builder.ErrInvalidBudget),
		errors.Is(err, builder.ErrMissingSource):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, status.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, status.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, status.ErrTerminalStatus), errors.Is(err, insights.ErrManualReview):
		return http.StatusUnprocessableEntity
	case errors.Is(err, execution.ErrBackend), errors.Is(err, insights.ErrRejected):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
