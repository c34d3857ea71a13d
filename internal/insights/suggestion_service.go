package insights

import (
	"context"
	"fmt"

	"github.com/radiusdt/vector-insights/internal/actions"
	"github.com/radiusdt/vector-insights/internal/execution"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/status"
	"github.com/radiusdt/vector-insights/internal/storage"
	"go.uber.org/zap"
)

// ApplyMode selects how a suggestion is applied.
type ApplyMode string

const (
	// ApplyExecute runs the mapped action once.
	ApplyExecute ApplyMode = "execute"
	// ApplyRule stores the suggestion as an automated rule.
	ApplyRule ApplyMode = "rule"
)

// ApplyRequest names a stored insight by ID or carries one inline.
type ApplyRequest struct {
	InsightID  string                   `json:"insight_id,omitempty"`
	Suggestion *models.GeneratedInsight `json:"suggestion,omitempty"`
	Mode       ApplyMode                `json:"mode"`
}

// ApplyResult reports what was sent to the backend.
type ApplyResult struct {
	InsightID string           `json:"insight_id,omitempty"`
	EntityID  string           `json:"entity_id"`
	Mode      ApplyMode        `json:"mode"`
	Action    *models.Action   `json:"action,omitempty"`
	Result    execution.Result `json:"result"`
}

// SuggestionService maps suggestions to actions and applies them.
type SuggestionService struct {
	insights storage.InsightRepo
	executor execution.ActionExecutor
	rules    execution.RuleCreator
	statuses *status.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewSuggestionService creates the service. statuses and m may be nil.
func NewSuggestionService(insights storage.InsightRepo, backend execution.Backend, statuses *status.Store, m *metrics.Metrics, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		insights: insights,
		executor: backend,
		rules:    backend,
		statuses: statuses,
		metrics:  m,
		logger:   logger,
	}
}

// Map returns the action for a suggestion type, or nil for manual review.
func (s *SuggestionService) Map(t models.SuggestionType, currentBudget float64) *models.Action {
	a := actions.Map(t, currentBudget)
	if s.metrics != nil {
		actionType := ""
		if a != nil {
			actionType = string(a.Type)
		}
		label := string(t)
		if !t.Known() {
			label = "other"
		}
		s.metrics.RecordActionMapping(label, actionType)
	}
	return a
}

// Apply executes a suggestion or turns it into a rule.
func (s *SuggestionService) Apply(ctx context.Context, req ApplyRequest) (ApplyResult, error) {
	in, err := s.lookup(ctx, req)
	if err != nil {
		return ApplyResult{}, err
	}

	out := ApplyResult{InsightID: in.ID, EntityID: in.EntityID, Mode: req.Mode}
	action := s.Map(in.SuggestionType, in.CurrentBudget)
	if action != nil {
		action.Parameters.EntityID = in.EntityID
	}
	out.Action = action

	switch req.Mode {
	case ApplyExecute:
		if action == nil {
			return out, fmt.Errorf("%w: %s", ErrManualReview, in.SuggestionType)
		}
		res, err := s.executor.ExecuteAction(ctx, action.Type, action.Parameters)
		out.Result = res
		if err != nil {
			return out, fmt.Errorf("execute %s for %s: %w", action.Type, in.EntityID, err)
		}
		if !res.Success {
			return out, fmt.Errorf("%w: %s", ErrRejected, res.Message)
		}
		if action.Type == models.ActionPause && s.statuses != nil {
			s.statuses.Observe(in.EntityID, models.StatusPaused)
		}

	case ApplyRule:
		err := s.rules.CreateRule(ctx, execution.RuleRequest{
			InsightID:      in.ID,
			EntityID:       in.EntityID,
			Platform:       in.Platform,
			SuggestionType: in.SuggestionType,
			Action:         action,
		})
		if err != nil {
			return out, fmt.Errorf("create rule for %s: %w", in.EntityID, err)
		}
		out.Result = execution.Result{Success: true, Message: "rule created"}

	default:
		return ApplyResult{}, fmt.Errorf("%w: unknown apply mode %q", ErrInvalidInput, req.Mode)
	}

	s.logger.Info("suggestion applied",
		zap.String("insight_id", in.ID),
		zap.String("entity_id", in.EntityID),
		zap.String("suggestion_type", string(in.SuggestionType)),
		zap.String("mode", string(req.Mode)),
	)
	return out, nil
}

func (s *SuggestionService) lookup(ctx context.Context, req ApplyRequest) (*models.GeneratedInsight, error) {
	if req.Suggestion != nil {
		if req.Suggestion.EntityID == "" {
			return nil, fmt.Errorf("%w: suggestion entity id is required", ErrInvalidInput)
		}
		return req.Suggestion, nil
	}
	if req.InsightID == "" {
		return nil, fmt.Errorf("%w: insight id or suggestion is required", ErrInvalidInput)
	}
	return s.insights.GetInsight(ctx, req.InsightID)
}
