package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/radiusdt/vector-insights/internal/builder"
	"github.com/radiusdt/vector-insights/internal/execution"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/storage"
	"go.uber.org/zap"
)

// BuildRequest is a queue of selected segments plus the user's choices.
type BuildRequest struct {
	Entity  builder.EntityContext `json:"entity"`
	Items   []models.QueuedItem   `json:"items"`
	Choices builder.Choices       `json:"choices"`
}

// BuildResult is the submitted configuration and the backend's answer.
type BuildResult struct {
	Configuration models.BuildConfiguration `json:"configuration"`
	Result        execution.Result          `json:"result"`
}

// BuildService assembles segmented campaign builds and submits them.
type BuildService struct {
	entities storage.EntityRepo
	builder  execution.CampaignBuilder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      Clock
}

// NewBuildService creates the service. entities and m may be nil.
func NewBuildService(entities storage.EntityRepo, b execution.CampaignBuilder, m *metrics.Metrics, logger *zap.Logger) *BuildService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildService{entities: entities, builder: b, metrics: m, logger: logger, now: time.Now}
}

// Preview assembles the configuration without submitting it. Missing entity
// details are read from storage when the entity is known.
func (s *BuildService) Preview(ctx context.Context, req BuildRequest) (models.BuildConfiguration, error) {
	entity, err := s.complete(ctx, req.Entity)
	if err != nil {
		return models.BuildConfiguration{}, err
	}

	queue, err := builder.NewQueue(req.Items...)
	if err != nil {
		return models.BuildConfiguration{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	cfg, err := builder.Assemble(queue.Items(), req.Choices, entity, s.now())
	if err != nil {
		return models.BuildConfiguration{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordBuildAssembled(string(cfg.Platform), string(cfg.BuildType))
	}
	return cfg, nil
}

// Submit assembles the configuration and hands it to the backend once.
func (s *BuildService) Submit(ctx context.Context, req BuildRequest) (BuildResult, error) {
	cfg, err := s.Preview(ctx, req)
	if err != nil {
		return BuildResult{}, err
	}

	res, err := s.builder.BuildSegmentedCampaign(ctx, cfg)
	out := BuildResult{Configuration: cfg, Result: res}
	success := err == nil && res.Success
	if s.metrics != nil {
		s.metrics.RecordBuildSubmitted(string(cfg.Platform), success)
	}
	if err != nil {
		return out, fmt.Errorf("submit build %q: %w", cfg.NewName, err)
	}
	if !res.Success {
		return out, fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}

	s.logger.Info("build submitted",
		zap.String("name", cfg.NewName),
		zap.String("platform", string(cfg.Platform)),
		zap.String("build_type", string(cfg.BuildType)),
		zap.Int("segments", len(cfg.SelectedSegments)),
		zap.Float64("budget", cfg.Budget),
	)
	return out, nil
}

// complete fills missing entity details from storage and normalizes the
// platform name so "Google" and "meta" get their platform's defaults.
func (s *BuildService) complete(ctx context.Context, e builder.EntityContext) (builder.EntityContext, error) {
	if s.entities != nil && e.EntityID != "" && (e.EntityName == "" || e.Platform == "" || e.CurrentBudget <= 0) {
		m, err := s.entities.GetEntity(ctx, e.EntityID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return e, err
		default:
			if e.EntityName == "" {
				e.EntityName = m.Name
			}
			if e.Platform == "" {
				e.Platform = m.Platform
			}
			if e.CurrentBudget <= 0 {
				e.CurrentBudget = m.Budget
			}
		}
	}
	if e.Platform != "" {
		p, err := models.ParsePlatform(string(e.Platform))
		if err != nil {
			return e, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		e.Platform = p
	}
	return e, nil
}
