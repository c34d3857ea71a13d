package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/radiusdt/vector-insights/internal/bidding"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/segments"
	"github.com/radiusdt/vector-insights/internal/storage"
	"go.uber.org/zap"
)

// SegmentService resolves segment breakdowns and annotates them with bid
// adjustment suggestions.
type SegmentService struct {
	entities   storage.EntityRepo
	observed   storage.SegmentRepo
	reconciler *segments.Reconciler
	logger     *zap.Logger
}

// NewSegmentService creates the service. A nil observed repo means every
// dimension is synthesized.
func NewSegmentService(entities storage.EntityRepo, observed storage.SegmentRepo, reconciler *segments.Reconciler, logger *zap.Logger) *SegmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observed == nil {
		observed = storage.NoSegments{}
	}
	return &SegmentService{entities: entities, observed: observed, reconciler: reconciler, logger: logger}
}

// Resolve builds the breakdown of every dimension of platform p. An empty p
// falls back to the entity's own platform.
func (s *SegmentService) Resolve(ctx context.Context, m models.EntityMetrics, p models.Platform, real models.RealSegmentData) (*segments.Resolution, error) {
	if p == "" {
		p = m.Platform
	}
	res, err := s.reconciler.Resolve(ctx, m, p, real)
	if errors.Is(err, segments.ErrUnsupportedPlatform) {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidInput, err, p)
	}
	if err != nil {
		return nil, err
	}
	for i := range res.Dimensions {
		ds := &res.Dimensions[i]
		ds.Records = bidding.Annotate(ds.Records, ds.Dimension)
	}
	return res, nil
}

// EntitySegments resolves a stored entity. Observed breakdowns that cannot be
// read are skipped and every dimension is synthesized instead.
func (s *SegmentService) EntitySegments(ctx context.Context, entityID string) (*segments.Resolution, error) {
	m, err := s.entities.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	real, err := s.observed.RealSegments(ctx, entityID)
	if err != nil {
		s.logger.Warn("observed segments unavailable, synthesizing",
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		real = models.RealSegmentData{}
	}

	return s.Resolve(ctx, *m, m.Platform, real)
}
