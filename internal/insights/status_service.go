package insights

import (
	"context"
	"errors"

	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/status"
	"github.com/radiusdt/vector-insights/internal/storage"
)

// StatusView is the status shown for an entity.
type StatusView struct {
	EntityID string              `json:"entity_id"`
	Status   models.EntityStatus `json:"status"`
	InFlight bool                `json:"in_flight"`
}

// StatusService fronts the status store, seeding it from storage the first
// time an entity is seen.
type StatusService struct {
	store    *status.Store
	entities storage.EntityRepo
}

// NewStatusService creates the service. entities may be nil, in which case
// callers must pass the observed status.
func NewStatusService(store *status.Store, entities storage.EntityRepo) *StatusService {
	return &StatusService{store: store, entities: entities}
}

// Toggle flips the entity between ACTIVE and PAUSED. observed may be empty
// when the caller has no fresh status.
func (s *StatusService) Toggle(ctx context.Context, entityID string, observed models.EntityStatus) (StatusView, error) {
	if observed == "" {
		if err := s.seed(ctx, entityID); err != nil {
			return StatusView{EntityID: entityID}, err
		}
	}
	st, err := s.store.Toggle(ctx, entityID, observed)
	return StatusView{EntityID: entityID, Status: st, InFlight: s.store.IsInFlight(entityID)}, err
}

// Status returns the current display status.
func (s *StatusService) Status(ctx context.Context, entityID string) (StatusView, error) {
	if err := s.seed(ctx, entityID); err != nil {
		return StatusView{EntityID: entityID}, err
	}
	st, err := s.store.CurrentDisplayStatus(entityID)
	if err != nil {
		return StatusView{EntityID: entityID}, err
	}
	return StatusView{EntityID: entityID, Status: st, InFlight: s.store.IsInFlight(entityID)}, nil
}

func (s *StatusService) seed(ctx context.Context, entityID string) error {
	if _, err := s.store.CurrentDisplayStatus(entityID); !errors.Is(err, status.ErrUnknownEntity) {
		return nil
	}
	if s.entities == nil {
		return nil
	}
	m, err := s.entities.GetEntity(ctx, entityID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if m.Status != "" {
		s.store.Observe(entityID, m.Status)
	}
	return nil
}
