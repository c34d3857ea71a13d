package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/radiusdt/vector-insights/internal/models"
)

// InMemoryEntityRepo is an EntityRepo and InsightRepo held in maps. The
// server falls back to it when PostgreSQL is not configured.
type InMemoryEntityRepo struct {
	mu        sync.RWMutex
	entities  map[string]models.EntityMetrics
	accountOf map[string]string
	insights  map[string]models.GeneratedInsight
}

// NewInMemoryEntityRepo creates an empty repository.
func NewInMemoryEntityRepo() *InMemoryEntityRepo {
	return &InMemoryEntityRepo{
		entities:  make(map[string]models.EntityMetrics),
		accountOf: make(map[string]string),
		insights:  make(map[string]models.GeneratedInsight),
	}
}

// PutEntity stores an entity under an account, replacing any previous row.
func (r *InMemoryEntityRepo) PutEntity(accountID string, m models.EntityMetrics) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[m.ID] = m
	r.accountOf[m.ID] = accountID
	return nil
}

// PutInsight stores a generated insight.
func (r *InMemoryEntityRepo) PutInsight(in models.GeneratedInsight) error {
	if in.ID == "" {
		return fmt.Errorf("insight id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insights[in.ID] = in
	return nil
}

// GetEntity returns a copy of the entity.
func (r *InMemoryEntityRepo) GetEntity(_ context.Context, id string) (*models.EntityMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	return &m, nil
}

// ListByAccount returns the account's entities ordered by ID.
func (r *InMemoryEntityRepo) ListByAccount(_ context.Context, accountID string) ([]models.EntityMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.EntityMetrics
	for id, acct := range r.accountOf {
		if acct == accountID {
			out = append(out, r.entities[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EachInAccount calls fn for each of the account's entities in ID order and
// stops at the first error.
func (r *InMemoryEntityRepo) EachInAccount(ctx context.Context, accountID string, fn func(models.EntityMetrics) error) error {
	entities, err := r.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, m := range entities {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// GetInsight returns a copy of the insight.
func (r *InMemoryEntityRepo) GetInsight(_ context.Context, id string) (*models.GeneratedInsight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.insights[id]
	if !ok {
		return nil, fmt.Errorf("insight %s: %w", id, ErrNotFound)
	}
	return &in, nil
}

// ListByEntity returns the entity's insights, newest first.
func (r *InMemoryEntityRepo) ListByEntity(_ context.Context, entityID string) ([]models.GeneratedInsight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.GeneratedInsight
	for _, in := range r.insights {
		if in.EntityID == entityID {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InMemorySegmentRepo holds observed breakdowns keyed by entity.
type InMemorySegmentRepo struct {
	mu   sync.RWMutex
	data map[string]models.RealSegmentData
}

// NewInMemorySegmentRepo creates an empty repository.
func NewInMemorySegmentRepo() *InMemorySegmentRepo {
	return &InMemorySegmentRepo{data: make(map[string]models.RealSegmentData)}
}

// Put replaces the breakdown of one dimension of an entity.
func (r *InMemorySegmentRepo) Put(entityID string, d models.Dimension, records []models.SegmentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := r.data[entityID]
	data.Set(d, append([]models.SegmentRecord(nil), records...))
	r.data[entityID] = data
}

// RealSegments returns the stored breakdowns. Unknown entities have none.
func (r *InMemorySegmentRepo) RealSegments(_ context.Context, entityID string) (models.RealSegmentData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[entityID], nil
}
