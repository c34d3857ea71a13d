// Package status owns the optimistic view of entity delivery status while a
// remote status change is pending.
package status

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"go.uber.org/zap"
)

var (
	ErrInFlight       = errors.New("status change already in progress")
	ErrTerminalStatus = errors.New("status cannot be toggled")
	ErrUnknownEntity  = errors.New("entity status unknown")
)

// Mutator performs the remote status change.
type Mutator interface {
	SetStatus(ctx context.Context, entityID string, status models.EntityStatus) error
}

type entry struct {
	status   models.EntityStatus
	inFlight bool
}

// Store holds per-entity display status. Toggle is the only operation that
// flips a status; entities never block one another.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	mutator Mutator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStore creates a store that applies changes through mutator. m may be nil.
func NewStore(mutator Mutator, m *metrics.Metrics, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[string]*entry),
		mutator: mutator,
		metrics: m,
		logger:  logger,
	}
}

// Toggle flips an entity between ACTIVE and PAUSED. observed is the status
// last fetched from the platform; the store's own value wins once it has
// one. The new status is shown immediately and reverted if the remote change
// fails. Caller cancellation does not abort a dispatched change.
func (s *Store) Toggle(ctx context.Context, entityID string, observed models.EntityStatus) (models.EntityStatus, error) {
	s.mu.Lock()
	e, ok := s.entries[entityID]
	if !ok {
		if observed == "" {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: %s", ErrUnknownEntity, entityID)
		}
		e = &entry{status: observed}
		s.entries[entityID] = e
	}
	if e.inFlight {
		s.mu.Unlock()
		s.record("in_flight")
		return "", fmt.Errorf("%w: %s", ErrInFlight, entityID)
	}
	previous := e.status
	if !previous.Toggleable() {
		s.mu.Unlock()
		s.record("terminal")
		return "", fmt.Errorf("%w: %s is %q", ErrTerminalStatus, entityID, previous)
	}
	next := previous.Opposite()
	e.status = next
	e.inFlight = true
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.TogglesInFlight.Inc()
	}
	if err := s.dispatch(ctx, e, entityID, previous, next); err != nil {
		s.logger.Warn("status toggle rolled back",
			zap.String("entity_id", entityID),
			zap.String("status", string(previous)),
			zap.Error(err),
		)
		s.record("rolled_back")
		return previous, fmt.Errorf("set %s to %s: %w", entityID, next, err)
	}

	s.logger.Info("status toggled",
		zap.String("entity_id", entityID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)
	s.record("success")
	return next, nil
}

// dispatch sends the change and settles the entry. The previous status is
// restored on error, and also when the mutator panics; the panic then keeps
// unwinding to the caller.
func (s *Store) dispatch(ctx context.Context, e *entry, entityID string, previous, next models.EntityStatus) (err error) {
	settled := false
	defer func() {
		if s.metrics != nil {
			s.metrics.TogglesInFlight.Dec()
		}
		s.mu.Lock()
		e.inFlight = false
		if err != nil || !settled {
			e.status = previous
		}
		s.mu.Unlock()
		if !settled {
			s.logger.Error("status toggle panicked, rolled back",
				zap.String("entity_id", entityID),
				zap.String("status", string(previous)),
			)
			s.record("rolled_back")
		}
	}()
	err = s.mutator.SetStatus(context.WithoutCancel(ctx), entityID, next)
	settled = true
	return err
}

// IsInFlight reports whether a status change for the entity is pending.
func (s *Store) IsInFlight(entityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entityID]
	return ok && e.inFlight
}

// CurrentDisplayStatus returns the status to show for an entity.
func (s *Store) CurrentDisplayStatus(entityID string) (models.EntityStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entityID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEntity, entityID)
	}
	return e.status, nil
}

// Observe records a freshly fetched status. It is ignored while a change is
// pending so the optimistic value is not overwritten.
func (s *Store) Observe(entityID string, status models.EntityStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entityID]
	if !ok {
		s.entries[entityID] = &entry{status: status}
		return
	}
	if !e.inFlight {
		e.status = status
	}
}

func (s *Store) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordToggle(outcome)
	}
}
