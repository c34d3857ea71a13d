// Package storage reads the inputs of the insight engine: entity metrics,
// generated insights and observed segment breakdowns.
package storage

import (
	"context"
	"errors"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// EntityRepo reads per-entity metric rows.
type EntityRepo interface {
	GetEntity(ctx context.Context, id string) (*models.EntityMetrics, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.EntityMetrics, error)

	// EachInAccount streams the account's entities to fn without holding
	// them all in memory. Iteration stops at the first error from fn.
	EachInAccount(ctx context.Context, accountID string, fn func(models.EntityMetrics) error) error
}

// InsightRepo reads suggestions produced by the insight pipeline.
type InsightRepo interface {
	GetInsight(ctx context.Context, id string) (*models.GeneratedInsight, error)
	ListByEntity(ctx context.Context, entityID string) ([]models.GeneratedInsight, error)
}

// SegmentRepo reads observed per-dimension breakdowns of an entity.
type SegmentRepo interface {
	RealSegments(ctx context.Context, entityID string) (models.RealSegmentData, error)
}

// NoSegments is a SegmentRepo without observed data; every dimension is
// synthesized.
type NoSegments struct{}

// RealSegments always returns empty data.
func (NoSegments) RealSegments(context.Context, string) (models.RealSegmentData, error) {
	return models.RealSegmentData{}, nil
}
