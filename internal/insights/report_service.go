package insights

import (
	"context"
	"fmt"

	"github.com/radiusdt/vector-insights/internal/aggregate"
	"github.com/radiusdt/vector-insights/internal/kpi"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/storage"
)

// Aggregation scopes reported to metrics.
const (
	ScopeRequest = "request"
	ScopeAccount = "account"
)

// ReportService derives per-entity KPIs and fleet totals.
type ReportService struct {
	entities storage.EntityRepo
	metrics  *metrics.Metrics
}

// NewReportService creates a report service. m may be nil.
func NewReportService(entities storage.EntityRepo, m *metrics.Metrics) *ReportService {
	return &ReportService{entities: entities, metrics: m}
}

// Derive computes the ratios of one entity.
func (s *ReportService) Derive(m models.EntityMetrics) kpi.Derived {
	return kpi.Derive(m)
}

// Aggregate folds the given entities.
func (s *ReportService) Aggregate(entities []models.EntityMetrics) aggregate.Totals {
	t := aggregate.Fold(entities)
	s.record(ScopeRequest, t.Entities)
	return t
}

// AccountSummary is the aggregate of every entity stored for an account.
type AccountSummary struct {
	AccountID string `json:"account_id"`
	aggregate.Totals
}

// AccountSummary streams the account's entities into an accumulator.
func (s *ReportService) AccountSummary(ctx context.Context, accountID string) (AccountSummary, error) {
	if accountID == "" {
		return AccountSummary{}, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}

	var acc aggregate.Accumulator
	err := s.entities.EachInAccount(ctx, accountID, func(m models.EntityMetrics) error {
		acc.Add(m)
		return nil
	})
	if err != nil {
		return AccountSummary{}, fmt.Errorf("summarize account %s: %w", accountID, err)
	}

	t := acc.Totals()
	s.record(ScopeAccount, t.Entities)
	return AccountSummary{AccountID: accountID, Totals: t}, nil
}

func (s *ReportService) record(scope string, n int) {
	if s.metrics != nil {
		s.metrics.RecordAggregation(scope, n)
	}
}
