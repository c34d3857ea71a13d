package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/vector-insights/internal/models"
)

const entityColumns = `
	id, COALESCE(name, ''), COALESCE(level, ''), platform, COALESCE(status, ''), budget,
	impressions, clicks, spend, conversions, conversion_value, roas,
	cogs, linked_product_count, pixel_attributed, utm_attributed, capi_enabled`

const insightColumns = `
	id, entity_id, COALESCE(entity_name, ''), COALESCE(entity_level, ''), platform,
	suggestion_type, COALESCE(title, ''), COALESCE(message, ''), current_budget, created_at`

// PostgresEntityRepo implements EntityRepo and InsightRepo over the
// entity_metrics and generated_insights tables.
type PostgresEntityRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresEntityRepo creates a repository on an open pool.
func NewPostgresEntityRepo(pool *pgxpool.Pool) *PostgresEntityRepo {
	return &PostgresEntityRepo{pool: pool}
}

// GetEntity returns the entity's latest metrics row.
func (r *PostgresEntityRepo) GetEntity(ctx context.Context, id string) (*models.EntityMetrics, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entityColumns+` FROM entity_metrics WHERE id = $1`, id)
	m, err := scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &m, nil
}

// ListByAccount returns the account's entities ordered by ID.
func (r *PostgresEntityRepo) ListByAccount(ctx context.Context, accountID string) ([]models.EntityMetrics, error) {
	var out []models.EntityMetrics
	err := r.EachInAccount(ctx, accountID, func(m models.EntityMetrics) error {
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EachInAccount streams the account's entities to fn without holding the
// whole result in memory.
func (r *PostgresEntityRepo) EachInAccount(ctx context.Context, accountID string, fn func(models.EntityMetrics) error) error {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entityColumns+`
		FROM entity_metrics WHERE account_id = $1 ORDER BY id
	`, accountID)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanEntity(rows)
		if err != nil {
			return fmt.Errorf("failed to scan entity: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GetInsight returns a generated insight by ID.
func (r *PostgresEntityRepo) GetInsight(ctx context.Context, id string) (*models.GeneratedInsight, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+insightColumns+` FROM generated_insights WHERE id = $1`, id)
	in, err := scanInsight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insight %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return &in, nil
}

// ListByEntity returns the entity's insights, newest first.
func (r *PostgresEntityRepo) ListByEntity(ctx context.Context, entityID string) ([]models.GeneratedInsight, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+insightColumns+`
		FROM generated_insights WHERE entity_id = $1 ORDER BY created_at DESC, id
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var out []models.GeneratedInsight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func scanEntity(row pgx.Row) (models.EntityMetrics, error) {
	var (
		m                      models.EntityMetrics
		level, platform, state string
		linkedProducts         int32
	)
	err := row.Scan(
		&m.ID, &m.Name, &level, &platform, &state, &m.Budget,
		&m.Impressions, &m.Clicks, &m.Spend, &m.Conversions, &m.ConversionValue, &m.ROAS,
		&m.COGS, &linkedProducts, &m.PixelAttributed, &m.UTMAttributed, &m.CAPIEnabled,
	)
	if err != nil {
		return m, err
	}
	m.Level = models.EntityLevel(level)
	m.Platform = models.Platform(platform)
	m.Status = models.EntityStatus(state)
	m.LinkedProductCount = int(linkedProducts)
	return m, nil
}

func scanInsight(row pgx.Row) (models.GeneratedInsight, error) {
	var (
		in                           models.GeneratedInsight
		level, platform, suggestType string
	)
	err := row.Scan(
		&in.ID, &in.EntityID, &in.EntityName, &level, &platform,
		&suggestType, &in.Title, &in.Message, &in.CurrentBudget, &in.CreatedAt,
	)
	if err != nil {
		return in, err
	}
	in.EntityLevel = models.EntityLevel(level)
	in.Platform = models.Platform(platform)
	in.SuggestionType = models.SuggestionType(suggestType)
	return in, nil
}
