package storage

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/radiusdt/vector-insights/internal/models"
)

// ClickHouseSegmentRepo reads observed breakdowns from a ReplacingMergeTree
// table keyed by (entity_id, dimension, label).
type ClickHouseSegmentRepo struct {
	conn  driver.Conn
	table string
}

// NewClickHouseSegmentRepo creates a repository reading from table.
func NewClickHouseSegmentRepo(conn driver.Conn, table string) *ClickHouseSegmentRepo {
	return &ClickHouseSegmentRepo{conn: conn, table: table}
}

// RealSegments returns the latest breakdown rows of every real-data
// dimension. Rows of other dimensions are ignored.
func (r *ClickHouseSegmentRepo) RealSegments(ctx context.Context, entityID string) (models.RealSegmentData, error) {
	query := fmt.Sprintf(`
		SELECT dimension, label, spend, revenue, conversions, roas, contribution, bid_adjustment
		FROM %s FINAL
		WHERE entity_id = ?
		ORDER BY dimension, spend DESC, label
	`, r.table)

	var data models.RealSegmentData
	rows, err := r.conn.Query(ctx, query, entityID)
	if err != nil {
		return data, fmt.Errorf("failed to query segment breakdowns: %w", err)
	}
	defer rows.Close()

	grouped := make(map[models.Dimension][]models.SegmentRecord)
	for rows.Next() {
		var (
			dimension   string
			rec         models.SegmentRecord
			conversions uint64
		)
		if err := rows.Scan(
			&dimension, &rec.Label, &rec.Spend, &rec.Revenue, &conversions,
			&rec.ROAS, &rec.Contribution, &rec.PlatformBidAdjustment,
		); err != nil {
			return data, fmt.Errorf("failed to scan segment breakdown: %w", err)
		}
		rec.Conversions = int64(conversions)
		d := models.Dimension(dimension)
		grouped[d] = append(grouped[d], rec)
	}
	if err := rows.Err(); err != nil {
		return data, fmt.Errorf("failed to read segment breakdowns: %w", err)
	}

	for _, d := range models.RealDimensions {
		data.Set(d, grouped[d])
	}
	return data, nil
}
