package segments

import (
	"math"

	"github.com/radiusdt/vector-insights/internal/kpi"
	"github.com/radiusdt/vector-insights/internal/models"
)

// Synthesize estimates a dimension breakdown from the entity's own totals.
// The output depends only on the entity counters, the platform and the
// dimension, so repeated calls return identical records.
//
// Conversions are floored per segment and never renormalized, so their sum
// may fall short of the entity total by up to one per segment.
func Synthesize(m models.EntityMetrics, p models.Platform, d models.Dimension) []models.SegmentRecord {
	rows := tableFor(p, d)
	if len(rows) == 0 {
		return nil
	}

	entityROAS := kpi.ROAS(m.Revenue(), m.Spend)
	out := make([]models.SegmentRecord, 0, len(rows))
	for _, row := range rows {
		spend := round2(m.Spend * row.Share / 100)
		roas := round2(entityROAS * row.Multiplier)

		var conversions int64
		if row.Multiplier > 0 {
			conversions = int64(math.Floor(float64(m.Conversions) * row.Share / 100))
		}
		revenue := round2(spend * roas)

		out = append(out, models.SegmentRecord{
			Label:        row.Label,
			ROAS:         roas,
			Conversions:  conversions,
			CPA:          round2(kpi.CPA(spend, conversions)),
			Spend:        spend,
			Revenue:      &revenue,
			Contribution: row.Share,
			Synthetic:    true,
		})
	}
	return out
}

// SynthesizeAll builds every dimension the platform exposes.
func SynthesizeAll(m models.EntityMetrics, p models.Platform) map[models.Dimension][]models.SegmentRecord {
	dims := DimensionsFor(p)
	out := make(map[models.Dimension][]models.SegmentRecord, len(dims))
	for _, d := range dims {
		out[d] = Synthesize(m, p, d)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
