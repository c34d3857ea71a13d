package segments

import (
	"github.com/radiusdt/vector-insights/internal/kpi"
	"github.com/radiusdt/vector-insights/internal/models"
)

// Normalize fills the derivable fields of observed records so they share the
// synthetic shape. A missing contribution becomes the record's conversion
// share of the dimension, or its spend share when the dimension has no
// conversions. The input slice is not modified.
func Normalize(records []models.SegmentRecord) []models.SegmentRecord {
	if len(records) == 0 {
		return nil
	}

	var totalConversions int64
	var totalSpend float64
	for _, r := range records {
		totalConversions += r.Conversions
		totalSpend += r.Spend
	}

	out := make([]models.SegmentRecord, len(records))
	for i, r := range records {
		if r.Contribution <= 0 {
			if totalConversions > 0 {
				r.Contribution = round2(kpi.SafeDiv(float64(r.Conversions), float64(totalConversions)) * 100)
			} else {
				r.Contribution = round2(kpi.SafeDiv(r.Spend, totalSpend) * 100)
			}
		}
		if r.CPA == 0 {
			r.CPA = round2(kpi.CPA(r.Spend, r.Conversions))
		}
		if r.Revenue == nil {
			revenue := round2(r.Spend * r.ROAS)
			r.Revenue = &revenue
		}
		if r.SuggestedBidAdjustment != nil {
			v := *r.SuggestedBidAdjustment
			r.SuggestedBidAdjustment = &v
		}
		r.Synthetic = false
		out[i] = r
	}
	return out
}
