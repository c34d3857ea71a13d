// Package kpi derives performance ratios from raw ad counters.
//
// Every function is total: a zero denominator yields 0, and values that
// cannot be derived are reported through the Known flags of Derived rather
// than through errors.
package kpi

import "github.com/radiusdt/vector-insights/internal/models"

// Derived holds the ratios computed for a single entity.
type Derived struct {
	CTR     float64 `json:"ctr"`
	CVR     float64 `json:"cvr"`
	CPA     float64 `json:"cpa"`
	ROAS    float64 `json:"roas"`
	Revenue float64 `json:"revenue"`

	ProfitKnown  bool    `json:"profit_known"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	NetROAS      float64 `json:"net_roas"`

	BreakEvenKnown bool    `json:"break_even_known"`
	BreakEvenROAS  float64 `json:"break_even_roas"`
}

// SafeDiv returns a/b, or 0 when b is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// CTR is clicks per impression, as a percentage.
func CTR(clicks, impressions int64) float64 {
	return SafeDiv(float64(clicks), float64(impressions)) * 100
}

// CVR is conversions per click, as a percentage.
func CVR(conversions, clicks int64) float64 {
	return SafeDiv(float64(conversions), float64(clicks)) * 100
}

// CPA is spend per conversion.
func CPA(spend float64, conversions int64) float64 {
	return SafeDiv(spend, float64(conversions))
}

// ROAS is revenue per unit of spend.
func ROAS(revenue, spend float64) float64 {
	return SafeDiv(revenue, spend)
}

// Profit returns revenue minus spend minus cogs. ok is false when cogs is
// not positive, since a profit without cost data would only restate margin
// over ad spend.
func Profit(revenue, spend, cogs float64) (profit float64, ok bool) {
	if cogs <= 0 {
		return 0, false
	}
	return revenue - spend - cogs, true
}

// BreakEvenROAS is the ROAS at which revenue covers spend plus cost of goods.
// It is only defined for single-product entities with positive unit margin.
func BreakEvenROAS(revenue, cogs float64, conversions int64, linkedProducts int) (float64, bool) {
	if cogs <= 0 || conversions <= 0 || linkedProducts != 1 {
		return 0, false
	}
	avgCOGS := cogs / float64(conversions)
	avgRevenue := revenue / float64(conversions)
	if avgRevenue <= avgCOGS {
		return 0, false
	}
	return avgCOGS/(avgRevenue-avgCOGS) + 1, true
}

// Derive computes every ratio for an entity.
func Derive(m models.EntityMetrics) Derived {
	revenue := m.Revenue()
	cogs := m.CostOfGoods()

	d := Derived{
		CTR:     CTR(m.Clicks, m.Impressions),
		CVR:     CVR(m.Conversions, m.Clicks),
		CPA:     CPA(m.Spend, m.Conversions),
		ROAS:    ROAS(revenue, m.Spend),
		Revenue: revenue,
	}

	if profit, ok := Profit(revenue, m.Spend, cogs); ok {
		d.ProfitKnown = true
		d.Profit = profit
		d.ProfitMargin = SafeDiv(profit, revenue) * 100
		d.NetROAS = SafeDiv(profit, m.Spend)
	}

	d.BreakEvenROAS, d.BreakEvenKnown = BreakEvenROAS(revenue, cogs, m.Conversions, m.LinkedProductCount)
	return d
}
