// Package aggregate folds per-entity metrics into fleet-wide totals.
package aggregate

import (
	"github.com/radiusdt/vector-insights/internal/kpi"
	"github.com/radiusdt/vector-insights/internal/models"
)

// Attribution weights. A source counts once per entity; the sum is capped.
const (
	PixelWeight    = 40
	UTMWeight      = 30
	CAPIWeight     = 30
	MaxAttribution = 100
)

// Counters tracks how many entities carry each kind of supporting data.
type Counters struct {
	WithCOGS             int `json:"with_cogs"`
	WithConversions      int `json:"with_conversions"`
	WithPixel            int `json:"with_pixel"`
	WithUTM              int `json:"with_utm"`
	WithCAPI             int `json:"with_capi"`
	WithSingleProduct    int `json:"with_single_product"`
	WithMultipleProducts int `json:"with_multiple_products"`
}

// Totals is the aggregate view over a set of entities.
type Totals struct {
	Entities    int     `json:"entities"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	COGS        float64 `json:"cogs"`

	CTR  float64 `json:"ctr"`
	CPA  float64 `json:"cpa"`
	ROAS float64 `json:"roas"`

	// Profit figures are only populated when ProfitKnown is true.
	ProfitKnown  bool    `json:"profit_known"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	NetROAS      float64 `json:"net_roas"`

	BreakEvenKnown bool    `json:"break_even_known"`
	BreakEvenROAS  float64 `json:"break_even_roas"`

	Counters Counters `json:"counters"`

	AttributionScore      float64 `json:"attribution_score"`
	NeedsProductMapping   bool    `json:"needs_product_mapping"`
	NeedsAttributionSetup bool    `json:"needs_attribution_setup"`
}

// Accumulator folds entities one at a time. The zero value is ready to use.
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	totals Totals

	profitSum         float64
	costedRevenue     float64
	costedConversions int64
	costedNonSingle   int
	weightedScore     float64
}

// Add folds one entity into the running totals.
func (a *Accumulator) Add(m models.EntityMetrics) {
	t := &a.totals
	revenue := m.Revenue()

	t.Entities++
	t.Impressions += m.Impressions
	t.Clicks += m.Clicks
	t.Spend += m.Spend
	t.Conversions += m.Conversions
	t.Revenue += revenue

	if m.HasCOGS() {
		cogs := m.CostOfGoods()
		t.COGS += cogs
		t.Counters.WithCOGS++
		profit, _ := kpi.Profit(revenue, m.Spend, cogs)
		a.profitSum += profit
		a.costedRevenue += revenue
		a.costedConversions += m.Conversions
		if m.LinkedProductCount != 1 {
			a.costedNonSingle++
		}
	}

	if m.Conversions > 0 {
		t.Counters.WithConversions++
		a.weightedScore += float64(EntityAttributionScore(m)) * float64(m.Conversions)
	}
	if m.PixelAttributed {
		t.Counters.WithPixel++
	}
	if m.UTMAttributed {
		t.Counters.WithUTM++
	}
	if m.CAPIEnabled {
		t.Counters.WithCAPI++
	}

	switch {
	case m.LinkedProductCount == 1:
		t.Counters.WithSingleProduct++
	case m.LinkedProductCount > 1:
		t.Counters.WithMultipleProducts++
	}
}

// Totals finalizes the derived figures. It may be called repeatedly while
// entities are still being added.
func (a *Accumulator) Totals() Totals {
	t := a.totals

	t.CTR = kpi.CTR(t.Clicks, t.Impressions)
	t.CPA = kpi.CPA(t.Spend, t.Conversions)
	t.ROAS = kpi.ROAS(t.Revenue, t.Spend)

	// A 0% margin on a fleet without any cost data would be misleading.
	if t.COGS > 0 && t.Revenue > 0 {
		t.ProfitKnown = true
		t.Profit = a.profitSum
		t.ProfitMargin = kpi.SafeDiv(a.profitSum, t.Revenue) * 100
		t.NetROAS = kpi.SafeDiv(a.profitSum, t.Spend)
	}

	// One mixed-product entity makes per-unit cost ambiguous for the whole set.
	if t.Counters.WithCOGS > 0 && t.Counters.WithMultipleProducts == 0 && a.costedNonSingle == 0 {
		t.BreakEvenROAS, t.BreakEvenKnown = kpi.BreakEvenROAS(a.costedRevenue, t.COGS, a.costedConversions, 1)
	}

	if t.Conversions > 0 {
		t.AttributionScore = a.weightedScore / float64(t.Conversions)
	}

	hasConversions := t.Counters.WithConversions > 0
	t.NeedsProductMapping = hasConversions && t.Counters.WithCOGS == 0
	t.NeedsAttributionSetup = hasConversions &&
		t.Counters.WithPixel == 0 && t.Counters.WithUTM == 0 && t.Counters.WithCAPI == 0

	return t
}

// Fold aggregates a slice of entities.
func Fold(entities []models.EntityMetrics) Totals {
	var acc Accumulator
	for _, m := range entities {
		acc.Add(m)
	}
	return acc.Totals()
}

// EntityAttributionScore rates how reliably an entity's conversions are sourced.
func EntityAttributionScore(m models.EntityMetrics) int {
	score := 0
	if m.PixelAttributed {
		score += PixelWeight
	}
	if m.UTMAttributed {
		score += UTMWeight
	}
	if m.CAPIEnabled {
		score += CAPIWeight
	}
	if score > MaxAttribution {
		score = MaxAttribution
	}
	return score
}
