package aggregate

import (
	"math"
	"testing"

	"github.com/radiusdt/vector-insights/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFoldWithoutCOGSLeavesProfitUnknown(t *testing.T) {
	entities := []models.EntityMetrics{
		{ID: "a", Spend: 100, ConversionValue: models.Float64(150), Conversions: 3},
		{ID: "b", Spend: 200, ConversionValue: models.Float64(250), Conversions: 5},
		{ID: "c", Spend: 300, ConversionValue: models.Float64(0)},
	}
	got := Fold(entities)

	if got.ProfitKnown {
		t.Fatal("expected profit to stay unknown without cogs")
	}
	if got.Profit != 0 || got.ProfitMargin != 0 || got.NetROAS != 0 {
		t.Fatalf("expected zero profit figures, got profit=%v margin=%v net=%v",
			got.Profit, got.ProfitMargin, got.NetROAS)
	}
	if !almostEqual(got.Spend, 600) || !almostEqual(got.Revenue, 400) {
		t.Fatalf("unexpected sums: spend=%v revenue=%v", got.Spend, got.Revenue)
	}
	if !almostEqual(got.ROAS, 400.0/600.0) {
		t.Fatalf("expected roas %v, got %v", 400.0/600.0, got.ROAS)
	}
	if !got.NeedsProductMapping {
		t.Fatal("expected product mapping prompt when conversions exist without cogs")
	}
}

func TestFoldMixedProductsSuppressesBreakEven(t *testing.T) {
	single := models.EntityMetrics{
		ID:                 "single",
		Spend:              100,
		Conversions:        10,
		ConversionValue:    models.Float64(500),
		COGS:               models.Float64(100),
		LinkedProductCount: 1,
	}
	multi := models.EntityMetrics{
		ID:                 "multi",
		Spend:              100,
		Conversions:        10,
		ConversionValue:    models.Float64(400),
		COGS:               models.Float64(150),
		LinkedProductCount: 3,
	}

	alone := Fold([]models.EntityMetrics{single})
	if !alone.BreakEvenKnown || alone.BreakEvenROAS == 0 {
		t.Fatalf("expected single-product fleet to have break-even, got %+v", alone)
	}

	got := Fold([]models.EntityMetrics{single, multi})
	if got.BreakEvenKnown || got.BreakEvenROAS != 0 {
		t.Fatalf("expected suppressed break-even, got %v (known=%v)", got.BreakEvenROAS, got.BreakEvenKnown)
	}
	if got.Counters.WithSingleProduct != 1 || got.Counters.WithMultipleProducts != 1 {
		t.Fatalf("unexpected product counters: %+v", got.Counters)
	}
}

func TestFoldProfitOnlyFromCostedEntities(t *testing.T) {
	entities := []models.EntityMetrics{
		{ID: "costed", Spend: 100, ConversionValue: models.Float64(400), COGS: models.Float64(100), Conversions: 4, LinkedProductCount: 1},
		{ID: "uncosted", Spend: 300, ConversionValue: models.Float64(100), Conversions: 1},
	}
	got := Fold(entities)

	if !got.ProfitKnown {
		t.Fatal("expected profit to be known")
	}
	if !almostEqual(got.Profit, 200) {
		t.Fatalf("expected profit 200 from the costed entity only, got %v", got.Profit)
	}
	if !almostEqual(got.ProfitMargin, 200.0/500.0*100) {
		t.Fatalf("unexpected margin %v", got.ProfitMargin)
	}
	if !almostEqual(got.NetROAS, 0.5) {
		t.Fatalf("expected net roas 0.5, got %v", got.NetROAS)
	}
	if !almostEqual(got.COGS, 100) || got.Counters.WithCOGS != 1 {
		t.Fatalf("unexpected cogs totals: %v / %+v", got.COGS, got.Counters)
	}
}

func TestAttributionScore(t *testing.T) {
	tests := []struct {
		name     string
		entities []models.EntityMetrics
		want     float64
		setup    bool
	}{
		{
			name: "conversion weighted",
			entities: []models.EntityMetrics{
				{ID: "a", Conversions: 30, PixelAttributed: true, UTMAttributed: true},
				{ID: "b", Conversions: 10, CAPIEnabled: true},
			},
			// (70*30 + 30*10) / 40
			want: 60,
		},
		{
			name: "all sources capped",
			entities: []models.EntityMetrics{
				{ID: "a", Conversions: 5, PixelAttributed: true, UTMAttributed: true, CAPIEnabled: true},
			},
			want: 100,
		},
		{
			name: "no attribution anywhere",
			entities: []models.EntityMetrics{
				{ID: "a", Conversions: 5},
			},
			want:  0,
			setup: true,
		},
		{
			name: "no conversions",
			entities: []models.EntityMetrics{
				{ID: "a", PixelAttributed: true},
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fold(tt.entities)
			if !almostEqual(got.AttributionScore, tt.want) {
				t.Fatalf("expected score %v, got %v", tt.want, got.AttributionScore)
			}
			if got.NeedsAttributionSetup != tt.setup {
				t.Fatalf("expected needsAttributionSetup=%v, got %v", tt.setup, got.NeedsAttributionSetup)
			}
		})
	}
}

func TestAccumulatorMatchesFold(t *testing.T) {
	entities := []models.EntityMetrics{
		{ID: "a", Impressions: 1000, Clicks: 50, Spend: 80, Conversions: 4, ROAS: 2},
		{ID: "b", Impressions: 3000, Clicks: 70, Spend: 120, Conversions: 6, ConversionValue: models.Float64(360)},
	}
	var acc Accumulator
	for _, e := range entities {
		acc.Add(e)
	}
	got := acc.Totals()
	want := Fold(entities)
	if got != want {
		t.Fatalf("accumulator diverged from fold:\n got %+v\nwant %+v", got, want)
	}
	if !almostEqual(got.CTR, 3) || !almostEqual(got.CPA, 20) {
		t.Fatalf("unexpected ratios: ctr=%v cpa=%v", got.CTR, got.CPA)
	}
	// revenue: 80*2 from the provider roas, plus 360
	if !almostEqual(got.Revenue, 520) {
		t.Fatalf("expected revenue 520, got %v", got.Revenue)
	}
}

func TestEmptyFold(t *testing.T) {
	got := Fold(nil)
	if got.Entities != 0 || got.CTR != 0 || got.ROAS != 0 || got.NeedsProductMapping || got.NeedsAttributionSetup {
		t.Fatalf("expected empty totals, got %+v", got)
	}
}
