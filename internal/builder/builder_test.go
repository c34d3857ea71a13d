package builder

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

var july4 = time.Date(2024, 7, 4, 10, 30, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func queued(d models.Dimension, label string, contribution float64, suggested *int) models.QueuedItem {
	return models.QueuedItem{
		Type:  d,
		Label: label,
		Data: models.SegmentRecord{
			Label:                  label,
			Contribution:           contribution,
			SuggestedBidAdjustment: suggested,
		},
	}
}

func TestGenerateName(t *testing.T) {
	got := GenerateName(july4, "Summer Sale", 120.4, models.BidManualCPC)
	if got != "07/04 Summer Sale | $120 | Manual CPC" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := GenerateName(july4, "X", 120.5, models.BidLowestCost); got != "07/04 X | $121 | Lowest Cost" {
		t.Fatalf("expected half to round up, got %q", got)
	}
}

func TestBidStrategyLabel(t *testing.T) {
	tests := map[models.BidStrategy]string{
		models.BidTargetROAS:          "Target ROAS",
		models.BidMaximizeConversions: "Maximize Conversions",
		"enhanced_cpc":                "Enhanced CPC",
		"target_cpm":                  "Target CPM",
		"highest_value":               "Highest Value",
	}
	for in, want := range tests {
		if got := BidStrategyLabel(in); got != want {
			t.Errorf("BidStrategyLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameFieldOverrideStopsRegeneration(t *testing.T) {
	var n NameField
	n.Regenerate("auto 1")
	n.Override("My Campaign")
	n.Regenerate("auto 2")
	if n.Value() != "My Campaign" || !n.Overridden() {
		t.Fatalf("expected the override to stick, got %q", n.Value())
	}
	n.Reset("auto 3")
	n.Regenerate("auto 4")
	if n.Value() != "auto 4" || n.Overridden() {
		t.Fatalf("expected regeneration after reset, got %q", n.Value())
	}
}

func TestQueueIsKeyedByLabel(t *testing.T) {
	q, err := NewQueue(
		queued(models.DimPlacements, "Feed", 40, nil),
		queued(models.DimGeographic, "Texas", 15, nil),
	)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	if err := q.Add(queued(models.DimDemographics, "Feed", 10, nil)); !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("expected ErrDuplicateLabel, got %v", err)
	}
	if err := q.Add(models.QueuedItem{}); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}

	if on, _ := q.Toggle(queued(models.DimTemporal, "Evening", 35, nil)); !on {
		t.Fatal("expected toggle to add a new item")
	}
	if on, _ := q.Toggle(queued(models.DimPlacements, "Feed", 40, nil)); on {
		t.Fatal("expected toggle to remove a queued item")
	}

	var labels []string
	for _, it := range q.Items() {
		labels = append(labels, it.Label)
	}
	if !reflect.DeepEqual(labels, []string{"Texas", "Evening"}) {
		t.Fatalf("unexpected order %v", labels)
	}
	if !q.Contains("Evening") || q.Contains("Feed") {
		t.Fatal("index out of sync with items")
	}
	if !q.Remove("Texas") || q.Remove("Texas") {
		t.Fatal("expected exactly one successful remove")
	}
	if !q.Contains("Evening") {
		t.Fatal("index lost an item after remove")
	}
	q.Clear()
	if q.Len() != 0 || q.Contains("Evening") {
		t.Fatal("expected an empty queue")
	}
}

func TestResolveBudget(t *testing.T) {
	items := []models.QueuedItem{
		queued(models.DimPlacements, "a", 22.5, nil),
		queued(models.DimPlacements, "b", 10, nil),
	}
	tests := []struct {
		mode models.BudgetMode
		want float64
	}{
		{models.BudgetMatch, 250},
		// 250 * 32.5 / 100 = 81.25
		{models.BudgetSuggested, 81},
		{models.BudgetCustom, 99.5},
	}
	for _, tt := range tests {
		got, err := ResolveBudget(tt.mode, 250, 99.5, items)
		if err != nil || got != tt.want {
			t.Errorf("%s: got %v, %v; want %v", tt.mode, got, err, tt.want)
		}
	}
	if _, err := ResolveBudget("weekly", 250, 0, items); !errors.Is(err, ErrUnknownBudgetMode) {
		t.Fatalf("expected ErrUnknownBudgetMode, got %v", err)
	}
}

func TestAssemble(t *testing.T) {
	items := []models.QueuedItem{
		queued(models.DimPlacements, "Facebook Feed", 45, intPtr(25)),
		queued(models.DimDemographics, "Women 25-34", 22, intPtr(1200)),
		queued(models.DimNegativeKeywords, "free", 40, intPtr(10)),
		queued(models.DimGeographic, "Texas", 15, nil),
	}
	entity := EntityContext{EntityID: "as-1", EntityName: "Summer Sale", Platform: models.PlatformFacebook, CurrentBudget: 200}
	choices := Choices{
		BuildType:      models.BuildNewCampaign,
		BudgetMode:     models.BudgetSuggested,
		BidStrategy:    models.BidCostCap,
		PauseSource:    true,
		BidAdjustments: map[string]int{"Texas": -95},
	}

	cfg, err := Assemble(items, choices, entity, july4)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	// 200 * (45+22+40+15) / 100 = 244
	if cfg.Budget != 244 {
		t.Fatalf("expected budget 244, got %v", cfg.Budget)
	}
	if cfg.NewName != "07/04 Summer Sale | $244 | Cost Cap" {
		t.Fatalf("unexpected name %q", cfg.NewName)
	}
	if !cfg.CreateWideOpen {
		t.Fatal("expected the wide-open ad set by default on facebook")
	}
	if cfg.PauseSource {
		t.Fatal("pause_source must be dropped for new campaigns")
	}
	want := map[string]int{"Facebook Feed": 25, "Women 25-34": 900, "Texas": -90}
	if !reflect.DeepEqual(cfg.BidAdjustments, want) {
		t.Fatalf("unexpected bid adjustments %v", cfg.BidAdjustments)
	}
	if len(cfg.SelectedSegments) != 4 || cfg.SourceEntityID != "as-1" {
		t.Fatalf("unexpected segments or source: %+v", cfg)
	}
}

func TestAssembleOverridesAndDefaults(t *testing.T) {
	items := []models.QueuedItem{queued(models.DimKeywords, "Brand Terms", 30, nil)}
	entity := EntityContext{EntityID: "cmp-9", EntityName: "Brand", Platform: models.PlatformGoogle, CurrentBudget: 50}

	cfg, err := Assemble(items, Choices{
		BuildType:    models.BuildAddToCampaign,
		BudgetMode:   models.BudgetMatch,
		PauseSource:  true,
		NameOverride: "Brand Exact Test",
	}, entity, july4)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if cfg.NewName != "Brand Exact Test" {
		t.Fatalf("expected the override name, got %q", cfg.NewName)
	}
	if cfg.CreateWideOpen {
		t.Fatal("google builds default to targeted only")
	}
	if cfg.BidStrategy != models.BidManualCPC || !cfg.PauseSource || cfg.Budget != 50 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestAssembleErrors(t *testing.T) {
	item := []models.QueuedItem{queued(models.DimPlacements, "Feed", 50, nil)}
	entity := EntityContext{EntityID: "as-1", EntityName: "E", Platform: models.PlatformTikTok, CurrentBudget: 100}

	tests := []struct {
		name    string
		items   []models.QueuedItem
		choices Choices
		entity  EntityContext
		want    error
	}{
		{"empty selection", nil, Choices{BuildType: models.BuildNewCampaign, BudgetMode: models.BudgetMatch}, entity, ErrEmptySelection},
		{"unknown build type", item, Choices{BuildType: "clone", BudgetMode: models.BudgetMatch}, entity, ErrUnknownBuildType},
		{"unknown budget mode", item, Choices{BuildType: models.BuildNewCampaign}, entity, ErrUnknownBudgetMode},
		{"unknown topology", item, Choices{BuildType: models.BuildNewCampaign, BudgetMode: models.BudgetMatch, Topology: "dual"}, entity, ErrUnknownTopology},
		{"zero custom budget", item, Choices{BuildType: models.BuildNewCampaign, BudgetMode: models.BudgetCustom}, entity, ErrInvalidBudget},
		{"missing source", item, Choices{BuildType: models.BuildAddToCampaign, BudgetMode: models.BudgetMatch}, EntityContext{CurrentBudget: 10}, ErrMissingSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assemble(tt.items, tt.choices, tt.entity, july4); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
