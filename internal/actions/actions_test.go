package actions

import (
	"encoding/json"
	"testing"

	"github.com/radiusdt/vector-insights/internal/models"
)

func TestMapPauseHasEmptyParameters(t *testing.T) {
	got := Map(models.SuggestPauseNegativeROI, 50)
	if got == nil || got.Type != models.ActionPause {
		t.Fatalf("expected pause action, got %+v", got)
	}
	if got.Parameters != (models.ActionParameters{}) {
		t.Fatalf("expected empty parameters, got %+v", got.Parameters)
	}
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"action_type":"pause","parameters":{}}` {
		t.Fatalf("unexpected wire form %s", data)
	}
}

func TestMapManualReviewTypes(t *testing.T) {
	for _, st := range []models.SuggestionType{
		models.SuggestSwitchToABO,
		models.SuggestOptimizeCampaign,
		models.SuggestReviewUnderperformer,
		"adjust_schedule",
		"expand_regions",
		"ltv_segment",
	} {
		if got := Map(st, 50); got != nil {
			t.Errorf("%s: expected nil, got %+v", st, got)
		}
	}
}

func TestMapBudgetChanges(t *testing.T) {
	tests := []struct {
		st       models.SuggestionType
		budget   float64
		action   models.ActionType
		proposed float64
		percent  int
	}{
		{models.SuggestScaleHighPerformer, 50, models.ActionIncreaseBudget, 60, 20},
		{models.SuggestIncreaseBudget, 33.33, models.ActionIncreaseBudget, 40, 20},
		{models.SuggestReduceBudget, 50, models.ActionDecreaseBudget, 40, -20},
		{models.SuggestDecreaseBudget, 12.34, models.ActionDecreaseBudget, 9.87, -20},
		{models.SuggestReallocateBudget, 100, models.ActionIncreaseBudget, 115, 15},
	}
	for _, tt := range tests {
		t.Run(string(tt.st), func(t *testing.T) {
			got := Map(tt.st, tt.budget)
			if got == nil || got.Type != tt.action {
				t.Fatalf("expected %s, got %+v", tt.action, got)
			}
			p := got.Parameters
			if p.CurrentBudget != tt.budget || p.ProposedBudget != tt.proposed || p.ChangePercent != tt.percent {
				t.Fatalf("unexpected parameters %+v", p)
			}
		})
	}
}

func TestMapDuplicateAndTargeting(t *testing.T) {
	if got := Map(models.SuggestRefreshCreative, 10); got.Type != models.ActionDuplicate || got.Parameters.NameSuffix != " - Refresh" {
		t.Fatalf("unexpected refresh action %+v", got)
	}
	if got := Map(models.SuggestTestNewCreative, 10); got.Type != models.ActionDuplicate || got.Parameters.NameSuffix != " - Creative Test" {
		t.Fatalf("unexpected creative test action %+v", got)
	}

	got := Map(models.SuggestOptimizePlacements, 10)
	if got.Type != models.ActionAdjustTargeting || got.Parameters.Targeting == nil || got.Parameters.Targeting.Focus != models.DimPlacements {
		t.Fatalf("unexpected targeting action %+v", got)
	}
	plain := Map(models.SuggestAdjustTargeting, 10)
	if plain.Parameters.Targeting == nil || plain.Parameters.Targeting.Focus != "" {
		t.Fatalf("expected unfocused targeting payload, got %+v", plain.Parameters.Targeting)
	}
}
