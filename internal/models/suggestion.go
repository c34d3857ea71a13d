package models

import "time"

// SuggestionType is the kind of optimization the insight pipeline proposes.
type SuggestionType string

const (
	SuggestScaleHighPerformer   SuggestionType = "scale_high_performer"
	SuggestIncreaseBudget       SuggestionType = "increase_budget"
	SuggestReduceBudget         SuggestionType = "reduce_budget"
	SuggestDecreaseBudget       SuggestionType = "decrease_budget"
	SuggestPauseUnderperforming SuggestionType = "pause_underperforming"
	SuggestPauseNegativeROI     SuggestionType = "pause_negative_roi"
	SuggestPauseEntity          SuggestionType = "pause_entity"
	SuggestRefreshCreative      SuggestionType = "refresh_creative"
	SuggestTestNewCreative      SuggestionType = "test_new_creative"
	SuggestAdjustTargeting      SuggestionType = "adjust_targeting"
	SuggestOptimizeDemographics SuggestionType = "optimize_demographics"
	SuggestOptimizePlacements   SuggestionType = "optimize_placements"
	SuggestOptimizeGeographic   SuggestionType = "optimize_geographic"
	SuggestReallocateBudget     SuggestionType = "reallocate_budget"

	// Manual-review types. They never map to an executable action.
	SuggestOptimizeCampaign     SuggestionType = "optimize_campaign"
	SuggestReviewUnderperformer SuggestionType = "review_underperformer"
	SuggestSwitchToABO          SuggestionType = "switch_to_abo"
)

// Known reports whether t is one of the suggestion types above.
func (t SuggestionType) Known() bool {
	switch t {
	case SuggestScaleHighPerformer, SuggestIncreaseBudget, SuggestReduceBudget,
		SuggestDecreaseBudget, SuggestPauseUnderperforming, SuggestPauseNegativeROI,
		SuggestPauseEntity, SuggestRefreshCreative, SuggestTestNewCreative,
		SuggestAdjustTargeting, SuggestOptimizeDemographics, SuggestOptimizePlacements,
		SuggestOptimizeGeographic, SuggestReallocateBudget, SuggestOptimizeCampaign,
		SuggestReviewUnderperformer, SuggestSwitchToABO:
		return true
	}
	return false
}

// GeneratedInsight is a suggestion produced by the upstream insight pipeline.
type GeneratedInsight struct {
	ID             string         `json:"id"`
	EntityID       string         `json:"entity_id"`
	EntityName     string         `json:"entity_name,omitempty"`
	EntityLevel    EntityLevel    `json:"entity_level,omitempty"`
	Platform       Platform       `json:"platform"`
	SuggestionType SuggestionType `json:"suggestion_type"`
	Title          string         `json:"title,omitempty"`
	Message        string         `json:"message,omitempty"`
	CurrentBudget  float64        `json:"current_budget"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
}

// ActionType is an executable verb understood by the execution backend.
type ActionType string

const (
	ActionIncreaseBudget  ActionType = "increase_budget"
	ActionDecreaseBudget  ActionType = "decrease_budget"
	ActionPause           ActionType = "pause"
	ActionDuplicate       ActionType = "duplicate"
	ActionAdjustTargeting ActionType = "adjust_targeting"
)

// ActionParameters carries the concrete arguments of an action. Fields not
// used by an action type stay at their zero value and are omitted on the wire.
// EntityID is filled in by the caller that executes the action.
type ActionParameters struct {
	EntityID       string            `json:"entity_id,omitempty"`
	CurrentBudget  float64           `json:"current_budget,omitempty"`
	ProposedBudget float64           `json:"proposed_budget,omitempty"`
	ChangePercent  int               `json:"change_percent,omitempty"`
	NameSuffix     string            `json:"name_suffix,omitempty"`
	Targeting      *TargetingPayload `json:"targeting,omitempty"`
}

// TargetingPayload names the targeting axis an adjust_targeting action reworks.
type TargetingPayload struct {
	Focus Dimension `json:"focus,omitempty"`
}

// Action is an executable command derived from a suggestion.
type Action struct {
	Type       ActionType       `json:"action_type"`
	Parameters ActionParameters `json:"parameters"`
}
