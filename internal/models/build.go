package models

import "errors"

// BuildType says whether a build creates a campaign or extends the source one.
type BuildType string

const (
	BuildNewCampaign   BuildType = "new_campaign"
	BuildAddToCampaign BuildType = "add_to_campaign"
)

// BudgetMode selects how the build budget is resolved.
type BudgetMode string

const (
	BudgetMatch     BudgetMode = "match"
	BudgetSuggested BudgetMode = "suggested"
	BudgetCustom    BudgetMode = "custom"
)

// Topology is the ad-set layout of a build.
type Topology string

const (
	TopologyTargeted            Topology = "targeted"
	TopologyTargetedAndWideOpen Topology = "targeted_and_wide_open"
)

// BidStrategy is the platform bid strategy identifier, e.g. "manual_cpc".
type BidStrategy string

const (
	BidManualCPC               BidStrategy = "manual_cpc"
	BidLowestCost              BidStrategy = "lowest_cost"
	BidCostCap                 BidStrategy = "cost_cap"
	BidBidCap                  BidStrategy = "bid_cap"
	BidTargetCPA               BidStrategy = "target_cpa"
	BidTargetROAS              BidStrategy = "target_roas"
	BidMaximizeConversions     BidStrategy = "maximize_conversions"
	BidMaximizeConversionValue BidStrategy = "maximize_conversion_value"
)

// QueuedItem is a segment selected for a build. Label is the queue key.
type QueuedItem struct {
	Type  Dimension     `json:"type"`
	Label string        `json:"label"`
	Data  SegmentRecord `json:"data"`
}

// BuildConfiguration is the one-shot request handed to the execution backend.
type BuildConfiguration struct {
	BuildType        BuildType      `json:"build_type"`
	SourceEntityID   string         `json:"source_entity_id,omitempty"`
	Platform         Platform       `json:"platform"`
	SelectedSegments []QueuedItem   `json:"selected_segments"`
	BidStrategy      BidStrategy    `json:"bid_strategy"`
	BidAmount        *float64       `json:"bid_amount,omitempty"`
	BudgetMode       BudgetMode     `json:"budget_mode"`
	Budget           float64        `json:"budget"`
	CreateWideOpen   bool           `json:"create_wide_open"`
	PauseSource      bool           `json:"pause_source"`
	TargetCPA        *float64       `json:"target_cpa,omitempty"`
	TargetROAS       *float64       `json:"target_roas,omitempty"`
	NewName          string         `json:"new_name,omitempty"`
	BidAdjustments   map[string]int `json:"bid_adjustments"`
}

// Validate checks the invariants every assembled configuration must hold.
func (c *BuildConfiguration) Validate() error {
	if c == nil {
		return errors.New("build configuration is nil")
	}
	if len(c.SelectedSegments) == 0 {
		return errors.New("at least one segment required")
	}
	if c.Budget <= 0 {
		return errors.New("budget must be > 0")
	}
	if c.PauseSource && c.BuildType != BuildAddToCampaign {
		return errors.New("pause_source requires add_to_campaign")
	}
	seen := make(map[string]struct{}, len(c.SelectedSegments))
	for _, s := range c.SelectedSegments {
		if _, dup := seen[s.Label]; dup {
			return errors.New("duplicate segment label: " + s.Label)
		}
		seen[s.Label] = struct{}{}
	}
	return nil
}
