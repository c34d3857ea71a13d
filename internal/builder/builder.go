// Package builder assembles segment selections into build configurations
// ready for the execution backend. It performs no I/O.
package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/radiusdt/vector-insights/internal/bidding"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptySelection    = errors.New("no segments selected")
	ErrUnknownBuildType  = errors.New("unknown build type")
	ErrUnknownBudgetMode = errors.New("unknown budget mode")
	ErrUnknownTopology   = errors.New("unknown ad set topology")
	ErrInvalidBudget     = errors.New("budget must be greater than zero")
	ErrMissingSource     = errors.New("add_to_campaign requires a source entity")
)

// Choices are the options the user picked for a build.
type Choices struct {
	BuildType    models.BuildType   `json:"build_type"`
	BudgetMode   models.BudgetMode  `json:"budget_mode"`
	CustomBudget float64            `json:"custom_budget,omitempty"`
	BidStrategy  models.BidStrategy `json:"bid_strategy,omitempty"`
	BidAmount    *float64           `json:"bid_amount,omitempty"`
	Topology     models.Topology    `json:"topology,omitempty"`
	PauseSource  bool               `json:"pause_source,omitempty"`
	TargetCPA    *float64           `json:"target_cpa,omitempty"`
	TargetROAS   *float64           `json:"target_roas,omitempty"`
	NameOverride string             `json:"name_override,omitempty"`

	// BidAdjustments are user edits keyed by segment label. They win over
	// the suggested values.
	BidAdjustments map[string]int `json:"bid_adjustments,omitempty"`
}

// EntityContext describes the entity the build starts from.
type EntityContext struct {
	EntityID      string          `json:"entity_id"`
	EntityName    string          `json:"entity_name"`
	Platform      models.Platform `json:"platform"`
	CurrentBudget float64         `json:"current_budget"`
}

// DefaultTopology returns the recommended ad set layout for a platform.
// Google builds stay targeted; elsewhere a wide-open ad set competes with the
// targeted one.
func DefaultTopology(p models.Platform) models.Topology {
	if p == models.PlatformGoogle {
		return models.TopologyTargeted
	}
	return models.TopologyTargetedAndWideOpen
}

// DefaultBidStrategy returns the strategy a build starts with on a platform.
func DefaultBidStrategy(p models.Platform) models.BidStrategy {
	if p == models.PlatformGoogle {
		return models.BidManualCPC
	}
	return models.BidLowestCost
}

// ResolveBudget computes the build budget for a budget mode.
func ResolveBudget(mode models.BudgetMode, currentBudget, customBudget float64, items []models.QueuedItem) (float64, error) {
	switch mode {
	case models.BudgetMatch:
		return currentBudget, nil
	case models.BudgetSuggested:
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(decimal.NewFromFloat(it.Data.Contribution))
		}
		budget := decimal.NewFromFloat(currentBudget).Mul(total).Div(decimal.NewFromInt(100)).Round(0)
		return budget.InexactFloat64(), nil
	case models.BudgetCustom:
		return customBudget, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBudgetMode, mode)
}

// BidAdjustments merges suggested and user-edited deltas for every
// bid-adjustable item. Values are clamped to the legal range.
func BidAdjustments(items []models.QueuedItem, edits map[string]int) map[string]int {
	out := make(map[string]int, len(items))
	for _, it := range items {
		if !it.Type.AdjustableByBid() {
			continue
		}
		v := 0
		if it.Data.SuggestedBidAdjustment != nil {
			v = *it.Data.SuggestedBidAdjustment
		}
		if edit, ok := edits[it.Label]; ok {
			v = edit
		}
		out[it.Label] = bidding.Clamp(v)
	}
	return out
}

// Assemble builds the configuration submitted for items. now dates the
// generated name.
func Assemble(items []models.QueuedItem, c Choices, e EntityContext, now time.Time) (models.BuildConfiguration, error) {
	if len(items) == 0 {
		return models.BuildConfiguration{}, ErrEmptySelection
	}

	switch c.BuildType {
	case models.BuildNewCampaign:
	case models.BuildAddToCampaign:
		if e.EntityID == "" {
			return models.BuildConfiguration{}, ErrMissingSource
		}
	default:
		return models.BuildConfiguration{}, fmt.Errorf("%w: %q", ErrUnknownBuildType, c.BuildType)
	}

	topology := c.Topology
	if topology == "" {
		topology = DefaultTopology(e.Platform)
	}
	if topology != models.TopologyTargeted && topology != models.TopologyTargetedAndWideOpen {
		return models.BuildConfiguration{}, fmt.Errorf("%w: %q", ErrUnknownTopology, topology)
	}

	budget, err := ResolveBudget(c.BudgetMode, e.CurrentBudget, c.CustomBudget, items)
	if err != nil {
		return models.BuildConfiguration{}, err
	}
	if budget <= 0 {
		return models.BuildConfiguration{}, fmt.Errorf("%w: %s budget resolved to %v", ErrInvalidBudget, c.BudgetMode, budget)
	}

	strategy := c.BidStrategy
	if strategy == "" {
		strategy = DefaultBidStrategy(e.Platform)
	}

	var name NameField
	name.Regenerate(GenerateName(now, e.EntityName, budget, strategy))
	if c.NameOverride != "" {
		name.Override(c.NameOverride)
	}

	cfg := models.BuildConfiguration{
		BuildType:        c.BuildType,
		SourceEntityID:   e.EntityID,
		Platform:         e.Platform,
		SelectedSegments: append([]models.QueuedItem(nil), items...),
		BidStrategy:      strategy,
		BidAmount:        c.BidAmount,
		BudgetMode:       c.BudgetMode,
		Budget:           budget,
		CreateWideOpen:   topology == models.TopologyTargetedAndWideOpen,
		PauseSource:      c.PauseSource && c.BuildType == models.BuildAddToCampaign,
		TargetCPA:        c.TargetCPA,
		TargetROAS:       c.TargetROAS,
		NewName:          name.Value(),
		BidAdjustments:   BidAdjustments(items, c.BidAdjustments),
	}
	if err := cfg.Validate(); err != nil {
		return models.BuildConfiguration{}, fmt.Errorf("invalid build configuration: %w", err)
	}
	return cfg, nil
}
