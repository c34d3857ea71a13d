// Package actions maps suggestion types to executable actions.
package actions

import (
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/shopspring/decimal"
)

// Budget change factors, in percent.
const (
	ScaleUpPercent    = 20
	ScaleDownPercent  = -20
	ReallocatePercent = 15
)

const (
	refreshSuffix      = " - Refresh"
	creativeTestSuffix = " - Creative Test"
)

var targetingFocus = map[models.SuggestionType]models.Dimension{
	models.SuggestOptimizeDemographics: models.DimDemographics,
	models.SuggestOptimizePlacements:   models.DimPlacements,
	models.SuggestOptimizeGeographic:   models.DimGeographic,
}

// Map returns the action a suggestion type executes as, or nil when the
// suggestion needs manual review. The result depends only on its inputs.
func Map(t models.SuggestionType, currentBudget float64) *models.Action {
	switch t {
	case models.SuggestScaleHighPerformer, models.SuggestIncreaseBudget:
		return budgetChange(models.ActionIncreaseBudget, currentBudget, ScaleUpPercent)

	case models.SuggestReduceBudget, models.SuggestDecreaseBudget:
		return budgetChange(models.ActionDecreaseBudget, currentBudget, ScaleDownPercent)

	case models.SuggestPauseUnderperforming, models.SuggestPauseNegativeROI, models.SuggestPauseEntity:
		return &models.Action{Type: models.ActionPause}

	case models.SuggestRefreshCreative:
		return &models.Action{
			Type:       models.ActionDuplicate,
			Parameters: models.ActionParameters{NameSuffix: refreshSuffix},
		}

	case models.SuggestTestNewCreative:
		return &models.Action{
			Type:       models.ActionDuplicate,
			Parameters: models.ActionParameters{NameSuffix: creativeTestSuffix},
		}

	case models.SuggestAdjustTargeting, models.SuggestOptimizeDemographics,
		models.SuggestOptimizePlacements, models.SuggestOptimizeGeographic:
		return &models.Action{
			Type: models.ActionAdjustTargeting,
			Parameters: models.ActionParameters{
				Targeting: &models.TargetingPayload{Focus: targetingFocus[t]},
			},
		}

	case models.SuggestReallocateBudget:
		return budgetChange(models.ActionIncreaseBudget, currentBudget, ReallocatePercent)
	}
	return nil
}

// ProposedBudget applies a percentage change and rounds to cents.
func ProposedBudget(current float64, percent int) float64 {
	factor := decimal.NewFromInt(100 + int64(percent)).Div(decimal.NewFromInt(100))
	return decimal.NewFromFloat(current).Mul(factor).Round(2).InexactFloat64()
}

func budgetChange(t models.ActionType, current float64, percent int) *models.Action {
	return &models.Action{
		Type: t,
		Parameters: models.ActionParameters{
			CurrentBudget:  current,
			ProposedBudget: ProposedBudget(current, percent),
			ChangePercent:  percent,
		},
	}
}
