package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/shopspring/decimal"
)

var strategyLabels = map[models.BidStrategy]string{
	models.BidManualCPC:               "Manual CPC",
	models.BidLowestCost:              "Lowest Cost",
	models.BidCostCap:                 "Cost Cap",
	models.BidBidCap:                  "Bid Cap",
	models.BidTargetCPA:               "Target CPA",
	models.BidTargetROAS:              "Target ROAS",
	models.BidMaximizeConversions:     "Maximize Conversions",
	models.BidMaximizeConversionValue: "Maximize Conversion Value",
}

var acronyms = map[string]string{
	"cpc":  "CPC",
	"cpa":  "CPA",
	"cpm":  "CPM",
	"roas": "ROAS",
}

// BidStrategyLabel returns the display name of a bid strategy.
func BidStrategyLabel(s models.BidStrategy) string {
	if label, ok := strategyLabels[s]; ok {
		return label
	}
	words := strings.FieldsFunc(string(s), func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// GenerateName builds the default campaign name, e.g.
// "07/04 Summer Sale | $120 | Manual CPC". The budget is rounded to a whole
// amount.
func GenerateName(date time.Time, entityName string, budget float64, s models.BidStrategy) string {
	whole := decimal.NewFromFloat(budget).Round(0)
	return fmt.Sprintf("%s %s | $%s | %s", date.Format("01/02"), entityName, whole.String(), BidStrategyLabel(s))
}

// NameField holds the campaign name while a build is being configured. It
// follows the generated name until the user overrides it, and stays fixed
// until Reset.
type NameField struct {
	value      string
	overridden bool
}

// Regenerate replaces the name with auto unless it was overridden.
func (n *NameField) Regenerate(auto string) {
	if !n.overridden {
		n.value = auto
	}
}

// Override sets a user-chosen name and stops regeneration.
func (n *NameField) Override(name string) {
	n.value = name
	n.overridden = true
}

// Reset drops the override and returns to the generated name.
func (n *NameField) Reset(auto string) {
	n.overridden = false
	n.value = auto
}

// Overridden reports whether the user has set the name.
func (n *NameField) Overridden() bool {
	return n.overridden
}

// Value returns the current name.
func (n *NameField) Value() string {
	return n.value
}
