package models

import (
	"errors"
	"strings"
)

// Platform identifies the ad network an entity lives on.
type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformGoogle   Platform = "google"
	PlatformTikTok   Platform = "tiktok"
)

// ParsePlatform normalizes a platform name. Meta is accepted as an alias
// for Facebook.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "facebook", "meta":
		return PlatformFacebook, nil
	case "google":
		return PlatformGoogle, nil
	case "tiktok":
		return PlatformTikTok, nil
	}
	return "", errors.New("unknown platform: " + s)
}

// EntityLevel is the position of an entity in the campaign hierarchy.
type EntityLevel string

const (
	LevelCampaign EntityLevel = "campaign"
	LevelAdSet    EntityLevel = "ad_set"
	LevelAd       EntityLevel = "ad"
)

// EntityMetrics holds the raw counters reported for one campaign, ad set or ad.
// Optional values are pointers so that "absent" and "zero" stay distinct.
type EntityMetrics struct {
	ID       string       `json:"id"`
	Name     string       `json:"name,omitempty"`
	Level    EntityLevel  `json:"level,omitempty"`
	Platform Platform     `json:"platform,omitempty"`
	Status   EntityStatus `json:"status,omitempty"`
	Budget   float64      `json:"budget,omitempty"`

	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions int64   `json:"conversions"`

	// ConversionValue is the attributed revenue. When absent, revenue falls
	// back to Spend*ROAS using the provider-reported ROAS.
	ConversionValue *float64 `json:"conversion_value,omitempty"`
	ROAS            float64  `json:"roas,omitempty"`

	// COGS is the total cost of goods for the attributed conversions.
	COGS               *float64 `json:"cogs,omitempty"`
	LinkedProductCount int      `json:"linked_product_count,omitempty"`

	// Attribution sources
	PixelAttributed bool `json:"pixel_attributed,omitempty"`
	UTMAttributed   bool `json:"utm_attributed,omitempty"`
	CAPIEnabled     bool `json:"capi_enabled,omitempty"`
}

// Revenue returns the attributed revenue of the entity.
func (m EntityMetrics) Revenue() float64 {
	if m.ConversionValue != nil {
		return *m.ConversionValue
	}
	if m.ROAS > 0 {
		return m.Spend * m.ROAS
	}
	return 0
}

// CostOfGoods returns the known COGS, or 0 when none is recorded.
func (m EntityMetrics) CostOfGoods() float64 {
	if m.COGS == nil || *m.COGS < 0 {
		return 0
	}
	return *m.COGS
}

// HasCOGS reports whether the entity carries a positive cost of goods.
func (m EntityMetrics) HasCOGS() bool {
	return m.CostOfGoods() > 0
}

// Validate checks identity fields only. Counters are never rejected; the
// derivation layer falls back to zero for anything it cannot compute.
func (m *EntityMetrics) Validate() error {
	if m == nil {
		return errors.New("entity is nil")
	}
	if m.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

// Float64 returns a pointer to v. It keeps fixtures for optional fields short.
func Float64(v float64) *float64 {
	return &v
}
