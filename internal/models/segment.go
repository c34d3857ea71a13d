package models

// Dimension tags a targeting axis that segments are sliced along.
type Dimension string

const (
	DimDemographics     Dimension = "demographics"
	DimPlacements       Dimension = "placements"
	DimGeographic       Dimension = "geographic"
	DimTemporal         Dimension = "temporal"
	DimKeywords         Dimension = "keywords"
	DimNegativeKeywords Dimension = "negative_keywords"
	DimSearchTerms      Dimension = "search_terms"
	DimDevices          Dimension = "devices"
	DimGender           Dimension = "gender"
	DimAgeGroups        Dimension = "age_groups"
	DimSchedule         Dimension = "schedule"
	DimIncome           Dimension = "income"
	DimParentalStatus   Dimension = "parental_status"
	DimAdGroups         Dimension = "ad_groups"
)

// RealDimensions are the dimensions that observed breakdown data can cover.
var RealDimensions = []Dimension{DimDemographics, DimPlacements, DimGeographic, DimTemporal}

// AdjustableByBid reports whether segments of the dimension take a
// percentage bid delta. Negative keywords are include/exclude only.
func (d Dimension) AdjustableByBid() bool {
	return d != DimNegativeKeywords
}

// SegmentRecord is one row of a dimension breakdown.
type SegmentRecord struct {
	Label       string   `json:"label"`
	ROAS        float64  `json:"roas"`
	Conversions int64    `json:"conversions"`
	CPA         float64  `json:"cpa"`
	Spend       float64  `json:"spend"`
	Revenue     *float64 `json:"revenue,omitempty"`

	// Contribution is the segment's share of its dimension, 0-100.
	Contribution float64 `json:"contribution"`

	// PlatformBidAdjustment is the raw adjustment the platform reports, e.g. "+15%".
	PlatformBidAdjustment string `json:"platform_bid_adjustment,omitempty"`
	// SuggestedBidAdjustment is a signed percentage.
	SuggestedBidAdjustment *int `json:"suggested_bid_adjustment,omitempty"`

	Synthetic bool `json:"synthetic,omitempty"`
}

// RealSegmentData carries observed breakdowns for the dimensions providers
// report directly. Missing or empty slices fall back to synthetic data.
type RealSegmentData struct {
	Demographics []SegmentRecord `json:"demographics,omitempty"`
	Placements   []SegmentRecord `json:"placements,omitempty"`
	Geographic   []SegmentRecord `json:"geographic,omitempty"`
	Temporal     []SegmentRecord `json:"temporal,omitempty"`
}

// For returns the observed records of a dimension, or nil when the
// dimension is not one that real data covers.
func (r RealSegmentData) For(d Dimension) []SegmentRecord {
	switch d {
	case DimDemographics:
		return r.Demographics
	case DimPlacements:
		return r.Placements
	case DimGeographic:
		return r.Geographic
	case DimTemporal:
		return r.Temporal
	}
	return nil
}

// Set stores records for a real-data dimension. Other dimensions are ignored.
func (r *RealSegmentData) Set(d Dimension, records []SegmentRecord) {
	switch d {
	case DimDemographics:
		r.Demographics = records
	case DimPlacements:
		r.Placements = records
	case DimGeographic:
		r.Geographic = records
	case DimTemporal:
		r.Temporal = records
	}
}

// Empty reports whether no real dimension has any record.
func (r RealSegmentData) Empty() bool {
	return len(r.Demographics) == 0 && len(r.Placements) == 0 &&
		len(r.Geographic) == 0 && len(r.Temporal) == 0
}
