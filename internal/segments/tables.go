package segments

import "github.com/radiusdt/vector-insights/internal/models"

// template is one row of a synthetic distribution. Share is the segment's
// percentage of the entity totals and Multiplier scales the entity ROAS.
type template struct {
	Label      string
	Share      float64
	Multiplier float64
}

// Dimensions every platform exposes.
var baseDimensions = []models.Dimension{
	models.DimDemographics,
	models.DimPlacements,
	models.DimGeographic,
	models.DimTemporal,
	models.DimDevices,
	models.DimGender,
	models.DimAgeGroups,
}

// Search-only dimensions.
var googleDimensions = []models.Dimension{
	models.DimKeywords,
	models.DimNegativeKeywords,
	models.DimSearchTerms,
	models.DimSchedule,
	models.DimIncome,
	models.DimParentalStatus,
	models.DimAdGroups,
}

// DimensionsFor lists the dimensions a platform breaks performance down by,
// in display order. Unknown platforms get none.
func DimensionsFor(p models.Platform) []models.Dimension {
	switch p {
	case models.PlatformFacebook, models.PlatformTikTok:
		return append([]models.Dimension(nil), baseDimensions...)
	case models.PlatformGoogle:
		dims := make([]models.Dimension, 0, len(baseDimensions)+len(googleDimensions))
		dims = append(dims, baseDimensions...)
		return append(dims, googleDimensions...)
	}
	return nil
}

// Supports reports whether the platform exposes the dimension.
func Supports(p models.Platform, d models.Dimension) bool {
	for _, dim := range DimensionsFor(p) {
		if dim == d {
			return true
		}
	}
	return false
}

// Distributions shared by all platforms unless overridden below.
var commonTables = map[models.Dimension][]template{
	models.DimDemographics: {
		{"Women 25-34", 22, 1.25},
		{"Men 25-34", 18, 1.05},
		{"Women 35-44", 16, 1.15},
		{"Men 35-44", 12, 0.95},
		{"Women 18-24", 10, 0.85},
		{"Men 18-24", 8, 0.75},
		{"Adults 45+", 14, 0.9},
	},
	models.DimGeographic: {
		{"California", 22, 1.1},
		{"Texas", 15, 1.0},
		{"New York", 14, 1.05},
		{"Florida", 12, 0.95},
		{"Other States", 37, 0.9},
	},
	models.DimTemporal: {
		{"Morning (6am-12pm)", 25, 0.95},
		{"Afternoon (12pm-6pm)", 30, 1.05},
		{"Evening (6pm-12am)", 35, 1.15},
		{"Night (12am-6am)", 10, 0.7},
	},
	models.DimDevices: {
		{"Mobile", 70, 1.0},
		{"Desktop", 25, 1.15},
		{"Tablet", 5, 0.85},
	},
	models.DimGender: {
		{"Female", 55, 1.1},
		{"Male", 43, 0.9},
		{"Unknown", 2, 0.6},
	},
	models.DimAgeGroups: {
		{"18-24", 12, 0.8},
		{"25-34", 30, 1.2},
		{"35-44", 24, 1.1},
		{"45-54", 16, 0.95},
		{"55-64", 11, 0.85},
		{"65+", 7, 0.7},
	},
}

var platformTables = map[models.Platform]map[models.Dimension][]template{
	models.PlatformFacebook: {
		models.DimPlacements: {
			{"Facebook Feed", 45, 1.15},
			{"Instagram Feed", 25, 1.05},
			{"Instagram Stories", 15, 0.9},
			{"Reels", 10, 0.85},
			{"Audience Network", 5, 0.6},
		},
	},
	models.PlatformTikTok: {
		models.DimPlacements: {
			{"For You Feed", 80, 1.05},
			{"Pangle", 12, 0.7},
			{"Search Ads", 8, 1.2},
		},
		models.DimDevices: {
			{"Mobile", 95, 1.0},
			{"Tablet", 5, 0.8},
		},
		models.DimAgeGroups: {
			{"18-24", 38, 1.1},
			{"25-34", 32, 1.05},
			{"35-44", 17, 0.9},
			{"45-54", 9, 0.8},
			{"55+", 4, 0.7},
		},
	},
	models.PlatformGoogle: {
		models.DimPlacements: {
			{"Search Network", 60, 1.2},
			{"Display Network", 25, 0.7},
			{"YouTube", 15, 0.85},
		},
		models.DimDevices: {
			{"Mobile", 55, 0.95},
			{"Desktop", 38, 1.15},
			{"Tablet", 7, 0.85},
		},
		models.DimKeywords: {
			{"Brand Terms", 30, 1.6},
			{"Product Category", 25, 1.1},
			{"Competitor Terms", 15, 0.7},
			{"Generic Long-Tail", 30, 0.9},
		},
		// Negative keyword shares split the wasted spend. They carry no
		// conversions or return.
		models.DimNegativeKeywords: {
			{"free", 40, 0},
			{"cheap", 25, 0},
			{"jobs", 20, 0},
			{"diy", 15, 0},
		},
		models.DimSearchTerms: {
			{"buy online", 35, 1.3},
			{"near me", 25, 1.1},
			{"sale", 20, 1.0},
			{"how to choose", 20, 0.6},
		},
		models.DimSchedule: {
			{"Mon-Fri 9am-5pm", 45, 1.1},
			{"Mon-Fri Evenings", 30, 1.05},
			{"Weekends", 25, 0.85},
		},
		models.DimIncome: {
			{"Top 10%", 20, 1.3},
			{"11-20%", 18, 1.15},
			{"21-30%", 17, 1.05},
			{"31-40%", 15, 0.95},
			{"41-50%", 14, 0.9},
			{"Lower 50%", 16, 0.75},
		},
		models.DimParentalStatus: {
			{"Parent", 40, 1.15},
			{"Not a Parent", 50, 0.95},
			{"Unknown", 10, 0.8},
		},
		models.DimAdGroups: {
			{"Brand", 30, 1.5},
			{"Generic", 40, 0.95},
			{"Competitor", 15, 0.7},
			{"Remarketing", 15, 1.4},
		},
	},
}

func tableFor(p models.Platform, d models.Dimension) []template {
	if !Supports(p, d) {
		return nil
	}
	if t, ok := platformTables[p][d]; ok {
		return t
	}
	return commonTables[d]
}
