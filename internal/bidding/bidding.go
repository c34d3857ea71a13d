// Package bidding turns segment performance into advisory bid adjustments.
// Nothing here mutates remote state; results only seed the values a person
// edits before a build is submitted.
package bidding

import (
	"math"
	"regexp"
	"strconv"

	"github.com/radiusdt/vector-insights/internal/models"
)

// Adjustment bounds, in signed percent.
const (
	MinAdjustment = -90
	MaxAdjustment = 900
	Step          = 5
)

var adjustmentPattern = regexp.MustCompile(`^\s*([+-]?\d+)`)

// ParseAdjustment reads the leading signed integer of a platform adjustment
// string such as "+15%" or "-20% (mobile)".
func ParseAdjustment(s string) (int, bool) {
	match := adjustmentPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}
	v, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// PeerAverage is the mean ROAS of the records that have any return.
func PeerAverage(records []models.SegmentRecord) (float64, bool) {
	var sum float64
	var n int
	for _, r := range records {
		if r.ROAS > 0 {
			sum += r.ROAS
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// SuggestBidAdjustment returns the platform-reported adjustment when the
// segment carries one, and otherwise the segment's ROAS deviation from its
// peers rounded to the nearest step. ok is false when neither is available.
func SuggestBidAdjustment(seg models.SegmentRecord, peerAverage float64) (int, bool) {
	if seg.PlatformBidAdjustment != "" {
		if v, ok := ParseAdjustment(seg.PlatformBidAdjustment); ok {
			return v, true
		}
	}
	if peerAverage <= 0 {
		return 0, false
	}
	deviation := (seg.ROAS - peerAverage) / peerAverage * 100
	return roundToStep(deviation), true
}

// Annotate returns a copy of records with SuggestedBidAdjustment filled in.
// Existing suggestions are kept but clamped. Dimensions that are not
// bid-adjustable get no suggestions at all.
func Annotate(records []models.SegmentRecord, d models.Dimension) []models.SegmentRecord {
	if records == nil {
		return nil
	}
	out := make([]models.SegmentRecord, len(records))
	copy(out, records)

	if !d.AdjustableByBid() {
		for i := range out {
			out[i].SuggestedBidAdjustment = nil
		}
		return out
	}

	peer, _ := PeerAverage(records)
	for i := range out {
		if out[i].SuggestedBidAdjustment != nil {
			v := Clamp(*out[i].SuggestedBidAdjustment)
			out[i].SuggestedBidAdjustment = &v
			continue
		}
		if v, ok := SuggestBidAdjustment(out[i], peer); ok {
			v = Clamp(v)
			out[i].SuggestedBidAdjustment = &v
		}
	}
	return out
}

// Clamp bounds a manual adjustment to the legal range.
func Clamp(v int) int {
	if v < MinAdjustment {
		return MinAdjustment
	}
	if v > MaxAdjustment {
		return MaxAdjustment
	}
	return v
}

// Increment raises an adjustment by one step.
func Increment(v int) int {
	return Clamp(v + Step)
}

// Decrement lowers an adjustment by one step.
func Decrement(v int) int {
	return Clamp(v - Step)
}

// Set applies a directly entered adjustment.
func Set(v int) int {
	return Clamp(v)
}

// roundToStep rounds half up, matching the stepper in the dashboard.
func roundToStep(v float64) int {
	return int(math.Floor(v/Step+0.5)) * Step
}
