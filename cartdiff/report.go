// CLAUDE:SUMMARY Total helper functions over a computed CartDiff: attention checks, substitution list, summaries.
package cartdiff

import (
	"fmt"
	"math"
	"strings"

	"github.com/hazyhaar/cartwatch/snapshot"
)

// HasChanges reports whether the diff contains any categorized change.
func HasChanges(d *CartDiff) bool {
	return len(d.Added) > 0 ||
		len(d.Removed) > 0 ||
		len(d.QuantityChanged) > 0 ||
		len(d.PriceChanged) > 0 ||
		len(d.NowUnavailable) > 0
}

// RequiresUserAttention reports whether the diff should block an automated
// flow and be put in front of a person: any unavailability, any removal,
// or an absolute price delta above the threshold.
func RequiresUserAttention(d *CartDiff, priceThreshold float64) bool {
	if len(d.NowUnavailable) > 0 || len(d.Removed) > 0 {
		return true
	}
	return math.Abs(d.Summary.PriceDifference) > priceThreshold
}

// ItemsNeedingSubstitution returns the unavailable items that came from the
// original order, the ones a shopper would look for a replacement for.
func ItemsNeedingSubstitution(d *CartDiff) []snapshot.CartItem {
	var out []snapshot.CartItem
	for _, it := range d.NowUnavailable {
		if it.FromOriginalOrder {
			out = append(out, it)
		}
	}
	return out
}

// AvailabilityPercentage returns how much of the baseline survived into the
// current cart as available, in percent. An empty baseline counts as fully
// available.
func AvailabilityPercentage(d *CartDiff, baselineTotal int) float64 {
	if baselineTotal <= 0 {
		return 100
	}
	missing := len(d.Removed) + len(d.NowUnavailable)
	if missing >= baselineTotal {
		return 0
	}
	return snapshot.Round2(float64(baselineTotal-missing) / float64(baselineTotal) * 100)
}

// Describe renders a short human-readable summary of the diff.
func Describe(d *CartDiff) string {
	if !HasChanges(d) {
		return "no changes"
	}
	var parts []string
	if n := d.Summary.AddedCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := d.Summary.RemovedCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := d.Summary.QuantityChangedCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d quantity changed", n))
	}
	if n := d.Summary.PriceChangedCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d price changed", n))
	}
	if n := d.Summary.UnavailableCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d unavailable", n))
	}
	s := strings.Join(parts, ", ")
	if d.Summary.PriceDifference != 0 {
		s += fmt.Sprintf("; price difference %+.2f", d.Summary.PriceDifference)
	}
	return s
}
