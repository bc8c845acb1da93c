package realtime

import (
	"slices"
	"time"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/geo"
)

const (
	hotDealPrefix = "Hot deal alert! "
	mealGlyph     = "🍽️"
	snackGlyph    = "🍪"
)

// ShouldNotify applies a session's preferences to a new listing. Checks run in order and
// the first failing one excludes the user; minimal frequency always ends on the hot-deal gate.
func ShouldNotify(l *entity.Listing, p Preferences, now time.Time) bool {
	if !p.RealTimeUpdates {
		return false
	}

	if len(p.Categories) > 0 && !slices.Contains(p.Categories, l.Category) {
		return false
	}

	if p.PriceRange == PriceRangeFree && !l.IsFree {
		return false
	}

	if p.HotDealsOnly && !l.IsHotDeal(now) {
		return false
	}

	if p.Frequency == FrequencyMinimal {
		return l.IsHotDeal(now)
	}

	return true
}

// PersonalizedMessage renders the notification line for a listing seen from distance meters.
func PersonalizedMessage(l *entity.Listing, distance float64, now time.Time) string {
	urgency := ""
	if l.IsHotDeal(now) {
		urgency = hotDealPrefix
	}

	glyph := snackGlyph
	if l.Category == entity.CategoryMeal {
		glyph = mealGlyph
	}

	return urgency + glyph + " " + l.Title + " is " + geo.DistanceText(distance)
}
