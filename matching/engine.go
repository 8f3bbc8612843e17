// Package matching scores deals against investor buy boxes and ranks the
// results in both directions: deals for an investor, investors for a deal.
package matching

import (
	"math"
	"sort"

	"dealflow/deal"
)

// Criterion weights. They sum to 1.0 at full match; the city bonus sits on
// top and is what makes the final clamp necessary.
const (
	WeightLocation     = 0.35
	WeightPropertyType = 0.20
	WeightBudget       = 0.30
	WeightReputation   = 0.15

	// CityBonus is added on top of the location weight when the preferred
	// cities also contain the deal's city.
	CityBonus = 0.05

	// MinMatchPercent is the floor below which results are excluded from
	// ranked output, dropping near-zero matches.
	MinMatchPercent = 20
)

// Reason labels, appended in this fixed order.
const (
	ReasonLocation     = "Located in a preferred state"
	ReasonCity         = "Located in a preferred city"
	ReasonPropertyType = "Matches preferred property type"
	ReasonBudget       = "Asking price within budget"
	ReasonReputation   = "Wholesaler meets reputation threshold"
)

// ScoreMatch scores a single deal snapshot against a preference set. All
// criteria are independent and additive, so adding a satisfied criterion
// never lowers the score. The snapshot must already carry the wholesaler's
// reputation; the engine performs no lookups.
func ScoreMatch(d deal.Deal, prefs Preferences) Result {
	result := Result{Reasons: []string{}}
	if prefs.IsEmpty() {
		return result
	}

	if containsString(prefs.States, d.State) {
		result.Score += WeightLocation
		result.Reasons = append(result.Reasons, ReasonLocation)
		if containsString(prefs.Cities, d.City) {
			result.Score += CityBonus
			result.Reasons = append(result.Reasons, ReasonCity)
		}
	}

	if len(prefs.PropertyTypes) == 0 || containsType(prefs.PropertyTypes, d.PropertyType) {
		result.Score += WeightPropertyType
		result.Reasons = append(result.Reasons, ReasonPropertyType)
	}

	maxPrice := prefs.MaxPrice
	if maxPrice <= 0 {
		maxPrice = math.Inf(1)
	}
	if d.AskingPrice >= prefs.MinPrice && d.AskingPrice <= maxPrice {
		result.Score += WeightBudget
		result.Reasons = append(result.Reasons, ReasonBudget)
	}

	if d.WholesalerReputation >= prefs.MinReputation {
		result.Score += WeightReputation
		result.Reasons = append(result.Reasons, ReasonReputation)
	}

	if result.Score > 1.0 {
		result.Score = 1.0
	}
	result.Percentage = int(math.Round(result.Score * 100))
	return result
}

// FindMatchesForInvestor scores every deal against the preferences, drops
// anything at or below MinMatchPercent, and ranks the rest best first.
// Ties break deterministically: newer deal first, then by id.
func FindMatchesForInvestor(deals []deal.Deal, prefs Preferences) []DealMatch {
	matches := make([]DealMatch, 0, len(deals))
	for _, d := range deals {
		result := ScoreMatch(d, prefs)
		if result.Percentage <= MinMatchPercent {
			continue
		}
		matches = append(matches, DealMatch{Deal: d, Result: result})
	}

	sortDealMatches(matches)
	return matches
}

func sortDealMatches(matches []DealMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Percentage != matches[j].Percentage {
			return matches[i].Percentage > matches[j].Percentage
		}
		if !matches[i].Deal.CreatedAt.Equal(matches[j].Deal.CreatedAt) {
			return matches[i].Deal.CreatedAt.After(matches[j].Deal.CreatedAt)
		}
		return matches[i].Deal.ID < matches[j].Deal.ID
	})
}

// FindMatchingInvestorsForDeal is the symmetric inverse: it ranks investors
// against one deal. Investors with no stated preferences are skipped, the
// same percentage floor applies, and ties break by investor id.
func FindMatchingInvestorsForDeal(d deal.Deal, investors []Investor) []InvestorMatch {
	matches := make([]InvestorMatch, 0, len(investors))
	for _, inv := range investors {
		if inv.Preferences.IsEmpty() {
			continue
		}
		result := ScoreMatch(d, inv.Preferences)
		if result.Percentage <= MinMatchPercent {
			continue
		}
		matches = append(matches, InvestorMatch{Investor: inv, Result: result})
	}

	sortInvestorMatches(matches)
	return matches
}

func sortInvestorMatches(matches []InvestorMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Percentage != matches[j].Percentage {
			return matches[i].Percentage > matches[j].Percentage
		}
		return matches[i].Investor.ID < matches[j].Investor.ID
	})
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsType(haystack []deal.PropertyType, needle deal.PropertyType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}
