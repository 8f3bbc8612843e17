package matching

import (
	"dealflow/deal"
)

// Preferences is an investor's stated buy box. Zero values mean "no
// constraint": an empty PropertyTypes set is a wildcard, a zero MaxPrice is
// an open-ended budget, a zero MinReputation accepts anyone.
type Preferences struct {
	States        []string
	Cities        []string
	PropertyTypes []deal.PropertyType
	MinPrice      float64
	MaxPrice      float64
	MinReputation float64
}

// IsEmpty reports whether no preference at all has been stated. An investor
// with empty preferences matches nothing rather than everything.
func (p Preferences) IsEmpty() bool {
	return len(p.States) == 0 &&
		len(p.Cities) == 0 &&
		len(p.PropertyTypes) == 0 &&
		p.MinPrice == 0 &&
		p.MaxPrice == 0 &&
		p.MinReputation == 0
}

// Investor pairs an investor id with their stated preferences for the
// inverse ranking direction.
type Investor struct {
	ID          string
	Preferences Preferences
}

// Result is the outcome of scoring one deal against one preference set.
// Percentage is always round(score*100) with score clamped to [0,1].
type Result struct {
	Score      float64
	Percentage int
	Reasons    []string
}

// DealMatch is one ranked entry for an investor browsing deals.
type DealMatch struct {
	Deal deal.Deal
	Result
}

// InvestorMatch is one ranked entry for a wholesaler looking for buyers.
type InvestorMatch struct {
	Investor Investor
	Result
}
