// Package fee derives the marketplace's cut of a sale price from the
// seller's subscription tier, and computes wholesaler assignment fees.
//
// All functions are pure. Callers are responsible for rejecting negative
// prices before calling; the calculator does not validate its numeric input.
package fee

import "github.com/shopspring/decimal"

// Tier names a seller subscription level. Unrecognized values are billed
// as TierFree.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Percent returns the flat platform fee percentage for the tier.
func (t Tier) Percent() float64 {
	switch t {
	case TierPro:
		return 4
	case TierPremium:
		return 3
	default:
		return 5
	}
}

// Breakdown is the result of a platform fee calculation.
type Breakdown struct {
	Fee             float64
	FeePercent      float64
	NetToWholesaler float64
}

// Assignment is the wholesaler's margin between resale and contract price.
type Assignment struct {
	Fee        float64
	Percentage float64
}

// PlatformFee computes the marketplace fee on a sale. The fee is a flat
// (not bracketed) percentage of the sale price, rounded to cents.
func PlatformFee(salePrice float64, tier Tier) Breakdown {
	pct := tier.Percent()
	price := decimal.NewFromFloat(salePrice)
	cut := price.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)).Round(2)

	fee, _ := cut.Float64()
	net, _ := price.Sub(cut).Float64()

	return Breakdown{
		Fee:             fee,
		FeePercent:      pct,
		NetToWholesaler: net,
	}
}

// AssignmentFee computes the wholesaler's spread between the resale price
// and the original purchase price. A negative fee is a loss, not an error.
// Percentage is 0 when purchasePrice is not positive.
func AssignmentFee(salePrice, purchasePrice float64) Assignment {
	spread := decimal.NewFromFloat(salePrice).Sub(decimal.NewFromFloat(purchasePrice))
	fee, _ := spread.Float64()

	if purchasePrice <= 0 {
		return Assignment{Fee: fee}
	}

	pct, _ := spread.Div(decimal.NewFromFloat(purchasePrice)).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return Assignment{Fee: fee, Percentage: pct}
}
