// Package pricing maps an order quantity onto a product's volume tier.
package pricing

import "math"

const (
	// MinOrderQty is the smallest quantity buyers may order. Callers enforce it.
	MinOrderQty = 50

	Tier100Threshold = 100
	Tier200Threshold = 200
)

// Tiers holds the three unit prices of a product.
type Tiers struct {
	Price50  float64
	Price100 float64
	Price200 float64
}

// UnitPrice returns the unit price that applies to qty.
// Boundaries are inclusive-low: 100 selects tier100 and 200 selects tier200.
func UnitPrice(t Tiers, qty int) float64 {
	switch {
	case qty >= Tier200Threshold:
		return t.Price200
	case qty >= Tier100Threshold:
		return t.Price100
	default:
		return t.Price50
	}
}

// LineTotal is qty times the unit price for qty, rounded to cents.
func LineTotal(t Tiers, qty int) float64 {
	return RoundCents(float64(qty) * UnitPrice(t, qty))
}

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
