package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

type DistanceResult struct {
	Amount             decimal.Decimal
	UsedThresholdFloor bool
}

// DistanceCharge prices distanceKm with the tariff. Trips shorter than a
// positive KmThreshold are charged MinPrice flat.
func DistanceCharge(distanceKm float64, t Tariff) DistanceResult {
	km := kilometres(distanceKm)
	if t.KmThreshold.IsPositive() && km.LessThan(t.KmThreshold) {
		return DistanceResult{Amount: t.MinPrice.Round(2), UsedThresholdFloor: true}
	}
	return DistanceResult{Amount: km.Mul(t.PricePerKm).Round(2)}
}

// kilometres converts a routing distance to a decimal, mapping NaN, infinite
// and negative values to zero.
func kilometres(distanceKm float64) decimal.Decimal {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(distanceKm)
}
