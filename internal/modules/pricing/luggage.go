package pricing

import "github.com/shopspring/decimal"

type LuggageResult struct {
	Amount decimal.Decimal
	Info   LuggageInfo
}

// LuggageCharge bills bags beyond the included allowance. The amount is
// computed on the count clamped to MaxCapacity; Info.ExceedsMax tells the
// caller the request itself was over capacity.
func LuggageCharge(requested int, p LuggagePolicy) LuggageResult {
	if requested < 0 {
		requested = 0
	}
	effective := min(requested, p.MaxCapacity)
	paid := max(0, effective-p.IncludedFree)

	return LuggageResult{
		Amount: decimal.NewFromInt(int64(paid)).Mul(p.PricePerExtra).Round(2),
		Info: LuggageInfo{
			Total:      requested,
			Included:   p.IncludedFree,
			Paid:       paid,
			Max:        p.MaxCapacity,
			ExceedsMax: requested > p.MaxCapacity,
		},
	}
}
