package estimate

import (
	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
)

var one = decimal.NewFromInt(1)

// Range returns the band round(total × (1 ∓ percent)), rounding half away from zero
func Range(total, percent decimal.Decimal) types.PriceRange {
	return types.PriceRange{
		Min: total.Mul(one.Sub(percent)).Round(0).IntPart(),
		Max: total.Mul(one.Add(percent)).Round(0).IntPart(),
	}
}
