package pricing

import "github.com/shopspring/decimal"

// CurrencyPlaces is the minor-unit precision prices are rounded to.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Breakdown contains the intermediate values of a pack price calculation.
type Breakdown struct {
	BaseCost decimal.Decimal
	Margin   decimal.Decimal
	Price    decimal.Decimal
}

// Calculate applies marginPercent to an ingredient base cost. Price is rounded
// to the currency precision; Margin is left unrounded.
func Calculate(baseCost, marginPercent decimal.Decimal) Breakdown {
	margin := baseCost.Mul(marginPercent).Div(hundred)
	return Breakdown{
		BaseCost: baseCost,
		Margin:   margin,
		Price:    RoundCurrency(baseCost.Add(margin)),
	}
}

// PackPrice returns baseCost * (1 + marginPercent/100) rounded to the currency precision.
func PackPrice(baseCost, marginPercent decimal.Decimal) decimal.Decimal {
	return Calculate(baseCost, marginPercent).Price
}

// WeightTotal prices a weighed item at a per-kilogram rate.
func WeightTotal(weightKg, pricePerKg decimal.Decimal) decimal.Decimal {
	return RoundCurrency(weightKg.Mul(pricePerKg))
}

// RoundCurrency rounds half away from zero to CurrencyPlaces.
func RoundCurrency(v decimal.Decimal) decimal.Decimal {
	return v.Round(CurrencyPlaces)
}

// ProfitMargin returns profit as a percentage of value, or 0 when value is zero.
func ProfitMargin(profit, value decimal.Decimal) decimal.Decimal {
	if value.IsZero() {
		return decimal.Zero
	}
	return profit.Div(value).Mul(hundred).Round(CurrencyPlaces)
}
