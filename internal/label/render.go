// Package label renders ZPL label templates and ships them to a network
// printer, falling back to files on disk.
package label

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of the {Date} placeholder.
const DateLayout = "2006-01-02 15:04"

// Render substitutes the closed placeholder set into template. Values are not
// escaped.
func Render(template, productName string, weightKg, price decimal.Decimal, date time.Time, currency string) string {
	r := strings.NewReplacer(
		"{ProductName}", productName,
		"{Weight}", FormatWeight(weightKg),
		"{Price}", FormatPrice(price, currency),
		"{Date}", date.Format(DateLayout),
	)
	return r.Replace(template)
}

// FormatWeight renders kilograms with two decimals, e.g. "2.00kg".
func FormatWeight(weightKg decimal.Decimal) string {
	return weightKg.StringFixed(2) + "kg"
}

// FormatPrice renders an amount with two decimals behind the currency symbol.
// Negative amounts carry the sign before the symbol: "-$1.00".
func FormatPrice(price decimal.Decimal, currency string) string {
	if price.IsNegative() {
		return "-" + currency + price.Neg().StringFixed(2)
	}
	return currency + price.StringFixed(2)
}
