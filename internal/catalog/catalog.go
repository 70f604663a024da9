// Package catalog holds the operator-edited records the costing engine reads:
// ingredients with a cost per kilogram, products, their formulation entries and
// the label templates products print with.
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ingredient is a raw material priced per kilogram.
type Ingredient struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	CostPerKg decimal.Decimal `json:"costPerKg"`
}

// Product is a sellable item with an optional recipe.
type Product struct {
	ID                     int64           `json:"id"`
	Name                   string          `json:"name"`
	DefaultGainPercentage  decimal.Decimal `json:"defaultGainPercentage"`
	DefaultLabelTemplateID *int64          `json:"defaultLabelTemplateId,omitempty"`
	DefaultPricePerKg      decimal.Decimal `json:"defaultPricePerKg"`
}

// FormulationEntry attributes Ratio percent of a product's target weight to one ingredient.
// Ratios of a product are not required to sum to 100.
type FormulationEntry struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"productId"`
	IngredientID   int64           `json:"ingredientId"`
	IngredientName string          `json:"ingredientName,omitempty"`
	CostPerKg      decimal.Decimal `json:"costPerKg"`
	Ratio          decimal.Decimal `json:"ratio"`
}

// LabelTemplate is opaque ZPL text with {ProductName}, {Weight}, {Price} and {Date} placeholders.
type LabelTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims the name and validates the cost.
func (i *Ingredient) Normalize() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return Validation("name", "is required")
	}
	if i.CostPerKg.IsNegative() {
		return Validation("costPerKg", "must be greater than or equal to 0")
	}
	return nil
}

// Normalize trims the name and validates the default prices.
func (p *Product) Normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Validation("name", "is required")
	}
	if p.DefaultPricePerKg.IsNegative() {
		return Validation("defaultPricePerKg", "must be greater than or equal to 0")
	}
	if p.DefaultLabelTemplateID != nil && *p.DefaultLabelTemplateID <= 0 {
		p.DefaultLabelTemplateID = nil
	}
	return nil
}

// Validate enforces the per-entry ratio bound of 0 to 100.
func (e FormulationEntry) Validate() error {
	if e.ProductID <= 0 {
		return Validation("productId", "is required")
	}
	if e.IngredientID <= 0 {
		return Validation("ingredientId", "is required")
	}
	return ValidateRatio(e.Ratio)
}

// ValidateRatio reports whether ratio lies in [0, 100].
func ValidateRatio(ratio decimal.Decimal) error {
	if ratio.IsNegative() || ratio.GreaterThan(hundred) {
		return Validation("ratio", "must be between 0 and 100")
	}
	return nil
}

// Normalize trims the name and requires content.
func (t *LabelTemplate) Normalize() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return Validation("name", "is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		return Validation("content", "is required")
	}
	return nil
}
