// Package formulation expands a product's ratio list into an absolute weight and
// cost breakdown for an arbitrary target weight.
package formulation

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

// ErrNoFormulation reports a product that exists but has no formulation entries.
var ErrNoFormulation = errors.New("no formulation")

var hundred = decimal.NewFromInt(100)

// Reader is the catalog view the engine needs.
type Reader interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
	FormulationEntries(ctx context.Context, productID int64) ([]catalog.FormulationEntry, error)
}

// IngredientLine is the expansion of one formulation entry.
type IngredientLine struct {
	IngredientID       int64           `json:"ingredientId"`
	IngredientName     string          `json:"ingredientName"`
	Ratio              decimal.Decimal `json:"ratio"`
	CalculatedWeightKg decimal.Decimal `json:"calculatedWeightKg"`
	CostPerKg          decimal.Decimal `json:"costPerKg"`
	SubtotalCost       decimal.Decimal `json:"subtotalCost"`
}

// Result is a formulation expanded at TargetWeightKg.
//
// RatioTotal is the proportion of the target weight the entries account for; it
// may be above or below 100 since ratios are only bounded per entry.
type Result struct {
	ProductID          int64            `json:"productId"`
	ProductName        string           `json:"productName"`
	TargetWeightKg     decimal.Decimal  `json:"targetWeightKg"`
	Ingredients        []IngredientLine `json:"ingredients"`
	TotalEstimatedCost decimal.Decimal  `json:"totalEstimatedCost"`
	RatioTotal         decimal.Decimal  `json:"ratioTotal"`
}

// Engine computes formulation expansions over the current catalog state.
type Engine struct {
	reader Reader
}

func NewEngine(reader Reader) *Engine {
	return &Engine{reader: reader}
}

// Expand computes weight and cost per ingredient for targetWeightKg. Zero and
// negative targets are computed, not rejected.
func (e *Engine) Expand(ctx context.Context, productID int64, targetWeightKg decimal.Decimal) (Result, error) {
	product, err := e.reader.Product(ctx, productID)
	if err != nil {
		return Result{}, fmt.Errorf("load product: %w", err)
	}

	entries, err := e.reader.FormulationEntries(ctx, productID)
	if err != nil {
		return Result{}, fmt.Errorf("load formulation entries: %w", err)
	}
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("product %q: %w", product.Name, ErrNoFormulation)
	}

	return Expand(product, entries, targetWeightKg), nil
}

// Expand is the pure computation behind Engine.Expand. Lines are ordered by
// ingredient name, then entry id.
func Expand(product catalog.Product, entries []catalog.FormulationEntry, targetWeightKg decimal.Decimal) Result {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b catalog.FormulationEntry) int {
		if c := cmp.Compare(a.IngredientName, b.IngredientName); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	result := Result{
		ProductID:          product.ID,
		ProductName:        product.Name,
		TargetWeightKg:     targetWeightKg,
		Ingredients:        make([]IngredientLine, 0, len(sorted)),
		TotalEstimatedCost: decimal.Zero,
		RatioTotal:         decimal.Zero,
	}

	for _, entry := range sorted {
		weight := targetWeightKg.Mul(entry.Ratio).Div(hundred)
		cost := weight.Mul(entry.CostPerKg)

		result.Ingredients = append(result.Ingredients, IngredientLine{
			IngredientID:       entry.IngredientID,
			IngredientName:     entry.IngredientName,
			Ratio:              entry.Ratio,
			CalculatedWeightKg: weight,
			CostPerKg:          entry.CostPerKg,
			SubtotalCost:       cost,
		})

		result.TotalEstimatedCost = result.TotalEstimatedCost.Add(cost)
		result.RatioTotal = result.RatioTotal.Add(entry.Ratio)
	}

	return result
}
