package formulation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

type fakeReader struct {
	products map[int64]catalog.Product
	entries  map[int64][]catalog.FormulationEntry
}

func (f *fakeReader) Product(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.NotFound("product", id)
	}
	return p, nil
}

func (f *fakeReader) FormulationEntries(_ context.Context, productID int64) ([]catalog.FormulationEntry, error) {
	return f.entries[productID], nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func vanillaCakeReader() *fakeReader {
	type row struct {
		name  string
		ratio string
		cost  string
	}
	rows := []row{
		{"Flour", "30", "2.50"},
		{"Sugar", "25", "1.80"},
		{"Butter", "20", "8.00"},
		{"Eggs", "15", "5.50"},
		{"Milk", "8", "1.20"},
		{"Baking Powder", "1", "12.00"},
		{"Vanilla Extract", "0.5", "15.00"},
		{"Salt", "0.5", "0.50"},
	}

	entries := make([]catalog.FormulationEntry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, catalog.FormulationEntry{
			ID:             int64(i + 1),
			ProductID:      1,
			IngredientID:   int64(i + 1),
			IngredientName: r.name,
			Ratio:          d(r.ratio),
			CostPerKg:      d(r.cost),
		})
	}

	return &fakeReader{
		products: map[int64]catalog.Product{
			1: {ID: 1, Name: "Vanilla Cake", DefaultGainPercentage: d("25")},
			2: {ID: 2, Name: "Empty Product"},
		},
		entries: map[int64][]catalog.FormulationEntry{1: entries},
	}
}

func lineByName(t *testing.T, r Result, name string) IngredientLine {
	t.Helper()
	for _, line := range r.Ingredients {
		if line.IngredientName == name {
			return line
		}
	}
	t.Fatalf("ingredient %q not found in %+v", name, r.Ingredients)
	return IngredientLine{}
}

func TestExpandVanillaCakeAtOneKilogram(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	result, err := engine.Expand(context.Background(), 1, d("1"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	if result.ProductName != "Vanilla Cake" || result.ProductID != 1 {
		t.Fatalf("unexpected product in result: %+v", result)
	}
	if len(result.Ingredients) != 8 {
		t.Fatalf("expected 8 ingredient lines, got %d", len(result.Ingredients))
	}

	flour := lineByName(t, result, "Flour")
	if !flour.CalculatedWeightKg.Equal(d("0.30")) || !flour.SubtotalCost.Equal(d("0.75")) {
		t.Fatalf("flour weight/cost = %s/%s, want 0.30/0.75", flour.CalculatedWeightKg, flour.SubtotalCost)
	}

	if !result.TotalEstimatedCost.Equal(d("3.9185")) {
		t.Fatalf("total cost = %s, want 3.9185", result.TotalEstimatedCost)
	}
	if !result.RatioTotal.Equal(d("100")) {
		t.Fatalf("ratio total = %s, want 100", result.RatioTotal)
	}
}

func TestExpandTotalEqualsSumOfLines(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	for _, weight := range []string{"0.25", "1", "2", "7.125", "13.3333"} {
		result, err := engine.Expand(context.Background(), 1, d(weight))
		if err != nil {
			t.Fatalf("Expand(%s): %v", weight, err)
		}

		sum := decimal.Zero
		for _, line := range result.Ingredients {
			sum = sum.Add(line.SubtotalCost)
		}
		if !sum.Equal(result.TotalEstimatedCost) {
			t.Fatalf("weight %s: sum of lines %s != total %s", weight, sum, result.TotalEstimatedCost)
		}
	}
}

func TestExpandScalesLinearly(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	result, err := engine.Expand(context.Background(), 1, d("2"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if !result.TotalEstimatedCost.Equal(d("7.837")) {
		t.Fatalf("total cost at 2kg = %s, want 7.837", result.TotalEstimatedCost)
	}
}

func TestExpandZeroWeightYieldsZeros(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	result, err := engine.Expand(context.Background(), 1, decimal.Zero)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	for _, line := range result.Ingredients {
		if !line.CalculatedWeightKg.IsZero() || !line.SubtotalCost.IsZero() {
			t.Fatalf("expected zero line, got %+v", line)
		}
	}
	if !result.TotalEstimatedCost.IsZero() {
		t.Fatalf("expected zero total, got %s", result.TotalEstimatedCost)
	}
}

func TestExpandNegativeWeightIsComputed(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	result, err := engine.Expand(context.Background(), 1, d("-1"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if !result.TotalEstimatedCost.Equal(d("-3.9185")) {
		t.Fatalf("total cost = %s, want -3.9185", result.TotalEstimatedCost)
	}
}

func TestExpandErrors(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	_, err := engine.Expand(context.Background(), 99, d("1"))
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing product, got %v", err)
	}

	_, err = engine.Expand(context.Background(), 2, d("1"))
	if !errors.Is(err, ErrNoFormulation) {
		t.Fatalf("expected ErrNoFormulation, got %v", err)
	}
	if errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("ErrNoFormulation must be distinct from ErrNotFound")
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	first, err := engine.Expand(context.Background(), 1, d("3.3"))
	if err != nil {
		t.Fatalf("first Expand: %v", err)
	}
	second, err := engine.Expand(context.Background(), 1, d("3.3"))
	if err != nil {
		t.Fatalf("second Expand: %v", err)
	}

	if len(first.Ingredients) != len(second.Ingredients) {
		t.Fatalf("line count differs: %d vs %d", len(first.Ingredients), len(second.Ingredients))
	}
	for i := range first.Ingredients {
		a, b := first.Ingredients[i], second.Ingredients[i]
		if a.IngredientID != b.IngredientID || a.CalculatedWeightKg.String() != b.CalculatedWeightKg.String() || a.SubtotalCost.String() != b.SubtotalCost.String() {
			t.Fatalf("line %d differs: %+v vs %+v", i, a, b)
		}
	}
	if first.TotalEstimatedCost.String() != second.TotalEstimatedCost.String() {
		t.Fatalf("totals differ: %s vs %s", first.TotalEstimatedCost, second.TotalEstimatedCost)
	}
}

func TestExpandOrdersByIngredientName(t *testing.T) {
	engine := NewEngine(vanillaCakeReader())

	result, err := engine.Expand(context.Background(), 1, d("1"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	for i := 1; i < len(result.Ingredients); i++ {
		if result.Ingredients[i-1].IngredientName > result.Ingredients[i].IngredientName {
			t.Fatalf("lines not sorted by name: %q before %q", result.Ingredients[i-1].IngredientName, result.Ingredients[i].IngredientName)
		}
	}
}

func TestExpandKeepsRatiosThatDoNotSumToHundred(t *testing.T) {
	reader := &fakeReader{
		products: map[int64]catalog.Product{5: {ID: 5, Name: "Loose"}},
		entries: map[int64][]catalog.FormulationEntry{5: {
			{ID: 1, ProductID: 5, IngredientID: 1, IngredientName: "A", Ratio: d("70"), CostPerKg: d("1")},
			{ID: 2, ProductID: 5, IngredientID: 2, IngredientName: "B", Ratio: d("60"), CostPerKg: d("2")},
		}},
	}

	result, err := NewEngine(reader).Expand(context.Background(), 5, d("10"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if !result.RatioTotal.Equal(d("130")) {
		t.Fatalf("ratio total = %s, want 130", result.RatioTotal)
	}
	if !result.TotalEstimatedCost.Equal(d("19")) {
		t.Fatalf("total cost = %s, want 19", result.TotalEstimatedCost)
	}
}

func TestWriteCSV(t *testing.T) {
	result, err := NewEngine(vanillaCakeReader()).Expand(context.Background(), 1, d("1"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, result); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected header + 8 rows + total, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Ingredient,Ratio %,Weight (kg),Cost/kg,Subtotal" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(buf.String(), "Flour,30.00,0.3000,2.50,0.75") {
		t.Fatalf("expected flour row, got:\n%s", buf.String())
	}
	if lines[9] != "TOTAL,100.00,1.0000,,3.92" {
		t.Fatalf("unexpected total row %q", lines[9])
	}
}
