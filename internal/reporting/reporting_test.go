package reporting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

type memStore struct {
	mu          sync.Mutex
	products    map[int64]catalog.Product
	productions []Production
	costs       []Cost
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		products: map[int64]catalog.Product{
			1: {ID: 1, Name: "Vanilla Cake", DefaultPricePerKg: decimal.RequireFromString("25")},
		},
		nextID: 10,
	}
}

func (m *memStore) Product(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, catalog.NotFound("product", id)
	}
	return p, nil
}

func (m *memStore) InsertProduction(_ context.Context, p Production) (Production, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.productions = append(m.productions, p)
	return p, nil
}

func (m *memStore) Production(_ context.Context, id int64) (Production, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.productions {
		if p.ID == id {
			return p, nil
		}
	}
	return Production{}, catalog.NotFound("production", id)
}

func (m *memStore) ProductionsBetween(_ context.Context, start, end time.Time) ([]Production, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Production, 0)
	for _, p := range m.productions {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) DeleteProduction(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.productions {
		if p.ID == id {
			m.productions = append(m.productions[:i], m.productions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertCost(_ context.Context, c Cost) (Cost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.costs = append(m.costs, c)
	return c, nil
}

func (m *memStore) CostsBetween(_ context.Context, start, end time.Time) ([]Cost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Cost, 0)
	for _, c := range m.costs {
		if !c.Date.Before(start) && !c.Date.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) DeleteCost(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.costs {
		if c.ID == id {
			m.costs = append(m.costs[:i], m.costs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", field, got, want)
	}
}

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func TestRecordProductionComputesRoundedTotal(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.RecordProduction(context.Background(), ProductionInput{
		Name:       "Bread",
		Weight:     dec(t, "1.333"),
		PricePerKg: decPtr(t, "3"),
	})
	if err != nil {
		t.Fatalf("record production: %v", err)
	}

	assertDecimal(t, "total", p.Total, "4")
	if p.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if !p.Date.Equal(fixedNow) {
		t.Fatalf("date = %v, want %v", p.Date, fixedNow)
	}
}

func TestRecordProductionUsesProductDefaults(t *testing.T) {
	svc, _ := newTestService()
	productID := int64(1)

	p, err := svc.RecordProduction(context.Background(), ProductionInput{
		ProductID: &productID,
		Weight:    dec(t, "0.5"),
	})
	if err != nil {
		t.Fatalf("record production: %v", err)
	}

	if p.Name != "Vanilla Cake" || p.ProductName != "Vanilla Cake" {
		t.Fatalf("names = %q/%q, want Vanilla Cake", p.Name, p.ProductName)
	}
	assertDecimal(t, "pricePerKg", p.PricePerKg, "25")
	assertDecimal(t, "total", p.Total, "12.5")
}

func TestRecordProductionValidation(t *testing.T) {
	svc, store := newTestService()
	missing := int64(99)

	tests := []struct {
		name string
		in   ProductionInput
	}{
		{name: "blank name", in: ProductionInput{Name: "  ", Weight: dec(t, "1"), PricePerKg: decPtr(t, "1")}},
		{name: "zero weight", in: ProductionInput{Name: "Bread", Weight: decimal.Zero, PricePerKg: decPtr(t, "1")}},
		{name: "negative weight", in: ProductionInput{Name: "Bread", Weight: dec(t, "-1"), PricePerKg: decPtr(t, "1")}},
		{name: "negative price", in: ProductionInput{Name: "Bread", Weight: dec(t, "1"), PricePerKg: decPtr(t, "-0.01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordProduction(context.Background(), tt.in)
			if !catalog.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	_, err := svc.RecordProduction(context.Background(), ProductionInput{ProductID: &missing, Weight: dec(t, "1")})
	if !catalog.IsNotFound(err) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	if len(store.productions) != 0 {
		t.Fatalf("expected nothing persisted, got %d productions", len(store.productions))
	}
}

func TestRecordCostCopiesProductionName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.RecordProduction(ctx, ProductionInput{Name: "Bread", Weight: dec(t, "2"), PricePerKg: decPtr(t, "3")})
	if err != nil {
		t.Fatalf("record production: %v", err)
	}

	c, err := svc.RecordCost(ctx, CostInput{ProductionID: &p.ID, TotalCost: dec(t, "4.20"), Notes: " flour "})
	if err != nil {
		t.Fatalf("record cost: %v", err)
	}
	if c.ProductionName != "Bread" {
		t.Fatalf("productionName = %q, want Bread", c.ProductionName)
	}
	if c.Notes != "flour" {
		t.Fatalf("notes = %q, want trimmed", c.Notes)
	}

	if _, err := svc.RecordCost(ctx, CostInput{TotalCost: dec(t, "1")}); !catalog.IsValidation(err) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.RecordCost(ctx, CostInput{ProductionName: "x", TotalCost: dec(t, "-1")}); !catalog.IsValidation(err) {
		t.Fatalf("expected validation error for negative cost, got %v", err)
	}
}

func TestDeleteReturnsNotFound(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.DeleteCost(context.Background(), 404); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.DeleteProduction(context.Background(), 404); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDayRangeIsInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	end := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	from, to := DayRange(start, end)

	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("from = %v, want %v", from, want)
	}
	if want := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC); !to.Equal(want) {
		t.Fatalf("to = %v, want %v", to, want)
	}
}

func TestPeriodSummary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	productID := int64(1)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	record := func(in ProductionInput) Production {
		t.Helper()
		p, err := svc.RecordProduction(ctx, in)
		if err != nil {
			t.Fatalf("record production: %v", err)
		}
		return p
	}

	record(ProductionInput{ProductID: &productID, Weight: dec(t, "2"), Date: day.Add(9 * time.Hour)})
	record(ProductionInput{ProductID: &productID, Weight: dec(t, "1"), Date: day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)})
	bread := record(ProductionInput{Name: "Bread", Weight: dec(t, "3"), PricePerKg: decPtr(t, "10"), Date: day})
	record(ProductionInput{Name: "Outside", Weight: dec(t, "5"), PricePerKg: decPtr(t, "10"), Date: day.AddDate(0, 0, 1)})

	if _, err := svc.RecordCost(ctx, CostInput{ProductionID: &bread.ID, TotalCost: dec(t, "20"), Date: day.Add(time.Hour)}); err != nil {
		t.Fatalf("record cost: %v", err)
	}
	if _, err := svc.RecordCost(ctx, CostInput{ProductionName: "Rent", TotalCost: dec(t, "15"), Date: day.Add(2 * time.Hour)}); err != nil {
		t.Fatalf("record cost: %v", err)
	}

	summary, err := svc.PeriodSummary(ctx, day.Add(12*time.Hour), day.Add(time.Hour))
	if err != nil {
		t.Fatalf("period summary: %v", err)
	}

	// 2*25 + 1*25 + 3*10
	assertDecimal(t, "totalValue", summary.TotalValue, "105")
	assertDecimal(t, "totalWeight", summary.TotalWeight, "6")
	assertDecimal(t, "totalCosts", summary.TotalCosts, "35")
	assertDecimal(t, "profit", summary.Profit, "70")
	assertDecimal(t, "profitMargin", summary.ProfitMargin, "66.67")

	if len(summary.ByProduct) != 2 {
		t.Fatalf("expected 2 product groups, got %d", len(summary.ByProduct))
	}
	if summary.ByProduct[0].ProductName != "Vanilla Cake" || summary.ByProduct[0].Count != 2 {
		t.Fatalf("unexpected first group: %+v", summary.ByProduct[0])
	}
	assertDecimal(t, "vanilla value", summary.ByProduct[0].TotalValue, "75")
	if summary.ByProduct[1].ProductName != NoProductKey {
		t.Fatalf("expected %q group, got %q", NoProductKey, summary.ByProduct[1].ProductName)
	}

	if len(summary.ByProduction) != 2 {
		t.Fatalf("expected 2 production groups, got %d", len(summary.ByProduction))
	}
	if summary.ByProduction[0].ProductionName != "Bread" || summary.ByProduction[1].ProductionName != "Rent" {
		t.Fatalf("unexpected production groups: %+v", summary.ByProduction)
	}
}

func TestSummarizeEmptyPeriod(t *testing.T) {
	summary := Summarize(nil, nil)

	if !summary.TotalValue.IsZero() || !summary.Profit.IsZero() {
		t.Fatalf("expected zero totals, got %+v", summary)
	}
	if !summary.ProfitMargin.IsZero() {
		t.Fatalf("profitMargin = %s, want 0", summary.ProfitMargin)
	}
	if summary.ByProduct == nil || summary.ByProduction == nil {
		t.Fatalf("expected empty groups, not nil")
	}
}

func TestSummarizeCostsOnlyHasZeroMargin(t *testing.T) {
	summary := Summarize(nil, []Cost{{ProductionName: "Rent", TotalCost: decimal.NewFromInt(10)}})

	assertDecimal(t, "profit", summary.Profit, "-10")
	if !summary.ProfitMargin.IsZero() {
		t.Fatalf("profitMargin = %s, want 0 when value is zero", summary.ProfitMargin)
	}
}

func TestSchedulerDailyReport(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RecordProduction(ctx, ProductionInput{Name: "Bread", Weight: dec(t, "1"), PricePerKg: decPtr(t, "4")}); err != nil {
		t.Fatalf("record production: %v", err)
	}

	scheduler := NewScheduler("0 6 * * *", time.UTC, svc, nil)
	summary, err := scheduler.DailyReport(ctx, fixedNow)
	if err != nil {
		t.Fatalf("daily report: %v", err)
	}
	assertDecimal(t, "totalValue", summary.TotalValue, "4")
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	svc, _ := newTestService()
	scheduler := NewScheduler("not a cron spec", nil, svc, nil)

	if err := scheduler.Start(); err == nil {
		scheduler.Stop()
		t.Fatalf("expected error for invalid spec")
	}
}
