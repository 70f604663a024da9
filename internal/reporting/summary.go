package reporting

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/pricing"
)

// NoProductKey groups records whose product or production reference is absent.
const NoProductKey = "no product"

// ProductGroup aggregates productions of one product.
type ProductGroup struct {
	ProductName string          `json:"productName"`
	TotalWeight decimal.Decimal `json:"totalWeight"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	Count       int             `json:"count"`
}

// ProductionGroup aggregates costs of one production name.
type ProductionGroup struct {
	ProductionName string          `json:"productionName"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Count          int             `json:"count"`
}

// PeriodSummary is the profit rollup of a date range. Sales are taken to be the
// production value.
type PeriodSummary struct {
	Start        time.Time         `json:"start"`
	End          time.Time         `json:"end"`
	TotalValue   decimal.Decimal   `json:"totalValue"`
	TotalWeight  decimal.Decimal   `json:"totalWeight"`
	TotalCosts   decimal.Decimal   `json:"totalCosts"`
	Profit       decimal.Decimal   `json:"profit"`
	ProfitMargin decimal.Decimal   `json:"profitMargin"`
	ByProduct    []ProductGroup    `json:"byProduct"`
	ByProduction []ProductionGroup `json:"byProduction"`
}

// DayRange widens start to 00:00:00 and end to 23:59:59 of their calendar days
// and returns both in UTC.
func DayRange(start, end time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).
		AddDate(0, 0, 1).
		Add(-time.Second)
	return from.UTC(), to.UTC()
}

// Summarize aggregates already-filtered productions and costs. No record is
// dropped: missing references fall into the NoProductKey group.
func Summarize(productions []Production, costs []Cost) PeriodSummary {
	summary := PeriodSummary{
		TotalValue:   decimal.Zero,
		TotalWeight:  decimal.Zero,
		TotalCosts:   decimal.Zero,
		ByProduct:    make([]ProductGroup, 0),
		ByProduction: make([]ProductionGroup, 0),
	}

	byProduct := map[string]*ProductGroup{}
	for _, p := range productions {
		summary.TotalValue = summary.TotalValue.Add(p.Total)
		summary.TotalWeight = summary.TotalWeight.Add(p.Weight)

		key := p.ProductName
		if p.ProductID == nil || key == "" {
			key = NoProductKey
		}
		group, ok := byProduct[key]
		if !ok {
			group = &ProductGroup{ProductName: key, TotalWeight: decimal.Zero, TotalValue: decimal.Zero}
			byProduct[key] = group
		}
		group.TotalWeight = group.TotalWeight.Add(p.Weight)
		group.TotalValue = group.TotalValue.Add(p.Total)
		group.Count++
	}

	byProduction := map[string]*ProductionGroup{}
	for _, c := range costs {
		summary.TotalCosts = summary.TotalCosts.Add(c.TotalCost)

		key := c.ProductionName
		if key == "" {
			key = NoProductKey
		}
		group, ok := byProduction[key]
		if !ok {
			group = &ProductionGroup{ProductionName: key, TotalCost: decimal.Zero}
			byProduction[key] = group
		}
		group.TotalCost = group.TotalCost.Add(c.TotalCost)
		group.Count++
	}

	for _, g := range byProduct {
		summary.ByProduct = append(summary.ByProduct, *g)
	}
	slices.SortFunc(summary.ByProduct, func(a, b ProductGroup) int { return cmp.Compare(a.ProductName, b.ProductName) })

	for _, g := range byProduction {
		summary.ByProduction = append(summary.ByProduction, *g)
	}
	slices.SortFunc(summary.ByProduction, func(a, b ProductionGroup) int { return cmp.Compare(a.ProductionName, b.ProductionName) })

	summary.Profit = summary.TotalValue.Sub(summary.TotalCosts)
	summary.ProfitMargin = pricing.ProfitMargin(summary.Profit, summary.TotalValue)

	return summary
}
