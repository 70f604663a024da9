package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the read-side rollup of a batch.
type Summary struct {
	BatchID        int64           `json:"batchId"`
	ProductID      int64           `json:"productId"`
	ProductName    string          `json:"productName"`
	StartDate      time.Time       `json:"startDate"`
	GainPercentage decimal.Decimal `json:"gainPercentage"`
	TotalPacks     int             `json:"totalPacks"`
	TotalWeight    decimal.Decimal `json:"totalWeight"`
	AverageYield   decimal.Decimal `json:"averageYield"`
	TotalValue     decimal.Decimal `json:"totalValue"`
	PrintedPacks   int             `json:"printedPacks"`
	BaselineCost   decimal.Decimal `json:"baselineCost"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Notes          string          `json:"notes,omitempty"`
}

// Summarize computes counts and totals over packs. Aggregation does not depend
// on pack order; AverageYield is 0 for an empty batch.
func Summarize(batch Batch, packs []Pack) Summary {
	summary := Summary{
		BatchID:        batch.ID,
		ProductID:      batch.ProductID,
		ProductName:    batch.ProductName,
		StartDate:      batch.StartDate,
		GainPercentage: batch.GainPercentage,
		TotalPacks:     len(packs),
		TotalWeight:    decimal.Zero,
		AverageYield:   decimal.Zero,
		TotalValue:     decimal.Zero,
		BaselineCost:   batch.BaselineCost,
		TotalCost:      batch.TotalCost,
		Notes:          batch.Notes,
	}
	if summary.ProductName == "" {
		summary.ProductName = "Unknown"
	}

	for _, p := range packs {
		summary.TotalWeight = summary.TotalWeight.Add(p.WeightKg)
		summary.TotalValue = summary.TotalValue.Add(p.Price)
		if p.Printed {
			summary.PrintedPacks++
		}
	}

	if summary.TotalPacks > 0 {
		summary.AverageYield = summary.TotalWeight.Div(decimal.NewFromInt(int64(summary.TotalPacks)))
	}

	return summary
}
