package formulation

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"Ingredient", "Ratio %", "Weight (kg)", "Cost/kg", "Subtotal"}

// WriteCSV renders r as a spreadsheet-friendly table followed by a TOTAL row.
func WriteCSV(w io.Writer, r Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, line := range r.Ingredients {
		record := []string{
			line.IngredientName,
			line.Ratio.StringFixed(2),
			line.CalculatedWeightKg.StringFixed(4),
			line.CostPerKg.StringFixed(2),
			line.SubtotalCost.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	total := []string{"TOTAL", r.RatioTotal.StringFixed(2), r.TargetWeightKg.StringFixed(4), "", r.TotalEstimatedCost.StringFixed(2)}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("write csv total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
