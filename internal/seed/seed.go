package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultTemplateName = "Default Food Label"

const defaultTemplateContent = `^XA
^FO10,10^AAN,28,20^FD{ProductName}^FS
^FO10,50^AAN,20,15^FDWeight: {Weight}^FS
^FO10,80^AAN,20,15^FDPrice: {Price}^FS
^FO10,110^AAN,15,12^FDDate: {Date}^FS
^FO10,140^BY2,3,80^BC^FD{ProductName}^FS
^XZ`

type ingredient struct {
	name      string
	costPerKg string
}

type product struct {
	name        string
	gainPercent string
	recipe      []ratio
}

type ratio struct {
	ingredient string
	percent    string
}

var demoIngredients = []ingredient{
	{"Flour", "2.50"},
	{"Sugar", "1.80"},
	{"Butter", "8.00"},
	{"Eggs", "5.50"},
	{"Baking Powder", "12.00"},
	{"Vanilla Extract", "15.00"},
	{"Milk", "1.20"},
	{"Salt", "0.50"},
}

var demoProducts = []product{
	{
		name:        "Vanilla Cake",
		gainPercent: "25",
		recipe: []ratio{
			{"Flour", "30"}, {"Sugar", "25"}, {"Butter", "20"}, {"Eggs", "15"},
			{"Milk", "8"}, {"Baking Powder", "1"}, {"Vanilla Extract", "0.5"}, {"Salt", "0.5"},
		},
	},
	{
		name:        "Chocolate Cake",
		gainPercent: "30",
		recipe: []ratio{
			{"Flour", "28"}, {"Sugar", "30"}, {"Butter", "22"}, {"Eggs", "12"},
			{"Milk", "6"}, {"Baking Powder", "1.5"}, {"Salt", "0.5"},
		},
	},
	{
		name:        "Sugar Cookie",
		gainPercent: "20",
		recipe: []ratio{
			{"Flour", "35"}, {"Sugar", "25"}, {"Butter", "30"}, {"Eggs", "5"},
			{"Vanilla Extract", "1"}, {"Salt", "4"},
		},
	},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts the demo catalog in an idempotent way: rows that already exist
// by name are left untouched.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	templateID, err := ensureTemplate(ctx, tx, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	ingredientIDs := make(map[string]int64, len(demoIngredients))
	for _, in := range demoIngredients {
		id, err := ensureIngredient(ctx, tx, in, &stats)
		if err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		ingredientIDs[in.name] = id
	}

	for _, p := range demoProducts {
		if err := ensureProduct(ctx, tx, p, templateID, ingredientIDs, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// lookupID returns the id of the first row matching query, or 0 when none does.
func lookupID(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

func ensureTemplate(ctx context.Context, tx *sql.Tx, stats *Stats) (int64, error) {
	id, err := lookupID(ctx, tx, `SELECT id FROM label_templates WHERE name = ? LIMIT 1`, defaultTemplateName)
	if err != nil {
		return 0, fmt.Errorf("check default label template existence: %w", err)
	}
	if id != 0 {
		return id, nil
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO label_templates (name, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, defaultTemplateName, defaultTemplateContent, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert default label template: %w", err)
	}
	stats.Inserts++
	return result.LastInsertId()
}

func ensureIngredient(ctx context.Context, tx *sql.Tx, in ingredient, stats *Stats) (int64, error) {
	id, err := lookupID(ctx, tx, `SELECT id FROM ingredients WHERE name = ? LIMIT 1`, in.name)
	if err != nil {
		return 0, fmt.Errorf("check ingredient %s existence: %w", in.name, err)
	}
	if id != 0 {
		return id, nil
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO ingredients (name, cost_per_kg) VALUES (?, ?)`, in.name, in.costPerKg)
	if err != nil {
		return 0, fmt.Errorf("insert ingredient %s: %w", in.name, err)
	}
	stats.Inserts++
	return result.LastInsertId()
}

func ensureProduct(ctx context.Context, tx *sql.Tx, p product, templateID int64, ingredientIDs map[string]int64, stats *Stats) error {
	productID, err := lookupID(ctx, tx, `SELECT id FROM products WHERE name = ? LIMIT 1`, p.name)
	if err != nil {
		return fmt.Errorf("check product %s existence: %w", p.name, err)
	}

	if productID == 0 {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO products (name, default_gain_percentage, default_label_template_id, default_price_per_kg)
			VALUES (?, ?, ?, ?)
		`, p.name, p.gainPercent, templateID, "0")
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.name, err)
		}
		if productID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("product %s id: %w", p.name, err)
		}
		stats.Inserts++
	}

	for _, r := range p.recipe {
		ingredientID := ingredientIDs[r.ingredient]

		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1
				FROM product_formulations
				WHERE product_id = ? AND ingredient_id = ?
			)
		`, productID, ingredientID).Scan(&exists); err != nil {
			return fmt.Errorf("check formulation %s/%s existence: %w", p.name, r.ingredient, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_formulations (product_id, ingredient_id, ratio)
			VALUES (?, ?, ?)
		`, productID, ingredientID, r.percent); err != nil {
			return fmt.Errorf("insert formulation %s/%s: %w", p.name, r.ingredient, err)
		}
		stats.Inserts++
	}

	return nil
}
