package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/foodcost/internal/catalog"
)

// Ingredients

func (s *Store) CreateIngredient(ctx context.Context, in catalog.Ingredient) (catalog.Ingredient, error) {
	if err := in.Normalize(); err != nil {
		return catalog.Ingredient{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO ingredients (name, cost_per_kg)
		VALUES (?, ?)
	`, in.Name, in.CostPerKg)
	if err != nil {
		return catalog.Ingredient{}, fmt.Errorf("insert ingredient: %w", err)
	}

	if in.ID, err = result.LastInsertId(); err != nil {
		return catalog.Ingredient{}, fmt.Errorf("ingredient id: %w", err)
	}
	return in, nil
}

func (s *Store) UpdateIngredient(ctx context.Context, in catalog.Ingredient) (catalog.Ingredient, error) {
	if err := in.Normalize(); err != nil {
		return catalog.Ingredient{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE ingredients
		SET
			name = ?,
			cost_per_kg = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, in.Name, in.CostPerKg, in.ID)
	if err != nil {
		return catalog.Ingredient{}, fmt.Errorf("update ingredient: %w", err)
	}

	ok, err := affectedOne(result, "update ingredient")
	if err != nil {
		return catalog.Ingredient{}, err
	}
	if !ok {
		return catalog.Ingredient{}, catalog.NotFound("ingredient", in.ID)
	}
	return in, nil
}

// DeleteIngredient refuses to remove an ingredient still used by a formulation.
func (s *Store) DeleteIngredient(ctx context.Context, id int64) error {
	var used bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM product_formulations WHERE ingredient_id = ?)`, id).Scan(&used); err != nil {
		return fmt.Errorf("check ingredient usage: %w", err)
	}
	if used {
		return fmt.Errorf("ingredient %d is part of a formulation: %w", id, catalog.ErrInUse)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}

	ok, err := affectedOne(result, "delete ingredient")
	if err != nil {
		return err
	}
	if !ok {
		return catalog.NotFound("ingredient", id)
	}
	return nil
}

func (s *Store) Ingredient(ctx context.Context, id int64) (catalog.Ingredient, error) {
	var in catalog.Ingredient
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, cost_per_kg
		FROM ingredients
		WHERE id = ?
	`, id).Scan(&in.ID, &in.Name, &in.CostPerKg)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Ingredient{}, catalog.NotFound("ingredient", id)
	}
	if err != nil {
		return catalog.Ingredient{}, fmt.Errorf("query ingredient: %w", err)
	}
	return in, nil
}

func (s *Store) ListIngredients(ctx context.Context) ([]catalog.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cost_per_kg
		FROM ingredients
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]catalog.Ingredient, 0)
	for rows.Next() {
		var in catalog.Ingredient
		if err := rows.Scan(&in.ID, &in.Name, &in.CostPerKg); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return ingredients, nil
}

// Products

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if err := p.Normalize(); err != nil {
		return catalog.Product{}, err
	}
	if err := s.ensureLabelTemplate(ctx, p.DefaultLabelTemplateID); err != nil {
		return catalog.Product{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, default_gain_percentage, default_label_template_id, default_price_per_kg)
		VALUES (?, ?, ?, ?)
	`, p.Name, p.DefaultGainPercentage, nullableID(p.DefaultLabelTemplateID), p.DefaultPricePerKg)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}

	if p.ID, err = result.LastInsertId(); err != nil {
		return catalog.Product{}, fmt.Errorf("product id: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if err := p.Normalize(); err != nil {
		return catalog.Product{}, err
	}
	if err := s.ensureLabelTemplate(ctx, p.DefaultLabelTemplateID); err != nil {
		return catalog.Product{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET
			name = ?,
			default_gain_percentage = ?,
			default_label_template_id = ?,
			default_price_per_kg = ?
		WHERE id = ?
	`, p.Name, p.DefaultGainPercentage, nullableID(p.DefaultLabelTemplateID), p.DefaultPricePerKg, p.ID)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}

	ok, err := affectedOne(result, "update product")
	if err != nil {
		return catalog.Product{}, err
	}
	if !ok {
		return catalog.Product{}, catalog.NotFound("product", p.ID)
	}
	return p, nil
}

// DeleteProduct removes the product together with its formulation, batches and packs.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	ok, err := affectedOne(result, "delete product")
	if err != nil {
		return err
	}
	if !ok {
		return catalog.NotFound("product", id)
	}
	return nil
}

func (s *Store) Product(ctx context.Context, id int64) (catalog.Product, error) {
	var (
		p          catalog.Product
		templateID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, default_gain_percentage, default_label_template_id, default_price_per_kg
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.DefaultGainPercentage, &templateID, &p.DefaultPricePerKg)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.NotFound("product", id)
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("query product: %w", err)
	}
	p.DefaultLabelTemplateID = idPtr(templateID)
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, default_gain_percentage, default_label_template_id, default_price_per_kg
		FROM products
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		var (
			p          catalog.Product
			templateID sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultGainPercentage, &templateID, &p.DefaultPricePerKg); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.DefaultLabelTemplateID = idPtr(templateID)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Formulation entries

// AddFormulationEntry validates the ratio bound and both references before inserting.
func (s *Store) AddFormulationEntry(ctx context.Context, e catalog.FormulationEntry) (catalog.FormulationEntry, error) {
	if err := e.Validate(); err != nil {
		return catalog.FormulationEntry{}, err
	}
	if _, err := s.Product(ctx, e.ProductID); err != nil {
		return catalog.FormulationEntry{}, err
	}
	ingredient, err := s.Ingredient(ctx, e.IngredientID)
	if err != nil {
		return catalog.FormulationEntry{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO product_formulations (product_id, ingredient_id, ratio)
		VALUES (?, ?, ?)
	`, e.ProductID, e.IngredientID, e.Ratio)
	if err != nil {
		return catalog.FormulationEntry{}, fmt.Errorf("insert formulation entry: %w", err)
	}

	if e.ID, err = result.LastInsertId(); err != nil {
		return catalog.FormulationEntry{}, fmt.Errorf("formulation entry id: %w", err)
	}
	e.IngredientName = ingredient.Name
	e.CostPerKg = ingredient.CostPerKg
	return e, nil
}

func (s *Store) UpdateFormulationEntry(ctx context.Context, e catalog.FormulationEntry) (catalog.FormulationEntry, error) {
	if err := catalog.ValidateRatio(e.Ratio); err != nil {
		return catalog.FormulationEntry{}, err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE product_formulations SET ratio = ? WHERE id = ?`, e.Ratio, e.ID)
	if err != nil {
		return catalog.FormulationEntry{}, fmt.Errorf("update formulation entry: %w", err)
	}

	ok, err := affectedOne(result, "update formulation entry")
	if err != nil {
		return catalog.FormulationEntry{}, err
	}
	if !ok {
		return catalog.FormulationEntry{}, catalog.NotFound("formulation entry", e.ID)
	}
	return s.formulationEntry(ctx, e.ID)
}

func (s *Store) DeleteFormulationEntry(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM product_formulations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete formulation entry: %w", err)
	}

	ok, err := affectedOne(result, "delete formulation entry")
	if err != nil {
		return err
	}
	if !ok {
		return catalog.NotFound("formulation entry", id)
	}
	return nil
}

func (s *Store) formulationEntry(ctx context.Context, id int64) (catalog.FormulationEntry, error) {
	var e catalog.FormulationEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT pf.id, pf.product_id, pf.ingredient_id, i.name, i.cost_per_kg, pf.ratio
		FROM product_formulations pf
		JOIN ingredients i ON i.id = pf.ingredient_id
		WHERE pf.id = ?
	`, id).Scan(&e.ID, &e.ProductID, &e.IngredientID, &e.IngredientName, &e.CostPerKg, &e.Ratio)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.FormulationEntry{}, catalog.NotFound("formulation entry", id)
	}
	if err != nil {
		return catalog.FormulationEntry{}, fmt.Errorf("query formulation entry: %w", err)
	}
	return e, nil
}

// FormulationEntries lists a product's entries joined with the current
// ingredient name and cost, ordered by ingredient name.
func (s *Store) FormulationEntries(ctx context.Context, productID int64) ([]catalog.FormulationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pf.id, pf.product_id, pf.ingredient_id, i.name, i.cost_per_kg, pf.ratio
		FROM product_formulations pf
		JOIN ingredients i ON i.id = pf.ingredient_id
		WHERE pf.product_id = ?
		ORDER BY i.name, pf.id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("query formulation entries: %w", err)
	}
	defer rows.Close()

	entries := make([]catalog.FormulationEntry, 0)
	for rows.Next() {
		var e catalog.FormulationEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.IngredientID, &e.IngredientName, &e.CostPerKg, &e.Ratio); err != nil {
			return nil, fmt.Errorf("scan formulation entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formulation entries: %w", err)
	}

	return entries, nil
}

// Label templates

func (s *Store) ensureLabelTemplate(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.LabelTemplate(ctx, *id)
	return err
}

func (s *Store) CreateLabelTemplate(ctx context.Context, t catalog.LabelTemplate) (catalog.LabelTemplate, error) {
	if err := t.Normalize(); err != nil {
		return catalog.LabelTemplate{}, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO label_templates (name, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, t.Name, t.Content, now, now)
	if err != nil {
		return catalog.LabelTemplate{}, fmt.Errorf("insert label template: %w", err)
	}

	if t.ID, err = result.LastInsertId(); err != nil {
		return catalog.LabelTemplate{}, fmt.Errorf("label template id: %w", err)
	}
	t.CreatedAt, t.UpdatedAt = now, now
	return t, nil
}

func (s *Store) UpdateLabelTemplate(ctx context.Context, t catalog.LabelTemplate) (catalog.LabelTemplate, error) {
	if err := t.Normalize(); err != nil {
		return catalog.LabelTemplate{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE label_templates
		SET
			name = ?,
			content = ?,
			updated_at = ?
		WHERE id = ?
	`, t.Name, t.Content, time.Now().UTC(), t.ID)
	if err != nil {
		return catalog.LabelTemplate{}, fmt.Errorf("update label template: %w", err)
	}

	ok, err := affectedOne(result, "update label template")
	if err != nil {
		return catalog.LabelTemplate{}, err
	}
	if !ok {
		return catalog.LabelTemplate{}, catalog.NotFound("label template", t.ID)
	}
	return s.LabelTemplate(ctx, t.ID)
}

func (s *Store) DeleteLabelTemplate(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM label_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete label template: %w", err)
	}

	ok, err := affectedOne(result, "delete label template")
	if err != nil {
		return err
	}
	if !ok {
		return catalog.NotFound("label template", id)
	}
	return nil
}

func (s *Store) LabelTemplate(ctx context.Context, id int64) (catalog.LabelTemplate, error) {
	var t catalog.LabelTemplate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, content, created_at, updated_at
		FROM label_templates
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.LabelTemplate{}, catalog.NotFound("label template", id)
	}
	if err != nil {
		return catalog.LabelTemplate{}, fmt.Errorf("query label template: %w", err)
	}
	return t, nil
}

func (s *Store) ListLabelTemplates(ctx context.Context) ([]catalog.LabelTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, content, created_at, updated_at
		FROM label_templates
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query label templates: %w", err)
	}
	defer rows.Close()

	templates := make([]catalog.LabelTemplate, 0)
	for rows.Next() {
		var t catalog.LabelTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan label template: %w", err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label templates: %w", err)
	}

	return templates, nil
}
