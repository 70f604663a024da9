package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/reporting"
)

const productionColumns = `
	pr.id, pr.name, pr.product_id, COALESCE(p.name, ''), pr.weight, pr.price_per_kg, pr.total, pr.date, COALESCE(pr.zpl_template_path, '')
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduction(row rowScanner) (reporting.Production, error) {
	var (
		p         reporting.Production
		productID sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &productID, &p.ProductName, &p.Weight, &p.PricePerKg, &p.Total, &p.Date, &p.ZplTemplatePath); err != nil {
		return reporting.Production{}, err
	}
	p.ProductID = idPtr(productID)
	return p, nil
}

func (s *Store) InsertProduction(ctx context.Context, p reporting.Production) (reporting.Production, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO productions (name, product_id, weight, price_per_kg, total, date, zpl_template_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, nullableID(p.ProductID), p.Weight, p.PricePerKg, p.Total, p.Date.UTC(), nullableText(p.ZplTemplatePath))
	if err != nil {
		return reporting.Production{}, fmt.Errorf("insert production: %w", err)
	}

	if p.ID, err = result.LastInsertId(); err != nil {
		return reporting.Production{}, fmt.Errorf("production id: %w", err)
	}
	p.Date = p.Date.UTC()
	return p, nil
}

func (s *Store) Production(ctx context.Context, id int64) (reporting.Production, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productionColumns+`
		FROM productions pr
		LEFT JOIN products p ON p.id = pr.product_id
		WHERE pr.id = ?
	`, id)

	p, err := scanProduction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reporting.Production{}, catalog.NotFound("production", id)
	}
	if err != nil {
		return reporting.Production{}, fmt.Errorf("query production: %w", err)
	}
	return p, nil
}

// ProductionsBetween lists productions with start <= date <= end, newest first.
func (s *Store) ProductionsBetween(ctx context.Context, start, end time.Time) ([]reporting.Production, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productionColumns+`
		FROM productions pr
		LEFT JOIN products p ON p.id = pr.product_id
		WHERE pr.date >= ? AND pr.date <= ?
		ORDER BY pr.date DESC, pr.id DESC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query productions: %w", err)
	}
	defer rows.Close()

	productions := make([]reporting.Production, 0)
	for rows.Next() {
		p, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production: %w", err)
		}
		productions = append(productions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate productions: %w", err)
	}

	return productions, nil
}

func (s *Store) DeleteProduction(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM productions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete production: %w", err)
	}
	return affectedOne(result, "delete production")
}

func (s *Store) InsertCost(ctx context.Context, c reporting.Cost) (reporting.Cost, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO costs (production_id, production_name, total_cost, date, notes)
		VALUES (?, ?, ?, ?, ?)
	`, nullableID(c.ProductionID), c.ProductionName, c.TotalCost, c.Date.UTC(), nullableText(c.Notes))
	if err != nil {
		return reporting.Cost{}, fmt.Errorf("insert cost: %w", err)
	}

	if c.ID, err = result.LastInsertId(); err != nil {
		return reporting.Cost{}, fmt.Errorf("cost id: %w", err)
	}
	c.Date = c.Date.UTC()
	return c, nil
}

// CostsBetween lists costs with start <= date <= end, newest first.
func (s *Store) CostsBetween(ctx context.Context, start, end time.Time) ([]reporting.Cost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, production_id, production_name, total_cost, date, COALESCE(notes, '')
		FROM costs
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC, id DESC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query costs: %w", err)
	}
	defer rows.Close()

	costs := make([]reporting.Cost, 0)
	for rows.Next() {
		var (
			c            reporting.Cost
			productionID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &productionID, &c.ProductionName, &c.TotalCost, &c.Date, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan cost: %w", err)
		}
		c.ProductionID = idPtr(productionID)
		costs = append(costs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate costs: %w", err)
	}

	return costs, nil
}

func (s *Store) DeleteCost(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM costs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete cost: %w", err)
	}
	return affectedOne(result, "delete cost")
}
