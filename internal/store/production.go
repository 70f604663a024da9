package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/production"
)

func (s *Store) CreateBatch(ctx context.Context, b production.Batch) (production.Batch, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO production_batches (product_id, start_date, gain_percentage, baseline_cost, notes)
		VALUES (?, ?, ?, ?, ?)
	`, b.ProductID, b.StartDate.UTC(), b.GainPercentage, b.BaselineCost, nullableText(b.Notes))
	if err != nil {
		return production.Batch{}, fmt.Errorf("insert batch: %w", err)
	}

	if b.ID, err = result.LastInsertId(); err != nil {
		return production.Batch{}, fmt.Errorf("batch id: %w", err)
	}
	return b, nil
}

// Batch loads a batch and derives TotalCost from the base cost of its packs.
func (s *Store) Batch(ctx context.Context, id int64) (production.Batch, error) {
	var b production.Batch
	err := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.product_id, COALESCE(p.name, ''), b.start_date, b.gain_percentage, b.baseline_cost, COALESCE(b.notes, '')
		FROM production_batches b
		LEFT JOIN products p ON p.id = b.product_id
		WHERE b.id = ?
	`, id).Scan(&b.ID, &b.ProductID, &b.ProductName, &b.StartDate, &b.GainPercentage, &b.BaselineCost, &b.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Batch{}, catalog.NotFound("batch", id)
	}
	if err != nil {
		return production.Batch{}, fmt.Errorf("query batch: %w", err)
	}

	if b.TotalCost, err = s.batchTotalCost(ctx, id); err != nil {
		return production.Batch{}, err
	}
	return b, nil
}

func (s *Store) batchTotalCost(ctx context.Context, batchID int64) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT base_cost FROM packs WHERE batch_id = ?`, batchID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query pack costs: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var cost decimal.Decimal
		if err := rows.Scan(&cost); err != nil {
			return decimal.Zero, fmt.Errorf("scan pack cost: %w", err)
		}
		total = total.Add(cost)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate pack costs: %w", err)
	}
	return total, nil
}

// InsertPack appends a pack. The batch running total is derived from these
// rows, so this single insert is the whole cost accumulation.
func (s *Store) InsertPack(ctx context.Context, p production.Pack) (production.Pack, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO packs (batch_id, weight_kg, base_cost, price, printed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.BatchID, p.WeightKg, p.BaseCost, p.Price, p.Printed, p.CreatedAt.UTC())
	if err != nil {
		return production.Pack{}, fmt.Errorf("insert pack: %w", err)
	}

	if p.ID, err = result.LastInsertId(); err != nil {
		return production.Pack{}, fmt.Errorf("pack id: %w", err)
	}
	return p, nil
}

func (s *Store) Pack(ctx context.Context, id int64) (production.Pack, error) {
	var p production.Pack
	err := s.db.QueryRowContext(ctx, `
		SELECT id, batch_id, weight_kg, base_cost, price, printed, created_at
		FROM packs
		WHERE id = ?
	`, id).Scan(&p.ID, &p.BatchID, &p.WeightKg, &p.BaseCost, &p.Price, &p.Printed, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Pack{}, catalog.NotFound("pack", id)
	}
	if err != nil {
		return production.Pack{}, fmt.Errorf("query pack: %w", err)
	}
	return p, nil
}

// Packs lists a batch's packs, newest first.
func (s *Store) Packs(ctx context.Context, batchID int64) ([]production.Pack, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, batch_id, weight_kg, base_cost, price, printed, created_at
		FROM packs
		WHERE batch_id = ?
		ORDER BY created_at DESC, id DESC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query packs: %w", err)
	}
	defer rows.Close()

	packs := make([]production.Pack, 0)
	for rows.Next() {
		var p production.Pack
		if err := rows.Scan(&p.ID, &p.BatchID, &p.WeightKg, &p.BaseCost, &p.Price, &p.Printed, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		packs = append(packs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packs: %w", err)
	}

	return packs, nil
}

func (s *Store) MarkPackPrinted(ctx context.Context, packID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE packs SET printed = TRUE WHERE id = ?`, packID)
	if err != nil {
		return false, fmt.Errorf("mark pack printed: %w", err)
	}
	return affectedOne(result, "mark pack printed")
}
