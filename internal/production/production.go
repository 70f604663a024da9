// Package production runs batch accounting: a batch is opened against a
// product's formulation, packs are weighed into it and priced from ingredient
// cost plus the batch margin.
package production

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/formulation"
	"github.com/Simplici0/foodcost/internal/pricing"
)

// BaselineWeightKg is the reference weight a batch's baseline cost is computed at.
var BaselineWeightKg = decimal.NewFromInt(1)

// Batch is one production run of a product.
//
// TotalCost is the cumulative ingredient cost of the batch's packs. It never
// includes margin and is distinct from BaselineCost.
type Batch struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"productId"`
	ProductName    string          `json:"productName"`
	StartDate      time.Time       `json:"startDate"`
	GainPercentage decimal.Decimal `json:"gainPercentage"`
	BaselineCost   decimal.Decimal `json:"baselineCost"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Notes          string          `json:"notes,omitempty"`
}

// Pack is one weighed and priced output unit of a batch.
type Pack struct {
	ID        int64           `json:"id"`
	BatchID   int64           `json:"batchId"`
	WeightKg  decimal.Decimal `json:"weightKg"`
	BaseCost  decimal.Decimal `json:"baseCost"`
	Price     decimal.Decimal `json:"price"`
	Printed   bool            `json:"printed"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store persists batches and packs. InsertPack must write the pack, including
// its BaseCost, in a single atomic statement: the batch total is derived from
// those rows.
type Store interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
	CreateBatch(ctx context.Context, b Batch) (Batch, error)
	Batch(ctx context.Context, id int64) (Batch, error)
	InsertPack(ctx context.Context, p Pack) (Pack, error)
	Packs(ctx context.Context, batchID int64) ([]Pack, error)
	MarkPackPrinted(ctx context.Context, packID int64) (bool, error)
}

// Expander is satisfied by *formulation.Engine.
type Expander interface {
	Expand(ctx context.Context, productID int64, targetWeightKg decimal.Decimal) (formulation.Result, error)
}

// Service implements batch accounting.
type Service struct {
	store    Store
	expander Expander
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a batch accounting service.
func NewService(store Store, expander Expander, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		expander: expander,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBatch opens a batch for productID. marginPercent is stored as supplied.
func (s *Service) CreateBatch(ctx context.Context, productID int64, marginPercent decimal.Decimal, notes string) (Batch, error) {
	product, err := s.store.Product(ctx, productID)
	if err != nil {
		return Batch{}, fmt.Errorf("load product: %w", err)
	}

	baseline, err := s.expander.Expand(ctx, productID, BaselineWeightKg)
	if err != nil {
		return Batch{}, fmt.Errorf("compute baseline cost: %w", err)
	}

	batch, err := s.store.CreateBatch(ctx, Batch{
		ProductID:      productID,
		ProductName:    product.Name,
		StartDate:      s.now(),
		GainPercentage: marginPercent,
		BaselineCost:   baseline.TotalEstimatedCost,
		TotalCost:      decimal.Zero,
		Notes:          notes,
	})
	if err != nil {
		return Batch{}, fmt.Errorf("create batch: %w", err)
	}

	s.logger.Info("batch created",
		zap.Int64("batchId", batch.ID),
		zap.Int64("productId", productID),
		zap.String("gainPercentage", marginPercent.String()),
		zap.String("baselineCost", batch.BaselineCost.String()),
	)

	return batch, nil
}

// AddPack prices a pack of weightKg from the batch product's formulation and
// appends it. Pack creation and cost accumulation commit together.
func (s *Service) AddPack(ctx context.Context, batchID int64, weightKg decimal.Decimal) (Pack, error) {
	batch, err := s.store.Batch(ctx, batchID)
	if err != nil {
		return Pack{}, fmt.Errorf("load batch: %w", err)
	}

	expansion, err := s.expander.Expand(ctx, batch.ProductID, weightKg)
	if err != nil {
		return Pack{}, fmt.Errorf("compute pack cost: %w", err)
	}

	breakdown := pricing.Calculate(expansion.TotalEstimatedCost, batch.GainPercentage)

	pack, err := s.store.InsertPack(ctx, Pack{
		BatchID:   batchID,
		WeightKg:  weightKg,
		BaseCost:  breakdown.BaseCost,
		Price:     breakdown.Price,
		Printed:   false,
		CreatedAt: s.now(),
	})
	if err != nil {
		return Pack{}, fmt.Errorf("insert pack: %w", err)
	}

	s.logger.Info("pack added",
		zap.Int64("batchId", batchID),
		zap.Int64("packId", pack.ID),
		zap.String("weightKg", weightKg.String()),
		zap.String("baseCost", pack.BaseCost.String()),
		zap.String("price", pack.Price.String()),
	)

	return pack, nil
}

// MarkPrinted flips the printed flag. It reports false when the pack does not exist.
func (s *Service) MarkPrinted(ctx context.Context, packID int64) (bool, error) {
	ok, err := s.store.MarkPackPrinted(ctx, packID)
	if err != nil {
		return false, fmt.Errorf("mark pack printed: %w", err)
	}
	return ok, nil
}

// Batch loads a batch with its derived running total.
func (s *Service) Batch(ctx context.Context, batchID int64) (Batch, error) {
	return s.store.Batch(ctx, batchID)
}

// Packs lists a batch's packs, newest first.
func (s *Service) Packs(ctx context.Context, batchID int64) ([]Pack, error) {
	if _, err := s.store.Batch(ctx, batchID); err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	return s.store.Packs(ctx, batchID)
}

// BatchSummary aggregates the batch's packs.
func (s *Service) BatchSummary(ctx context.Context, batchID int64) (Summary, error) {
	batch, err := s.store.Batch(ctx, batchID)
	if err != nil {
		return Summary{}, fmt.Errorf("load batch: %w", err)
	}

	packs, err := s.store.Packs(ctx, batchID)
	if err != nil {
		return Summary{}, fmt.Errorf("load packs: %w", err)
	}

	return Summarize(batch, packs), nil
}
