// Package reporting backs the scale workflow: flat per-weight pricing events
// (productions), operator cost entries, and period rollups over both.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/pricing"
)

// Production is one pricing-and-print event. Rows are append-only.
type Production struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	ProductID       *int64          `json:"productId,omitempty"`
	ProductName     string          `json:"productName,omitempty"`
	Weight          decimal.Decimal `json:"weight"`
	PricePerKg      decimal.Decimal `json:"pricePerKg"`
	Total           decimal.Decimal `json:"total"`
	Date            time.Time       `json:"date"`
	ZplTemplatePath string          `json:"zplTemplatePath,omitempty"`
}

// Cost is an operator-entered cost, optionally linked to a production.
type Cost struct {
	ID             int64           `json:"id"`
	ProductionID   *int64          `json:"productionId,omitempty"`
	ProductionName string          `json:"productionName"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Date           time.Time       `json:"date"`
	Notes          string          `json:"notes,omitempty"`
}

// ProductionInput describes a production to record. A nil PricePerKg falls back
// to the linked product's default price per kilogram.
type ProductionInput struct {
	Name            string
	ProductID       *int64
	Weight          decimal.Decimal
	PricePerKg      *decimal.Decimal
	Date            time.Time
	ZplTemplatePath string
}

// CostInput describes a cost entry to record.
type CostInput struct {
	ProductionID   *int64
	ProductionName string
	TotalCost      decimal.Decimal
	Date           time.Time
	Notes          string
}

// Store persists productions and costs.
type Store interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
	InsertProduction(ctx context.Context, p Production) (Production, error)
	Production(ctx context.Context, id int64) (Production, error)
	ProductionsBetween(ctx context.Context, start, end time.Time) ([]Production, error)
	DeleteProduction(ctx context.Context, id int64) (bool, error)
	InsertCost(ctx context.Context, c Cost) (Cost, error)
	CostsBetween(ctx context.Context, start, end time.Time) ([]Cost, error)
	DeleteCost(ctx context.Context, id int64) (bool, error)
}

// Service records scale-workflow events and computes period summaries.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a reporting service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RecordProduction prices weight at the per-kilogram rate and stores the event.
func (s *Service) RecordProduction(ctx context.Context, in ProductionInput) (Production, error) {
	p := Production{
		Name:            strings.TrimSpace(in.Name),
		ProductID:       in.ProductID,
		Weight:          in.Weight,
		Date:            in.Date,
		ZplTemplatePath: strings.TrimSpace(in.ZplTemplatePath),
	}

	if p.ProductID != nil {
		product, err := s.store.Product(ctx, *p.ProductID)
		if err != nil {
			return Production{}, fmt.Errorf("load product: %w", err)
		}
		p.ProductName = product.Name
		p.PricePerKg = product.DefaultPricePerKg
		if p.Name == "" {
			p.Name = product.Name
		}
	}
	if in.PricePerKg != nil {
		p.PricePerKg = *in.PricePerKg
	}

	if p.Name == "" {
		return Production{}, catalog.Validation("name", "is required")
	}
	if !p.Weight.IsPositive() {
		return Production{}, catalog.Validation("weight", "must be greater than 0")
	}
	if p.PricePerKg.IsNegative() {
		return Production{}, catalog.Validation("pricePerKg", "must be greater than or equal to 0")
	}
	if p.Date.IsZero() {
		p.Date = s.now()
	}

	p.Total = pricing.WeightTotal(p.Weight, p.PricePerKg)

	stored, err := s.store.InsertProduction(ctx, p)
	if err != nil {
		return Production{}, fmt.Errorf("insert production: %w", err)
	}

	s.logger.Info("production recorded",
		zap.Int64("productionId", stored.ID),
		zap.String("name", stored.Name),
		zap.String("weight", stored.Weight.String()),
		zap.String("total", stored.Total.String()),
	)

	return stored, nil
}

// RecordCost stores a cost entry. When linked to a production and no name is
// given, the production's name is copied.
func (s *Service) RecordCost(ctx context.Context, in CostInput) (Cost, error) {
	c := Cost{
		ProductionID:   in.ProductionID,
		ProductionName: strings.TrimSpace(in.ProductionName),
		TotalCost:      in.TotalCost,
		Date:           in.Date,
		Notes:          strings.TrimSpace(in.Notes),
	}

	if c.ProductionID != nil {
		linked, err := s.store.Production(ctx, *c.ProductionID)
		if err != nil {
			return Cost{}, fmt.Errorf("load production: %w", err)
		}
		if c.ProductionName == "" {
			c.ProductionName = linked.Name
		}
	}

	if c.ProductionName == "" {
		return Cost{}, catalog.Validation("productionName", "is required")
	}
	if c.TotalCost.IsNegative() {
		return Cost{}, catalog.Validation("totalCost", "must be greater than or equal to 0")
	}
	if c.Date.IsZero() {
		c.Date = s.now()
	}

	stored, err := s.store.InsertCost(ctx, c)
	if err != nil {
		return Cost{}, fmt.Errorf("insert cost: %w", err)
	}

	s.logger.Info("cost recorded",
		zap.Int64("costId", stored.ID),
		zap.String("productionName", stored.ProductionName),
		zap.String("totalCost", stored.TotalCost.String()),
	)

	return stored, nil
}

// Productions lists productions of the inclusive day range, newest first.
func (s *Service) Productions(ctx context.Context, start, end time.Time) ([]Production, error) {
	from, to := DayRange(start, end)
	return s.store.ProductionsBetween(ctx, from, to)
}

// Costs lists costs of the inclusive day range, newest first.
func (s *Service) Costs(ctx context.Context, start, end time.Time) ([]Cost, error) {
	from, to := DayRange(start, end)
	return s.store.CostsBetween(ctx, from, to)
}

func (s *Service) DeleteCost(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteCost(ctx, id)
	if err != nil {
		return fmt.Errorf("delete cost: %w", err)
	}
	if !ok {
		return catalog.NotFound("cost", id)
	}
	return nil
}

func (s *Service) DeleteProduction(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteProduction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete production: %w", err)
	}
	if !ok {
		return catalog.NotFound("production", id)
	}
	return nil
}

// PeriodSummary rolls up productions and costs between start and end,
// inclusive at day granularity.
func (s *Service) PeriodSummary(ctx context.Context, start, end time.Time) (PeriodSummary, error) {
	from, to := DayRange(start, end)

	productions, err := s.store.ProductionsBetween(ctx, from, to)
	if err != nil {
		return PeriodSummary{}, fmt.Errorf("load productions: %w", err)
	}

	costs, err := s.store.CostsBetween(ctx, from, to)
	if err != nil {
		return PeriodSummary{}, fmt.Errorf("load costs: %w", err)
	}

	summary := Summarize(productions, costs)
	summary.Start, summary.End = from, to
	return summary, nil
}
