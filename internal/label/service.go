package label

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

// ErrNoTemplate is returned when a product has no default label template.
var ErrNoTemplate = errors.New("product has no default label template")

// TemplateSource resolves a product's default label template.
type TemplateSource interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
	LabelTemplate(ctx context.Context, id int64) (catalog.LabelTemplate, error)
}

// Item is one labelled unit: a batch pack or a scale production.
type Item struct {
	Kind      string
	ID        int64
	ProductID int64
	Name      string
	WeightKg  decimal.Decimal
	Price     decimal.Decimal
	Date      time.Time
}

// Service renders product labels and hands them to the printer.
type Service struct {
	templates TemplateSource
	printer   *Printer
	currency  string
}

func NewService(templates TemplateSource, printer *Printer, currency string) *Service {
	return &Service{templates: templates, printer: printer, currency: currency}
}

// RenderFor renders the default template of item's product.
func (s *Service) RenderFor(ctx context.Context, item Item) (string, error) {
	product, err := s.templates.Product(ctx, item.ProductID)
	if err != nil {
		return "", fmt.Errorf("load product: %w", err)
	}
	if product.DefaultLabelTemplateID == nil {
		return "", ErrNoTemplate
	}

	tmpl, err := s.templates.LabelTemplate(ctx, *product.DefaultLabelTemplateID)
	if err != nil {
		return "", fmt.Errorf("load label template: %w", err)
	}

	name := item.Name
	if name == "" {
		name = product.Name
	}
	return Render(tmpl.Content, name, item.WeightKg, item.Price, item.Date, s.currency), nil
}

// Print renders and prints item, saving to a file when the printer fails.
func (s *Service) Print(ctx context.Context, item Item) (Outcome, error) {
	content, err := s.RenderFor(ctx, item)
	if err != nil {
		return Outcome{}, err
	}
	return s.printer.PrintOrSave(ctx, item.Kind, item.ID, content)
}

// Raw renders template directly and prints it. Used by the printer endpoint.
func (s *Service) Raw(ctx context.Context, template string, item Item) (string, Outcome, error) {
	content := Render(template, item.Name, item.WeightKg, item.Price, item.Date, s.currency)
	outcome, err := s.printer.PrintOrSave(ctx, item.Kind, item.ID, content)
	return content, outcome, err
}

// Currency returns the symbol used for {Price}.
func (s *Service) Currency() string {
	return s.currency
}
