package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/label"
)

// printerRequest carries either inline template content or a stored template id.
type printerRequest struct {
	Template    string          `json:"template"`
	TemplateID  *int64          `json:"templateId"`
	ProductName string          `json:"productName"`
	Weight      decimal.Decimal `json:"weight"`
	Price       decimal.Decimal `json:"price"`
	Date        *time.Time      `json:"date"`
}

type printerResponse struct {
	Content string `json:"content"`
	Printed bool   `json:"printed"`
	File    string `json:"file,omitempty"`
}

func (s *server) resolvePrinterRequest(r *http.Request) (printerRequest, string, error) {
	var req printerRequest
	if err := decodeJSON(r, &req); err != nil {
		return printerRequest{}, "", err
	}

	template := req.Template
	if req.TemplateID != nil {
		tmpl, err := s.store.LabelTemplate(r.Context(), *req.TemplateID)
		if err != nil {
			return printerRequest{}, "", err
		}
		template = tmpl.Content
	}
	if strings.TrimSpace(template) == "" {
		return printerRequest{}, "", catalog.Validation("template", "is required")
	}
	return req, template, nil
}

func (s *server) printerDate(req printerRequest) time.Time {
	if req.Date != nil {
		return *req.Date
	}
	return s.now().In(s.location)
}

func (s *server) handlePrinterRender(w http.ResponseWriter, r *http.Request) {
	req, template, err := s.resolvePrinterRequest(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	content := label.Render(template, req.ProductName, req.Weight, req.Price, s.printerDate(req), s.labels.Currency())
	s.writeJSON(w, http.StatusOK, printerResponse{Content: content})
}

func (s *server) handlePrinterPrint(w http.ResponseWriter, r *http.Request) {
	req, template, err := s.resolvePrinterRequest(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	content, outcome, err := s.labels.Raw(r.Context(), template, label.Item{
		Kind:     "Label",
		ID:       s.now().Unix(),
		Name:     req.ProductName,
		WeightKg: req.Weight,
		Price:    req.Price,
		Date:     s.printerDate(req),
	})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	s.writeJSON(w, http.StatusOK, printerResponse{Content: content, Printed: outcome.Printed, File: outcome.File})
}
