package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/foodcost/internal/label"
	"github.com/Simplici0/foodcost/internal/reporting"
)

type productionRequest struct {
	Name            string           `json:"name"`
	ProductID       *int64           `json:"productId"`
	Weight          decimal.Decimal  `json:"weight"`
	PricePerKg      *decimal.Decimal `json:"pricePerKg"`
	Date            *time.Time       `json:"date"`
	ZplTemplatePath string           `json:"zplTemplatePath"`
	Print           bool             `json:"print"`
}

type productionResponse struct {
	reporting.Production
	LabelPrinted bool   `json:"labelPrinted"`
	LabelFile    string `json:"labelFile,omitempty"`
}

type costRequest struct {
	ProductionID   *int64          `json:"productionId"`
	ProductionName string          `json:"productionName"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Date           *time.Time      `json:"date"`
	Notes          string          `json:"notes"`
}

func optionalTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func (s *server) handleProductionRecord(w http.ResponseWriter, r *http.Request) {
	var req productionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := s.reporting.RecordProduction(r.Context(), reporting.ProductionInput{
		Name:            req.Name,
		ProductID:       req.ProductID,
		Weight:          req.Weight,
		PricePerKg:      req.PricePerKg,
		Date:            optionalTime(req.Date),
		ZplTemplatePath: req.ZplTemplatePath,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	resp := productionResponse{Production: p}
	if req.Print && p.ProductID != nil {
		outcome, err := s.labels.Print(r.Context(), label.Item{
			Kind:      "Production",
			ID:        p.ID,
			ProductID: *p.ProductID,
			Name:      p.Name,
			WeightKg:  p.Weight,
			Price:     p.Total,
			Date:      p.Date,
		})
		if err != nil && !errors.Is(err, label.ErrNoTemplate) {
			s.logger.Warn("production label not printed", zap.Int64("productionId", p.ID), zap.Error(err))
		}
		resp.LabelPrinted = outcome.Printed
		resp.LabelFile = outcome.File
	}

	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *server) handleProductionsList(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.dateRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	productions, err := s.reporting.Productions(r.Context(), start, end)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, productions)
}

func (s *server) handleProductionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.reporting.DeleteProduction(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCostRecord(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := s.reporting.RecordCost(r.Context(), reporting.CostInput{
		ProductionID:   req.ProductionID,
		ProductionName: req.ProductionName,
		TotalCost:      req.TotalCost,
		Date:           optionalTime(req.Date),
		Notes:          req.Notes,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *server) handleCostsList(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.dateRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	costs, err := s.reporting.Costs(r.Context(), start, end)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, costs)
}

func (s *server) handleCostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.reporting.DeleteCost(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.dateRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := s.reporting.PeriodSummary(r.Context(), start, end)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
