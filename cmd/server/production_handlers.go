package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/formulation"
	"github.com/Simplici0/foodcost/internal/label"
)

type batchCreateRequest struct {
	ProductID      int64           `json:"productId"`
	GainPercentage decimal.Decimal `json:"gainPercentage"`
	Notes          string          `json:"notes"`
}

type batchCreateResponse struct {
	BatchID int64  `json:"batchId"`
	Message string `json:"message"`
}

type packAddRequest struct {
	BatchID  int64           `json:"batchId"`
	WeightKg decimal.Decimal `json:"weightKg"`
}

type packAddResponse struct {
	PackID       int64           `json:"packId"`
	Price        decimal.Decimal `json:"price"`
	Message      string          `json:"message"`
	LabelPrinted bool            `json:"labelPrinted"`
	LabelFile    string          `json:"labelFile,omitempty"`
}

func (s *server) expandFromPath(r *http.Request) (formulation.Result, error) {
	productID, err := idParam(r, "productId")
	if err != nil {
		return formulation.Result{}, err
	}
	target, err := decimalParam(r, "targetWeightKg")
	if err != nil {
		return formulation.Result{}, err
	}
	return s.engine.Expand(r.Context(), productID, target)
}

// handleFormulationCalculate answers 400 for every engine error, including
// unknown products.
func (s *server) handleFormulationCalculate(w http.ResponseWriter, r *http.Request) {
	result, err := s.expandFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *server) handleFormulationExport(w http.ResponseWriter, r *http.Request) {
	result, err := s.expandFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := formulation.WriteCSV(&buf, result); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="formulation_%d_%s.csv"`, result.ProductID, result.TargetWeightKg.String()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var req batchCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.margin.Validate(req.GainPercentage); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	batch, err := s.production.CreateBatch(r.Context(), req.ProductID, req.GainPercentage, req.Notes)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, batchCreateResponse{BatchID: batch.ID, Message: "Batch created successfully"})
}

// handlePackAdd commits the pack first. Label printing afterwards never fails
// the request.
func (s *server) handlePackAdd(w http.ResponseWriter, r *http.Request) {
	var req packAddRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	pack, err := s.production.AddPack(r.Context(), req.BatchID, req.WeightKg)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := packAddResponse{PackID: pack.ID, Price: pack.Price, Message: "Pack added successfully"}

	batch, err := s.production.Batch(r.Context(), req.BatchID)
	if err != nil {
		s.logger.Warn("pack added but batch reload failed", zap.Int64("packId", pack.ID), zap.Error(err))
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	outcome, err := s.labels.Print(r.Context(), label.Item{
		Kind:      "Pack",
		ID:        pack.ID,
		ProductID: batch.ProductID,
		Name:      batch.ProductName,
		WeightKg:  pack.WeightKg,
		Price:     pack.Price,
		Date:      pack.CreatedAt,
	})
	switch {
	case errors.Is(err, label.ErrNoTemplate):
		// nothing to print
	case err != nil:
		s.logger.Warn("pack label not printed", zap.Int64("packId", pack.ID), zap.Error(err))
	default:
		resp.LabelPrinted = outcome.Printed
		resp.LabelFile = outcome.File
		if _, err := s.production.MarkPrinted(r.Context(), pack.ID); err != nil {
			s.logger.Warn("failed to mark pack printed", zap.Int64("packId", pack.ID), zap.Error(err))
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleBatchSummary(w http.ResponseWriter, r *http.Request) {
	batchID, err := idParam(r, "batchId")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := s.production.BatchSummary(r.Context(), batchID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *server) handleBatchPacks(w http.ResponseWriter, r *http.Request) {
	batchID, err := idParam(r, "batchId")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	packs, err := s.production.Packs(r.Context(), batchID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, packs)
}

func (s *server) handlePackPrinted(w http.ResponseWriter, r *http.Request) {
	packID, err := idParam(r, "packId")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ok, err := s.production.MarkPrinted(r.Context(), packID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, catalog.NotFound("pack", packID))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"packId": packID, "printed": true})
}
