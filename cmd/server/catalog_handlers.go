package main

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

type formulationEntryRequest struct {
	IngredientID int64           `json:"ingredientId"`
	Ratio        decimal.Decimal `json:"ratio"`
}

type ratioRequest struct {
	Ratio decimal.Decimal `json:"ratio"`
}

// Ingredients

func (s *server) handleIngredientsList(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.store.ListIngredients(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, ingredients)
}

func (s *server) handleIngredientGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ingredient, err := s.store.Ingredient(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, ingredient)
}

func (s *server) handleIngredientCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.Ingredient
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := s.store.CreateIngredient(r.Context(), in)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleIngredientUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var in catalog.Ingredient
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	in.ID = id

	updated, err := s.store.UpdateIngredient(r.Context(), in)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleIngredientDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteIngredient(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Products

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := s.store.Product(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, product)
}

func (s *server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := s.store.CreateProduct(r.Context(), p)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = id

	updated, err := s.store.UpdateProduct(r.Context(), p)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Formulation entries

func (s *server) handleFormulationList(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := s.store.Product(r.Context(), productID); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	entries, err := s.store.FormulationEntries(r.Context(), productID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *server) handleFormulationAdd(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req formulationEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.store.AddFormulationEntry(r.Context(), catalog.FormulationEntry{
		ProductID:    productID,
		IngredientID: req.IngredientID,
		Ratio:        req.Ratio,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *server) handleFormulationUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req ratioRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.store.UpdateFormulationEntry(r.Context(), catalog.FormulationEntry{ID: id, Ratio: req.Ratio})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *server) handleFormulationDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteFormulationEntry(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Label templates

func (s *server) handleLabelTemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListLabelTemplates(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, templates)
}

func (s *server) handleLabelTemplateGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	tmpl, err := s.store.LabelTemplate(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, tmpl)
}

func (s *server) handleLabelTemplateCreate(w http.ResponseWriter, r *http.Request) {
	var t catalog.LabelTemplate
	if err := decodeJSON(r, &t); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := s.store.CreateLabelTemplate(r.Context(), t)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleLabelTemplateUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var t catalog.LabelTemplate
	if err := decodeJSON(r, &t); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	t.ID = id

	updated, err := s.store.UpdateLabelTemplate(r.Context(), t)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleLabelTemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteLabelTemplate(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
