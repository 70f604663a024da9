package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/foodcost/internal/catalog"
	"github.com/Simplici0/foodcost/internal/formulation"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case catalog.IsNotFound(err):
		return http.StatusNotFound
	case catalog.IsValidation(err), errors.Is(err, formulation.ErrNoFormulation):
		return http.StatusBadRequest
	case catalog.IsInUse(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return catalog.Validation("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, catalog.Validation(name, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func decimalParam(r *http.Request, name string) (decimal.Decimal, error) {
	raw := chi.URLParam(r, name)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, catalog.Validation(name, fmt.Sprintf("invalid number %q", raw))
	}
	return value, nil
}

// dateRange reads ?start= and ?end= (YYYY-MM-DD). Missing values default to today.
func (s *server) dateRange(r *http.Request) (time.Time, time.Time, error) {
	today := s.now().In(s.location)

	parse := func(key string) (time.Time, error) {
		raw := strings.TrimSpace(r.URL.Query().Get(key))
		if raw == "" {
			return today, nil
		}
		t, err := time.ParseInLocation(dateLayout, raw, s.location)
		if err != nil {
			return time.Time{}, catalog.Validation(key, fmt.Sprintf("expected YYYY-MM-DD, got %q", raw))
		}
		return t, nil
	}

	start, err := parse("start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parse("end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, catalog.Validation("end", "must not be before start")
	}
	return start, end, nil
}
