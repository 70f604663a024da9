package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/formulation/calculate/{productId}/{targetWeightKg}", s.handleFormulationCalculate)
		r.Get("/formulation/export/{productId}/{targetWeightKg}", s.handleFormulationExport)

		r.Route("/production", func(r chi.Router) {
			r.Post("/batch/create", s.handleBatchCreate)
			r.Get("/batch/{batchId}/summary", s.handleBatchSummary)
			r.Get("/batch/{batchId}/packs", s.handleBatchPacks)
			r.Post("/pack/add", s.handlePackAdd)
			r.Post("/pack/{packId}/printed", s.handlePackPrinted)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", s.handleIngredientsList)
			r.Post("/", s.handleIngredientCreate)
			r.Get("/{id}", s.handleIngredientGet)
			r.Put("/{id}", s.handleIngredientUpdate)
			r.Delete("/{id}", s.handleIngredientDelete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleProductsList)
			r.Post("/", s.handleProductCreate)
			r.Get("/{id}", s.handleProductGet)
			r.Put("/{id}", s.handleProductUpdate)
			r.Delete("/{id}", s.handleProductDelete)
			r.Get("/{id}/formulation", s.handleFormulationList)
			r.Post("/{id}/formulation", s.handleFormulationAdd)
		})

		r.Put("/formulations/{id}", s.handleFormulationUpdate)
		r.Delete("/formulations/{id}", s.handleFormulationDelete)

		r.Route("/label-templates", func(r chi.Router) {
			r.Get("/", s.handleLabelTemplatesList)
			r.Post("/", s.handleLabelTemplateCreate)
			r.Get("/{id}", s.handleLabelTemplateGet)
			r.Put("/{id}", s.handleLabelTemplateUpdate)
			r.Delete("/{id}", s.handleLabelTemplateDelete)
		})

		r.Post("/printer/render", s.handlePrinterRender)
		r.Post("/printer/print", s.handlePrinterPrint)

		r.Get("/scale/productions", s.handleProductionsList)
		r.Post("/scale/productions", s.handleProductionRecord)
		r.Delete("/scale/productions/{id}", s.handleProductionDelete)

		r.Get("/costs", s.handleCostsList)
		r.Post("/costs", s.handleCostRecord)
		r.Delete("/costs/{id}", s.handleCostDelete)

		r.Get("/reports/period", s.handlePeriodReport)
	})

	return r
}

// requestLogger logs one line per request with the chi request id.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			s.logger.Info("request",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
