package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all cash flow routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cash-flows", func(r chi.Router) {
		r.Post("/", h.HandleRecordFlow)
		r.Delete("/", h.HandleRemoveFlow)
		r.Get("/{unit}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetFlows(w, r, chi.URLParam(r, "unit"))
		})
		r.Delete("/{unit}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleClearFlows(w, r, chi.URLParam(r, "unit"))
		})
	})
}
