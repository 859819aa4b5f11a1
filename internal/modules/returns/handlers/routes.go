package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all return computation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/returns", func(r chi.Router) {
		r.Get("/{source}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleBatchReturns(w, r, chi.URLParam(r, "source"))
		})
		r.Get("/{source}/{unit}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleUnitReturn(w, r, chi.URLParam(r, "source"), chi.URLParam(r, "unit"))
		})
	})

	r.Route("/summary", func(r chi.Router) {
		r.Get("/{source}/week", func(w http.ResponseWriter, r *http.Request) {
			h.HandleWeekSummary(w, r, chi.URLParam(r, "source"))
		})
	})
}
