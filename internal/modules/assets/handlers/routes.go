package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all holdings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/positions", func(r chi.Router) {
		r.Get("/{source}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleLatestPositions(w, r, chi.URLParam(r, "source"))
		})
	})
}
