// Package handlers provides HTTP handlers for holdings data.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/modules/assets"
	"github.com/aristath/fundwatch/internal/tabular"
)

// Handler handles holdings HTTP requests
type Handler struct {
	positions *assets.PositionsService
	log       zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(positions *assets.PositionsService, log zerolog.Logger) *Handler {
	return &Handler{
		positions: positions,
		log:       log.With().Str("handler", "positions").Logger(),
	}
}

// HandleLatestPositions handles GET /api/positions/{source}
// Returns the newest parsed holdings export, largest positions first.
func (h *Handler) HandleLatestPositions(w http.ResponseWriter, r *http.Request, source string) {
	report, found, err := h.positions.Latest(source)
	if err != nil {
		var serr *tabular.SchemaError
		if errors.As(err, &serr) {
			h.log.Warn().Err(err).Str("source", source).Msg("Holdings export unusable")
			http.Error(w, serr.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Str("source", source).Msg("Failed to read holdings")
		http.Error(w, "Failed to read holdings", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "No holdings export for source", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
