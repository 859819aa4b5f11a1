// Package handlers provides HTTP handlers for cash flow operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/modules/cashflow"
)

// Handler handles cash flow HTTP requests
type Handler struct {
	repo *cashflow.Repository
	log  zerolog.Logger
}

// NewHandler creates a new cash flow handler
func NewHandler(repo *cashflow.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "cashflow").Logger(),
	}
}

type recordFlowRequest struct {
	UnitName   string  `json:"unit_name"`
	Date       string  `json:"date"`
	FlowType   string  `json:"flow_type"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
	Accumulate bool    `json:"accumulate"` // add to any existing same-day amount instead of replacing it
}

// HandleRecordFlow handles POST /api/cash-flows
// Records a cash flow; by default a same-day flow of the same type is
// replaced. With accumulate=true the amounts are summed instead.
func (h *Handler) HandleRecordFlow(w http.ResponseWriter, r *http.Request) {
	var req recordFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount := req.Amount
	if req.Accumulate {
		existing, err := h.repo.GetFlow(req.UnitName, req.Date, req.FlowType)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to read existing cash flow")
			http.Error(w, "Failed to record cash flow", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			amount += existing.Amount
		}
	}

	if err := h.repo.AddFlow(req.UnitName, req.Date, req.FlowType, amount, req.Note); err != nil {
		h.log.Warn().Err(err).Str("unit", req.UnitName).Msg("Failed to record cash flow")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"unit_name": req.UnitName,
			"date":      req.Date,
			"flow_type": req.FlowType,
			"amount":    amount,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type removeFlowRequest struct {
	UnitName string  `json:"unit_name"`
	Date     string  `json:"date"`
	FlowType string  `json:"flow_type"`
	Amount   float64 `json:"amount"`
}

// HandleRemoveFlow handles DELETE /api/cash-flows
// Removes a flow only when the stored amount matches the request.
func (h *Handler) HandleRemoveFlow(w http.ResponseWriter, r *http.Request) {
	var req removeFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	removed, err := h.repo.RemoveFlow(req.UnitName, req.Date, req.FlowType, req.Amount)
	if err != nil {
		h.log.Error().Err(err).Str("unit", req.UnitName).Msg("Failed to remove cash flow")
		http.Error(w, "Failed to remove cash flow", http.StatusInternalServerError)
		return
	}

	if !removed {
		http.Error(w, "No matching cash flow", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"removed": true},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetFlows handles GET /api/cash-flows/{unit}
// Returns all recorded flows for a unit with lifetime totals.
func (h *Handler) HandleGetFlows(w http.ResponseWriter, r *http.Request, unit string) {
	flows, err := h.repo.FlowsByUnit(unit)
	if err != nil {
		h.log.Error().Err(err).Str("unit", unit).Msg("Failed to get cash flows")
		http.Error(w, "Failed to get cash flows", http.StatusInternalServerError)
		return
	}

	inflow, outflow, err := h.repo.Totals(unit)
	if err != nil {
		h.log.Error().Err(err).Str("unit", unit).Msg("Failed to get cash flow totals")
		http.Error(w, "Failed to get cash flows", http.StatusInternalServerError)
		return
	}

	if flows == nil {
		flows = []cashflow.Event{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"unit_name":     unit,
			"flows":         flows,
			"total_inflow":  inflow,
			"total_outflow": outflow,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleClearFlows handles DELETE /api/cash-flows/{unit}
// Removes every flow recorded for a unit.
func (h *Handler) HandleClearFlows(w http.ResponseWriter, r *http.Request, unit string) {
	deleted, err := h.repo.RemoveAllFlows(unit)
	if err != nil {
		h.log.Error().Err(err).Str("unit", unit).Msg("Failed to clear cash flows")
		http.Error(w, "Failed to clear cash flows", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"deleted": deleted},
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
