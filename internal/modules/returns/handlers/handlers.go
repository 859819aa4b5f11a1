// Package handlers provides HTTP handlers for return computation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/cache"
	"github.com/aristath/fundwatch/internal/modules/returns"
	"github.com/aristath/fundwatch/internal/modules/summary"
)

// Handler handles return computation HTTP requests
type Handler struct {
	service *returns.Service
	cache   *cache.Service
	summary *summary.Service
	log     zerolog.Logger
}

// NewHandler creates a new returns handler
func NewHandler(service *returns.Service, cacheSvc *cache.Service, summarySvc *summary.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		cache:   cacheSvc,
		summary: summarySvc,
		log:     log.With().Str("handler", "returns").Logger(),
	}
}

// HandleBatchReturns handles GET /api/returns/{source}
// Computes returns for every unit of the source against the previous
// trading day. Per-unit problems are reported in the failures list.
func (h *Handler) HandleBatchReturns(w http.ResponseWriter, r *http.Request, source string) {
	report, found, err := h.service.ComputeAll(source)
	if err != nil {
		h.log.Error().Err(err).Str("source", source).Msg("Batch return computation failed")
		http.Error(w, "Failed to compute returns", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Insufficient export data for source", http.StatusNotFound)
		return
	}

	if report.Results == nil {
		report.Results = []returns.UnitReturn{}
	}
	if report.Failures == nil {
		report.Failures = []returns.Failure{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleUnitReturn handles GET /api/returns/{source}/{unit}
// Serves the unit's return through the time-sliced cache: a result
// computed earlier in the same slot is reused unless a newer export
// has appeared on the drive.
func (h *Handler) HandleUnitReturn(w http.ResponseWriter, r *http.Request, source, unit string) {
	result, cached, err := h.cache.GetOrCompute(unit, source, func() (*returns.UnitReturn, error) {
		ur, found, err := h.service.ComputeUnitReturn(source, unit)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errNotFound
		}
		return ur, nil
	})
	if errors.Is(err, errNotFound) {
		http.Error(w, "Unit not found in latest export", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("source", source).Str("unit", unit).Msg("Unit return computation failed")
		http.Error(w, "Failed to compute return", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"cached":    cached,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleWeekSummary handles GET /api/summary/{source}/week
// Returns per-unit statistics for the current week, or for the week
// containing the ?date=YYYY-MM-DD query parameter.
func (h *Handler) HandleWeekSummary(w http.ResponseWriter, r *http.Request, source string) {
	ref := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		ref = parsed
	}

	stats, err := h.summary.WeekStats(source, ref)
	if err != nil {
		h.log.Error().Err(err).Str("source", source).Msg("Week summary failed")
		http.Error(w, "Failed to compute week summary", http.StatusInternalServerError)
		return
	}

	if stats.Units == nil {
		stats.Units = []summary.UnitWeekStats{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": stats,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// errNotFound marks a compute miss so the cache never stores it.
var errNotFound = errors.New("unit not found in latest export")

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
