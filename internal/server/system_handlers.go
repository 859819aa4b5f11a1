package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/fundwatch/internal/config"
	"github.com/aristath/fundwatch/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	cfg         *config.Config
	startupTime time.Time
	ledgerDB    *database.DB
	cacheDB     *database.DB
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(log zerolog.Logger, cfg *config.Config, ledgerDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		cfg:         cfg,
		startupTime: time.Now(),
		ledgerDB:    ledgerDB,
		cacheDB:     cacheDB,
	}
}

// sourceStatus reports whether an export source directory is reachable.
type sourceStatus struct {
	Name      string `json:"name"`
	Reachable bool   `json:"reachable"`
}

// HandleSystemHealth handles GET /api/system/health
// Reports database health, source directory reachability, and host load.
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	databases := map[string]string{
		"ledger": "ok",
		"cache":  "ok",
	}
	healthy := true

	if err := h.ledgerDB.QuickCheck(ctx); err != nil {
		databases["ledger"] = err.Error()
		healthy = false
	}
	if err := h.cacheDB.QuickCheck(ctx); err != nil {
		databases["cache"] = err.Error()
		healthy = false
	}

	sources := make([]sourceStatus, 0, len(h.cfg.Sources))
	for _, src := range h.cfg.Sources {
		info, err := os.Stat(src.ExportsDir)
		sources = append(sources, sourceStatus{
			Name:      src.Name,
			Reachable: err == nil && info.IsDir(),
		})
	}

	cpuPct, memPct := h.getSystemStats()

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"databases":      databases,
		"sources":        sources,
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"uptime_seconds": int64(time.Since(h.startupTime).Seconds()),
	})
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{}, 2)

	for name, db := range map[string]*database.DB{"ledger": h.ledgerDB, "cache": h.cacheDB} {
		s, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			stats[name] = map[string]string{"error": err.Error()}
			continue
		}
		stats[name] = map[string]int64{
			"size_bytes":     s.SizeBytes,
			"wal_size_bytes": s.WALSizeBytes,
			"page_count":     s.PageCount,
			"page_size":      s.PageSize,
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": stats,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// getSystemStats returns CPU and RAM usage percentages.
// The CPU sample uses a short interval to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
