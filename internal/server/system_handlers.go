package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Monear/rental-village-social-bot/internal/database"
)

// SystemHandlers serves system monitoring endpoints
type SystemHandlers struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(databases map[string]*database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

type databaseHealth struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	Error     string `json:"error,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
}

// HandleSystemHealth reports CPU, memory, disk, and database health.
// GET /api/system/health
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	var diskPercent float64
	if usage, err := disk.Usage("/"); err == nil {
		diskPercent = usage.UsedPercent
	}

	databases := h.databaseHealth(r.Context())
	healthy := true
	for _, db := range databases {
		if !db.Healthy {
			healthy = false
		}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}

	h.writeJSON(w, map[string]interface{}{
		"status":            status,
		"cpu_percent":       cpuPercent,
		"memory_percent":    memPercent,
		"disk_used_percent": diskPercent,
		"databases":         databases,
	})
}

// HandleDatabaseStats reports per-database file sizes and health.
// GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"databases": h.databaseHealth(r.Context()),
	})
}

func (h *SystemHandlers) databaseHealth(ctx context.Context) []databaseHealth {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]databaseHealth, 0, len(names))
	for _, name := range names {
		db := h.databases[name]
		health := databaseHealth{Name: name, Healthy: true}

		if err := db.QuickCheck(checkCtx); err != nil {
			health.Healthy = false
			health.Error = err.Error()
		}

		if info, err := os.Stat(db.Path()); err == nil {
			health.SizeBytes = info.Size()
		}

		results = append(results, health)
	}

	return results
}

// systemStats returns CPU and RAM usage percentages. The short sampling
// interval keeps the endpoint responsive for pollers.
func (h *SystemHandlers) systemStats() (float64, float64) {
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

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
