package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantdesk/quantdesk/internal/api"
)

// SystemHandlers serves the liveness and resource usage endpoint.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	cachedCount func() (int, error)
}

// NewSystemHandlers creates a new system handlers instance. cachedCount
// reports how many tickers the price cache currently holds.
func NewSystemHandlers(log zerolog.Logger, cachedCount func() (int, error)) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		cachedCount: cachedCount,
	}
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemPercent    float64 `json:"mem_percent"`
	CachedTickers int     `json:"cached_tickers"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuAvg, memUsed := h.systemStats()

	cached := 0
	if h.cachedCount != nil {
		n, err := h.cachedCount()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count cached tickers")
		} else {
			cached = n
		}
	}

	api.WriteJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuAvg,
		MemPercent:    memUsed,
		CachedTickers: cached,
	})
}

// systemStats samples CPU over 100ms to keep the endpoint fast for pollers.
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
