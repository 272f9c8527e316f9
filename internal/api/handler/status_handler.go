package handler

import (
	"net/http"
	"time"
)

// ServiceStatus is the static part of one watched service's status entry,
// built from the configuration at startup.
type ServiceStatus struct {
	Title    string   `json:"title"`
	Source   string   `json:"source"`
	Interval uint     `json:"interval_seconds"`
	Sinks    []string `json:"sinks"`
}

// StatusHandler serves a human-readable JSON status snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type StatusHandler struct {
	services []ServiceStatus
	queueLen func() int
	started  time.Time
}

func NewStatusHandler(services []ServiceStatus, queueLen func() int) *StatusHandler {
	return &StatusHandler{services: services, queueLen: queueLen, started: time.Now()}
}

// GetStatus handles GET /api/v1/status
//
// @Summary  Watcher status snapshot
// @Tags     status
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/status [get]
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":    int(time.Since(h.started).Seconds()),
		"services":          h.services,
		"admin_queue_depth": h.queueLen(),
	})
}
