package controllers

import (
	"fmt"
	"net/http"
	"time"

	"fitsyncd/internal/providers"
	"fitsyncd/internal/syncer"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	coordinator syncer.CoordinatorInterface
	monitor     providers.ConnectivityInterface
	startTime   time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Connected     bool    `json:"connected"`
	QueueDepth    int     `json:"queue_depth"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Connected:     hc.monitor.Current(),
		QueueDepth:    hc.coordinator.QueueDepth(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(coordinator syncer.CoordinatorInterface, monitor providers.ConnectivityInterface) *HealthController {
	return &HealthController{
		coordinator: coordinator,
		monitor:     monitor,
		startTime:   time.Now(),
	}
}
