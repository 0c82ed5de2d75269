package controllers

import (
	"admission/internal/services"
	"fmt"
	"net/http"
	"time"
)

type HealthController struct {
	content   services.ContentServiceInterface
	registry  services.RegistryServiceInterface
	telemetry services.TelemetryServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status            string  `json:"status"`
	Uptime            string  `json:"uptime"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	ContentGeneration int64   `json:"content_generation"`
	LastSync          string  `json:"last_sync,omitempty"`
	TelemetryBuffered int     `json:"telemetry_buffered"`
	Users             int     `json:"users"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:            "ok",
		Uptime:            formatDuration(uptime),
		UptimeSeconds:     uptime.Seconds(),
		ContentGeneration: hc.content.Generation(),
		TelemetryBuffered: hc.telemetry.Buffered(),
		Users:             hc.registry.UserCount(),
	}
	if last := hc.content.LastSync(); !last.IsZero() {
		resp.LastSync = last.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(content services.ContentServiceInterface, registry services.RegistryServiceInterface, telemetry services.TelemetryServiceInterface) *HealthController {
	return &HealthController{
		content:   content,
		registry:  registry,
		telemetry: telemetry,
		startTime: time.Now(),
	}
}
