package controllers

import (
	"fmt"
	"net/http"
	"scoreboard/internal/services"
	"scoreboard/internal/storage/interfaces"
	"time"

	json "github.com/goccy/go-json"
)

// ClientCounter reports connected displays.
type ClientCounter interface {
	ClientCount() int
}

type HealthController struct {
	service   services.ScoreboardServiceInterface
	displays  ClientCounter
	store     interfaces.StoreInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Period        int     `json:"period"`
	ClockRunning  bool    `json:"clock_running"`
	Displays      int     `json:"displays"`
	StorageBytes  int     `json:"storage_bytes"`
	StorageError  string  `json:"storage_error,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	state := hc.service.State()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Period:        state.Period,
		ClockRunning:  state.IsRunning,
		Displays:      hc.displays.ClientCount(),
	}
	status := http.StatusOK
	if used, err := hc.store.Usage(); err != nil {
		resp.Status = "degraded"
		resp.StorageError = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		resp.StorageBytes = used
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.ScoreboardServiceInterface, displays ClientCounter, store interfaces.StoreInterface) *HealthController {
	return &HealthController{
		service:   service,
		displays:  displays,
		store:     store,
		startTime: time.Now(),
	}
}
