package rest

import (
	"context"
	"net/http"

	"github.com/darkdragonsastro/trackcore/internal/common/service"
	"github.com/darkdragonsastro/trackcore/internal/tracker"
	"github.com/gin-gonic/gin"
)

// TrackerHandlers exposes read/control endpoints over a running Tracker.
type TrackerHandlers struct {
	t *tracker.Tracker
}

// NewTrackerHandlers wraps t.
func NewTrackerHandlers(t *tracker.Tracker) *TrackerHandlers {
	return &TrackerHandlers{t: t}
}

// Health reports the wrapped Tracker's health status.
func (h *TrackerHandlers) Health() service.HealthStatus {
	return h.t.Health()
}

// StatusResponse reports whether the tracker is running and how its last
// run ended.
type StatusResponse struct {
	Running    bool   `json:"running"`
	LastReason string `json:"last_stop_reason,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

func (h *TrackerHandlers) getStatus(c *gin.Context) {
	reason, err := h.t.LastResult()
	resp := StatusResponse{
		Running:    h.t.Running(),
		LastReason: string(reason),
	}
	if err != nil {
		resp.LastError = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TrackerHandlers) getTelemetry(c *gin.Context) {
	c.JSON(http.StatusOK, h.t.Telemetry())
}

// start launches Run in the background if it is not already running. The
// run uses its own background context, not the HTTP request's, so it keeps
// going after the response is sent; stop it via Stop (the /stop endpoint).
func (h *TrackerHandlers) start(c *gin.Context) {
	if h.t.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "tracker already running"})
		return
	}

	go h.t.Run(context.Background())

	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// stop requests a graceful stop at the next cycle boundary.
func (h *TrackerHandlers) stop(c *gin.Context) {
	h.t.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stop requested"})
}
