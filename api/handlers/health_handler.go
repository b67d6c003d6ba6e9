package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/flix-offline-go/internal/app"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	downloadMgr *app.DownloadManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(downloadMgr *app.DownloadManager) *HealthHandler {
	return &HealthHandler{
		downloadMgr: downloadMgr,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Engine  struct {
		Running bool `json:"running"`
		Timers  int  `json:"timers"`
	} `json:"engine"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Engine.Running = h.downloadMgr.IsRunning()
	response.Engine.Timers = h.downloadMgr.ActiveTimers()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.downloadMgr.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "download manager stopped",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
