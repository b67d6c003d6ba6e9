package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	downloadMgr *app.DownloadManager
	cache       *app.ContentCache
	logger      *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(downloadMgr *app.DownloadManager, cache *app.ContentCache, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloadMgr: downloadMgr,
		cache:       cache,
		logger:      logger,
	}
}

// StartDownloadRequest represents a request to start a download.
// Owner fields are optional; without them the active owner is used.
type StartDownloadRequest struct {
	domain.ContentDescriptor
	AccountID string `json:"account_id,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
}

// DownloadListResponse is the body of list endpoints
type DownloadListResponse struct {
	Owner     domain.OwnerKey   `json:"owner"`
	Count     int               `json:"count"`
	Downloads []domain.Download `json:"downloads"`
}

// StartDownload handles POST /api/v1/downloads
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req StartDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ContentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_id is required"})
		return
	}

	desc := req.ContentDescriptor
	if h.cache != nil {
		if cached, ok := h.cache.Get(desc.ContentID); ok {
			desc = desc.Merge(cached)
		}
	}
	if desc.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required for content not in the catalog cache"})
		return
	}

	var (
		id string
		ok bool
	)
	if req.AccountID != "" || req.ProfileID != "" {
		id, ok = h.downloadMgr.Start(desc, req.AccountID, req.ProfileID)
	} else {
		id, ok = h.downloadMgr.StartActive(desc)
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no profile selected"})
		return
	}

	download, _ := h.downloadMgr.Get(id)
	c.JSON(http.StatusCreated, download)
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	download, ok := h.downloadMgr.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}
	c.JSON(http.StatusOK, download)
}

// ListDownloads handles GET /api/v1/downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	downloads := h.downloadMgr.Downloads()
	c.JSON(http.StatusOK, DownloadListResponse{
		Owner:     h.downloadMgr.ActiveOwner(),
		Count:     len(downloads),
		Downloads: downloads,
	})
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.downloadMgr.Stats())
}

// ToggleDownload handles POST /api/v1/downloads/:id/toggle
func (h *DownloadHandler) ToggleDownload(c *gin.Context) {
	id := c.Param("id")
	download, ok := h.downloadMgr.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}
	if download.IsTerminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "download already completed"})
		return
	}

	state, changed := h.downloadMgr.Toggle(id)
	if !changed {
		// Completed or removed between the lookup and the toggle
		c.JSON(http.StatusConflict, gin.H{"error": "download can no longer be toggled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "state": state})
}

// RemoveDownload handles DELETE /api/v1/downloads/:id
func (h *DownloadHandler) RemoveDownload(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"id": id, "removed": h.downloadMgr.Remove(id)})
}

// ClearActive handles DELETE /api/v1/downloads
func (h *DownloadHandler) ClearActive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": h.downloadMgr.ClearActive()})
}

// ListOwnerDownloads handles GET /api/v1/owners/:accountId/:profileId/downloads
func (h *DownloadHandler) ListOwnerDownloads(c *gin.Context) {
	owner := domain.ResolveOwner(c.Param("accountId"), c.Param("profileId"))
	downloads := h.downloadMgr.ListFor(owner.AccountID, owner.ProfileID)
	c.JSON(http.StatusOK, DownloadListResponse{
		Owner:     owner,
		Count:     len(downloads),
		Downloads: downloads,
	})
}

// ClearOwnerDownloads handles DELETE /api/v1/owners/:accountId/:profileId/downloads
func (h *DownloadHandler) ClearOwnerDownloads(c *gin.Context) {
	removed := h.downloadMgr.ClearAll(c.Param("accountId"), c.Param("profileId"))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
