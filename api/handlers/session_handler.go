package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/internal/domain"
)

// SessionHandler switches the active owner
type SessionHandler struct {
	downloadMgr *app.DownloadManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(downloadMgr *app.DownloadManager) *SessionHandler {
	return &SessionHandler{downloadMgr: downloadMgr}
}

// SessionRequest selects an account and profile
type SessionRequest struct {
	AccountID string `json:"account_id"`
	ProfileID string `json:"profile_id"`
}

// SessionResponse describes the active owner
type SessionResponse struct {
	Owner      domain.OwnerKey `json:"owner"`
	HasProfile bool            `json:"has_profile"`
}

func sessionResponse(owner domain.OwnerKey) SessionResponse {
	return SessionResponse{Owner: owner, HasProfile: owner.HasProfile()}
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse(h.downloadMgr.ActiveOwner()))
}

// SetSession handles PUT /api/v1/session
func (h *SessionHandler) SetSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := h.downloadMgr.SetActiveOwner(req.AccountID, req.ProfileID)
	c.JSON(http.StatusOK, sessionResponse(owner))
}

// ClearSession handles DELETE /api/v1/session
func (h *SessionHandler) ClearSession(c *gin.Context) {
	h.downloadMgr.ClearActiveOwner()
	c.JSON(http.StatusOK, sessionResponse(h.downloadMgr.ActiveOwner()))
}
