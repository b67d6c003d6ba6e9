package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/internal/domain"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ViewMessage is one frame of the downloads stream
type ViewMessage struct {
	Owner     domain.OwnerKey      `json:"owner"`
	Stats     domain.DownloadStats `json:"stats"`
	Downloads []domain.Download    `json:"downloads"`
}

// ViewStreamHandler pushes the active owner's downloads over a WebSocket
type ViewStreamHandler struct {
	projector *app.ViewProjector
	logger    *zap.Logger
}

// NewViewStreamHandler creates a new view stream handler
func NewViewStreamHandler(projector *app.ViewProjector, logger *zap.Logger) *ViewStreamHandler {
	return &ViewStreamHandler{
		projector: projector,
		logger:    logger,
	}
}

// Stream handles GET /api/v1/downloads/stream
func (h *ViewStreamHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	views, cancel := h.projector.Subscribe()
	defer cancel()

	h.logger.Debug("View stream client connected",
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Read messages from client so close frames and pongs are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case view, ok := <-views:
			if !ok {
				return
			}
			msg := ViewMessage{
				Owner:     view.Owner,
				Stats:     domain.CountStats(view.Downloads),
				Downloads: view.Downloads,
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("View stream client gone", zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
