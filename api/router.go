package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/flix-offline-go/api/handlers"
	"github.com/yourusername/flix-offline-go/api/middleware"
	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/pkg/logger"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	downloadMgr *app.DownloadManager,
	cache *app.ContentCache,
	logAdapter *logger.LoggerAdapter,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logAdapter))
	router.Use(middleware.Recovery(logAdapter))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(downloadMgr)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sessionHandler := handlers.NewSessionHandler(downloadMgr)
		session := v1.Group("/session")
		{
			session.GET("", sessionHandler.GetSession)
			session.PUT("", sessionHandler.SetSession)
			session.DELETE("", sessionHandler.ClearSession)
		}

		downloadHandler := handlers.NewDownloadHandler(downloadMgr, cache, logAdapter.General())
		streamHandler := handlers.NewViewStreamHandler(downloadMgr.Projector(), logAdapter.General())
		downloads := v1.Group("/downloads")
		{
			downloads.POST("", downloadHandler.StartDownload)
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.DELETE("", downloadHandler.ClearActive)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/stream", streamHandler.Stream)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.POST("/:id/toggle", downloadHandler.ToggleDownload)
			downloads.DELETE("/:id", downloadHandler.RemoveDownload)
		}

		owners := v1.Group("/owners/:accountId/:profileId")
		{
			owners.GET("/downloads", downloadHandler.ListOwnerDownloads)
			owners.DELETE("/downloads", downloadHandler.ClearOwnerDownloads)
		}

		if cache != nil {
			catalogHandler := handlers.NewCatalogHandler(cache)
			catalog := v1.Group("/catalog")
			{
				catalog.DELETE("", catalogHandler.ResetCatalog)
				catalog.PUT("/:contentId", catalogHandler.PutContent)
				catalog.GET("/:contentId", catalogHandler.GetContent)
				catalog.DELETE("/:contentId", catalogHandler.DeleteContent)
			}
		}

		if logsDir := logAdapter.LogsDir(); logsDir != "" {
			logHandler := handlers.NewLogHandler(logsDir)
			logStream := handlers.NewLogWebSocketHandler(logsDir, logAdapter.General())
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/stream", logStream.HandleWebSocket)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
