package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/internal/domain"
)

// CatalogHandler seeds the content cache
type CatalogHandler struct {
	cache *app.ContentCache
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cache *app.ContentCache) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

// PutContent handles PUT /api/v1/catalog/:contentId
func (h *CatalogHandler) PutContent(c *gin.Context) {
	var desc domain.ContentDescriptor
	if err := c.ShouldBindJSON(&desc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	desc.ContentID = c.Param("contentId")
	if desc.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	h.cache.Set(desc)
	c.JSON(http.StatusOK, gin.H{
		"content": desc,
		"kind":    domain.ClassifyContent(desc),
	})
}

// GetContent handles GET /api/v1/catalog/:contentId
func (h *CatalogHandler) GetContent(c *gin.Context) {
	desc, ok := h.cache.Get(c.Param("contentId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not cached"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content": desc,
		"kind":    domain.ClassifyContent(desc),
	})
}

// DeleteContent handles DELETE /api/v1/catalog/:contentId
func (h *CatalogHandler) DeleteContent(c *gin.Context) {
	h.cache.Invalidate(c.Param("contentId"))
	c.Status(http.StatusNoContent)
}

// ResetCatalog handles DELETE /api/v1/catalog
func (h *CatalogHandler) ResetCatalog(c *gin.Context) {
	h.cache.Reset()
	c.Status(http.StatusNoContent)
}
