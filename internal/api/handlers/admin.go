package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
)

// AdminHandler exposes the in-memory caches for inspection and flushing.
type AdminHandler struct {
	responses ports.ResponseStore
	schemas   ports.SchemaStore
}

// NewAdminHandler creates an AdminHandler. A nil responses store means the
// response cache is disabled.
func NewAdminHandler(responses ports.ResponseStore, schemas ports.SchemaStore) *AdminHandler {
	return &AdminHandler{responses: responses, schemas: schemas}
}

// CacheStats handles GET /admin/cache
func (h *AdminHandler) CacheStats(c *gin.Context) {
	stats := gin.H{"schemas": h.schemas.Len()}
	if h.responses != nil {
		stats["responses"] = h.responses.Len()
	}
	c.JSON(http.StatusOK, stats)
}

// ClearCache handles DELETE /admin/cache
func (h *AdminHandler) ClearCache(c *gin.Context) {
	if h.responses != nil {
		h.responses.Clear()
	}
	h.schemas.Clear()
	logger.Named("api.admin").Info("Caches cleared")
	c.Status(http.StatusNoContent)
}
