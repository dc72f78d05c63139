package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/i18n"
)

// probeDocument is the cheapest document every GraphQL server answers.
const probeDocument = `{ __schema { queryType { name } } }`

// Upstream is the collaborator the health checks need.
type Upstream interface {
	ports.Executor
	ports.Endpoint
}

// HealthHandler reports liveness and upstream reachability.
type HealthHandler struct {
	upstream Upstream
	now      func() time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(upstream Upstream) *HealthHandler {
	return &HealthHandler{upstream: upstream, now: time.Now}
}

func (h *HealthHandler) endpoint() string {
	return h.upstream.EndpointFor(ports.AuthContext{Mode: ports.ModePublic})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"service":   i18n.Ctx(c.Request.Context(), i18n.MessageServiceName),
		"graphql": gin.H{
			"endpoint": h.endpoint(),
		},
	})
}

// Test handles GET /health/test by sending a probe document upstream.
func (h *HealthHandler) Test(c *gin.Context) {
	ctx := c.Request.Context()
	res, err := h.upstream.Execute(ctx, probeDocument, map[string]any{}, ports.AuthContext{Mode: ports.ModePublic})
	if err != nil {
		logger.Named("api.health").Warn("Upstream probe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   i18n.Ctx(ctx, i18n.StatusUpstreamUnreachable),
			"endpoint": h.endpoint(),
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   i18n.Ctx(ctx, i18n.StatusUpstreamReachable),
		"endpoint": h.endpoint(),
		"response": res.Data,
	})
}
