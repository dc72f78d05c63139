// Package api provides HTTP API routes and server setup.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/api/handlers"
	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/query"
	"github.com/xzzpig/content-rest/internal/core/rescache"
)

// RouterDeps contains all dependencies required for setting up API routes.
type RouterDeps struct {
	Config    *config.Config
	Upstream  handlers.Upstream
	Assembler *query.Assembler
	// Cache is nil when response caching is disabled.
	Cache   *rescache.Cache
	Schemas ports.SchemaStore
	// Gatherer backs the metrics endpoint; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// routesLog returns a named logger for the api.routes package.
func routesLog() *zap.Logger {
	return logger.Named("api.routes")
}

// RegisterAPIRoutes registers the content routes under /api and the admin routes.
func RegisterAPIRoutes(r *gin.Engine, deps RouterDeps) {
	content := handlers.NewContentHandler(deps.Upstream, deps.Assembler)

	cached := func(auth gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{auth}
		if deps.Cache != nil {
			chain = append(chain, context.CacheMiddleware(deps.Cache))
		}
		return chain
	}

	// Draft content
	preview := r.Group("/api/preview", cached(context.PreviewAuth(deps.Config.Upstream))...)
	{
		preview.GET("/contentByPath", content.ByPath)
		preview.GET("/:contentType", content.List)
		preview.GET("/:contentType/:id", content.ByID)
	}

	// Published content
	published := r.Group("/api/published", cached(context.PublishedAuth(deps.Config.Upstream))...)
	{
		published.GET("/contentByPath", content.ByPath)
		published.GET("/:contentType", content.List)
		published.GET("/:contentType/:id", content.ByID)
	}

	// Deprecated routes taking mode and token from the query string
	legacy := r.Group("/api", cached(context.LegacyAuth())...)
	{
		legacy.GET("/contentByPath", content.ByPath)
		legacy.GET("/:contentType", content.List)
		legacy.GET("/:contentType/:id", content.ByID)
	}

	if deps.Config.Admin.Enabled && deps.Schemas != nil {
		var responses ports.ResponseStore
		if deps.Cache != nil {
			responses = deps.Cache
		}
		admin := handlers.NewAdminHandler(responses, deps.Schemas)
		r.GET("/admin/cache", admin.CacheStats)
		r.DELETE("/admin/cache", admin.ClearCache)
		routesLog().Info("Admin routes enabled")
	}

	routesLog().Debug("Content routes registered", zap.Bool("cache", deps.Cache != nil))
}
