package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/api/handlers"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/i18n"
)

// Version is reported by the root endpoint.
const Version = "2.0.0"

// SetupRouter builds the engine with every route registered.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware
	r.Use(ginLogger(logger.Named("api.http")))
	r.Use(gin.Recovery())
	r.Use(context.RequestID())
	r.Use(context.LocaleMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language", context.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", context.HeaderRequestID, context.HeaderCache, context.HeaderCacheAge, context.HeaderContentMode, context.HeaderAuthMethod, context.HeaderDeprecated, context.HeaderDeprecationMessage},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/", rootInfo)

	health := handlers.NewHealthHandler(deps.Upstream)
	r.GET("/health", health.Health)
	r.GET("/health/test", health.Test)

	if deps.Config.Metrics.Enabled {
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.GET(deps.Config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	gql := handlers.NewGraphQLHandler(deps.Upstream)
	r.GET("/graphql", gql.Usage)
	r.POST("/graphql", gql.Execute)

	RegisterAPIRoutes(r, deps)

	r.NoRoute(handlers.NotFoundHandler)

	return r
}

func rootInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": i18n.T(context.GetLocalizer(c), i18n.MessageServiceName),
		"version": Version,
		"endpoints": gin.H{
			"health":    "/health",
			"preview":   "/api/preview/:contentType",
			"published": "/api/published/:contentType",
			"graphql":   "POST /graphql (raw GraphQL passthrough)",
			"legacy":    "/api/:contentType (deprecated)",
		},
	})
}

func ginLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				l.Debug(e, zap.String("path", path), zap.String("requestId", context.GetRequestID(c)))
			}
		}
		l.Info(path,
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.String("cache", c.Writer.Header().Get(context.HeaderCache)),
			zap.String("requestId", context.GetRequestID(c)),
			zap.Duration("latency", latency),
		)
	}
}
