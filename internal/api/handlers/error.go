package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apicontext "github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/i18n"
)

// HandleError logs err and writes the error envelope.
func HandleError(c *gin.Context, err error) {
	l := logger.Named("api.handlers").With(
		zap.String("path", c.Request.URL.Path),
		zap.String("requestId", apicontext.GetRequestID(c)),
		zap.String("locale", i18n.LocaleFromContext(c.Request.Context())),
		zap.Bool("retryable", errs.Retryable(err)),
		zap.Error(err),
	)
	if _, ok := i18n.IsI18nError(err); ok {
		l.Debug("Request rejected")
	} else if errs.KindOf(err) == errs.KindInternal {
		l.Error("Request failed")
	} else {
		l.Warn("Request failed")
	}
	apicontext.WriteError(c, err)
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(c *gin.Context) {
	apicontext.WriteError(c, i18n.ErrNotFoundI18n(i18n.ErrRouteNotFound).
		WithData(map[string]any{"Method": c.Request.Method, "Path": c.Request.URL.Path}))
}
