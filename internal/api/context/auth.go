// Package context provides request context utilities for the API.
package context

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/api/params"
	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/i18n"
)

// authLog returns a named logger for the api.auth package.
func authLog() *zap.Logger {
	return logger.Named("api.auth")
}

// supportedPreviewMethods is reported when a preview request carries no credentials.
var supportedPreviewMethods = []string{
	"Authorization: Bearer <token> (from CMS editor)",
	"Authorization: Basic <base64> (external preview)",
	"?previewToken=<token> (query parameter)",
}

// PreviewAuth resolves draft-content credentials. In order: a Bearer token
// selects edit mode, a previewToken query parameter selects edit mode, Basic
// credentials select external preview, and with no credentials external
// preview is used when configured.
func PreviewAuth(cfg config.Upstream) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		stored := c.Query("useStoredQueries") == "true"

		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			setAuth(c, ports.AuthContext{Mode: ports.ModeEdit, Method: ports.AuthBearerToken, PreviewToken: token, UseStoredQueries: stored})
			return
		}

		token := c.Query("previewToken")
		if token == "" {
			token = c.Query("preview_token")
		}
		if token != "" {
			setAuth(c, ports.AuthContext{Mode: ports.ModeEdit, Method: ports.AuthQueryParamToken, PreviewToken: token, UseStoredQueries: stored})
			return
		}

		if strings.HasPrefix(header, "Basic ") {
			if !cfg.ExternalPreviewReady() {
				authLog().Warn("External preview requested but not configured",
					zap.String("ip", c.ClientIP()),
					zap.String("path", c.Request.URL.Path),
				)
				WriteError(c, i18n.ErrUnauthorizedI18n(i18n.ErrExternalPreviewDisabled))
				return
			}
			setAuth(c, ports.AuthContext{Mode: ports.ModeExternalPreview, Method: ports.AuthBasic, UseStoredQueries: stored})
			return
		}

		if cfg.ExternalPreviewReady() {
			setAuth(c, ports.AuthContext{Mode: ports.ModeExternalPreview, Method: ports.AuthExternalPreviewDefault, UseStoredQueries: stored})
			return
		}

		authLog().Warn("Preview request without credentials",
			zap.String("ip", c.ClientIP()),
			zap.String("path", c.Request.URL.Path),
		)
		WriteError(c, i18n.ErrUnauthorizedI18n(i18n.ErrPreviewAuthRequired).
			WithDetails(gin.H{"supportedMethods": supportedPreviewMethods}))
	}
}

// PublishedAuth always serves published content with the single key.
// Credentials on the request are ignored.
func PublishedAuth(cfg config.Upstream) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.PublishedReady() {
			authLog().Error("Published content requested without single key or gateway configured")
			WriteError(c, i18n.ErrConfigurationI18n(i18n.ErrPublishedNotConfigured))
			return
		}
		setAuth(c, ports.AuthContext{
			Mode:             ports.ModePublic,
			Method:           ports.AuthSingleKey,
			UseStoredQueries: c.Query("useStoredQueries") == "true",
		})
	}
}

// LegacyAuth takes mode and preview token from the query string and marks
// the response as deprecated.
func LegacyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authLog().Warn("Deprecated route called",
			zap.String("path", c.Request.URL.Path),
		)
		c.Header(HeaderDeprecated, "true")
		c.Header(HeaderDeprecationMessage, i18n.T(i18n.NewLocalizer("en"), i18n.MessageLegacyDeprecated))

		auth := params.Parse(c.Request.URL.RawQuery).Auth()
		auth.Method = ports.AuthLegacy
		setAuth(c, auth)
	}
}

func setAuth(c *gin.Context, auth ports.AuthContext) {
	c.Set(ContextKeyAuth, auth)
	c.Next()
}
