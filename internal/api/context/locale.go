package context

import (
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	i18npkg "github.com/xzzpig/content-rest/internal/i18n"
)

// GinContextKeyLocalizer is the key for storing Localizer in Gin context
const GinContextKeyLocalizer = "localizer"

// LocaleMiddleware parses Accept-Language header and stores Localizer in both contexts
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		locale := i18npkg.ParseLocale(lang)
		localizer := i18npkg.NewLocalizer(locale)

		c.Set(ContextKeyLocale, locale)
		c.Set(GinContextKeyLocalizer, localizer)

		ctx := c.Request.Context()
		ctx = i18npkg.WithLocalizer(ctx, localizer)
		ctx = i18npkg.WithLocale(ctx, locale)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetLocalizer retrieves the Localizer from Gin context
func GetLocalizer(c *gin.Context) *i18n.Localizer {
	if localizer, err := getContextValue[*i18n.Localizer](c, GinContextKeyLocalizer); err == nil {
		return localizer
	}
	return i18npkg.LocalizerFromContext(c.Request.Context())
}
