package context

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xzzpig/content-rest/internal/core/ports"
)

func getContextValue[T any](c *gin.Context, key string) (T, error) {
	var zero T
	val, exists := c.Get(key)
	if !exists {
		return zero, errors.New(key + " not initialized")
	}
	return val.(T), nil
}

// GetAuth retrieves the AuthContext set by one of the auth middlewares.
// Returns an error if no auth middleware ran.
func GetAuth(c *gin.Context) (ports.AuthContext, error) {
	return getContextValue[ports.AuthContext](c, ContextKeyAuth)
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	id, _ := getContextValue[string](c, ContextKeyRequestID)
	return id
}

// SetAuthHeaders echoes the delivery mode and auth method of the request.
func SetAuthHeaders(c *gin.Context, auth ports.AuthContext) {
	mode := auth.Mode
	if mode == "" {
		mode = ports.ModePublic
	}
	c.Header(HeaderContentMode, string(mode))
	if auth.Method != "" {
		c.Header(HeaderAuthMethod, string(auth.Method))
	}
}
