package context

// Context keys for gin context values
const (
	ContextKeyAuth      = "Auth"
	ContextKeyRequestID = "RequestID"
	ContextKeyLocale    = "locale"
)

// Response headers set by the middleware in this package.
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderContentMode        = "X-Content-Mode"
	HeaderAuthMethod         = "X-Auth-Method"
	HeaderCache              = "X-Cache"
	HeaderCacheAge           = "X-Cache-Age"
	HeaderDeprecated         = "X-API-Deprecated"
	HeaderDeprecationMessage = "X-API-Deprecation-Message"
)
