package i18n

// Error message keys
const (
	ErrGeneric                  = "error_generic"
	ErrMissingURL               = "error_missing_url"
	ErrContentNotFoundForPath   = "error_content_not_found_for_path"
	ErrContentNotFoundForID     = "error_content_not_found_for_id"
	ErrPreviewAuthRequired      = "error_preview_auth_required"
	ErrExternalPreviewDisabled  = "error_external_preview_disabled"
	ErrPublishedNotConfigured   = "error_published_not_configured"
	ErrMissingQuery             = "error_missing_query"
	ErrInvalidRequestBody       = "error_invalid_request_body"
	ErrRouteNotFound            = "error_route_not_found"
)

// Status message keys
const (
	StatusUpstreamReachable    = "status_upstream_reachable"
	StatusUpstreamUnreachable  = "status_upstream_unreachable"
	MessageLegacyDeprecated    = "message_legacy_deprecated"
	MessagePassthroughEndpoint = "message_passthrough_endpoint"
	MessageServiceName         = "message_service_name"
)
