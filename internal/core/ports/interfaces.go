// Package ports defines interfaces between the core packages and the API layer.
// These interfaces allow for dependency inversion, so that tests can swap the
// upstream for a stub and handlers never see concrete cache types.
package ports

import (
	"context"
	"encoding/json"
)

// Mode is the content delivery mode of a request.
type Mode string

const (
	// ModeEdit serves draft content with a preview token.
	ModeEdit Mode = "edit"
	// ModeExternalPreview serves draft content with app key and secret.
	ModeExternalPreview Mode = "ext_preview"
	// ModePublic serves published content with the single key.
	ModePublic Mode = "public"
)

// AuthMethod records how the request authenticated.
type AuthMethod string

const (
	AuthBearerToken            AuthMethod = "bearer-token"
	AuthQueryParamToken        AuthMethod = "query-param-token"
	AuthBasic                  AuthMethod = "basic-auth"
	AuthExternalPreviewDefault AuthMethod = "ext-preview-default"
	AuthSingleKey              AuthMethod = "single-key"
	AuthLegacy                 AuthMethod = "legacy"
)

// AuthContext selects the upstream endpoint and credentials for one request.
type AuthContext struct {
	Mode             Mode
	Method           AuthMethod
	PreviewToken     string
	UseStoredQueries bool
}

// GraphQLError is one entry of an upstream "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points into the executed document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Code returns extensions.code, or "" when absent.
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Result is what the upstream returned for one document. Data may be present
// alongside Errors.
type Result struct {
	Data   json.RawMessage
	Errors []GraphQLError
}

// Executor runs a GraphQL document against the upstream content API.
// A non-nil error means the document was never answered (transport failure);
// GraphQL-level errors are reported through Result.Errors.
type Executor interface {
	Execute(ctx context.Context, document string, variables map[string]any, auth AuthContext) (*Result, error)
}

// Endpoint reports the URL an Executor would use for auth.
type Endpoint interface {
	EndpointFor(auth AuthContext) string
}

// ResponseStore is the response cache as seen by the HTTP layer.
type ResponseStore interface {
	Clear()
	Len() int
}

// SchemaStore is the introspection cache as seen by the HTTP layer.
type SchemaStore interface {
	Clear()
	Len() int
}
