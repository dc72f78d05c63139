package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apicontext "github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/upstream"
)

func setupGraphQLRouter(up *mockUpstream) *gin.Engine {
	h := NewGraphQLHandler(up)
	r := gin.New()
	r.Use(apicontext.LocaleMiddleware())
	r.GET("/graphql", h.Usage)
	r.POST("/graphql", h.Execute)
	return r
}

func TestGraphQLHandler_Execute(t *testing.T) {
	up := &mockUpstream{}
	up.onExecute(`{"ArticlePage":{"items":[{"_id":"1"}]}}`, nil, nil)
	r := setupGraphQLRouter(up)

	w := serve(r, http.MethodPost, "/graphql", `{"query":"query Q($n: Int) { ArticlePage(limit: $n) { items { _id } } }","variables":{"n":5}}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "1", gjson.Get(body, "data.ArticlePage.items.0._id").String())
	assert.True(t, gjson.Get(body, "meta.executionTime").Exists())

	assert.Equal(t, map[string]any{"n": float64(5)}, up.variables(0))
	assert.Equal(t, ports.ModePublic, up.auth(0).Mode)
}

func TestGraphQLHandler_ExecuteDefaultsVariables(t *testing.T) {
	up := &mockUpstream{}
	up.onExecute(`{"x":1}`, nil, nil)
	r := setupGraphQLRouter(up)

	w := serve(r, http.MethodPost, "/graphql", `{"query":"{ x }"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{}, up.variables(0))
}

func TestGraphQLHandler_UpstreamErrors(t *testing.T) {
	up := &mockUpstream{}
	up.onExecute(`{"ArticlePage":null}`, []ports.GraphQLError{{
		Message:    `Cannot query field "Nope" on type "ArticlePage".`,
		Locations:  []ports.Location{{Line: 1, Column: 9}},
		Path:       []any{"ArticlePage", float64(0)},
		Extensions: map[string]any{"code": "GRAPHQL_VALIDATION_FAILED"},
	}}, nil)
	r := setupGraphQLRouter(up)

	w := serve(r, http.MethodPost, "/graphql", `{"query":"{ ArticlePage { Nope } }"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Equal(t, `Cannot query field "Nope" on type "ArticlePage".`, gjson.Get(body, "errors.0.message").String())
	assert.Equal(t, int64(9), gjson.Get(body, "errors.0.locations.0.column").Int())
	assert.JSONEq(t, `["ArticlePage",0]`, gjson.Get(body, "errors.0.path").Raw)
	assert.Equal(t, "GRAPHQL_VALIDATION_FAILED", gjson.Get(body, "errors.0.extensions.code").String())
	assert.JSONEq(t, `{"ArticlePage":null}`, gjson.Get(body, "data").Raw)
}

func TestGraphQLHandler_UpstreamErrorsWithoutData(t *testing.T) {
	up := &mockUpstream{}
	up.onExecute("", []ports.GraphQLError{{Message: "Syntax Error"}}, nil)
	r := setupGraphQLRouter(up)

	w := serve(r, http.MethodPost, "/graphql", `{"query":"{"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	data := gjson.Get(w.Body.String(), "data")
	assert.True(t, data.Exists())
	assert.Equal(t, gjson.Null, data.Type)
}

func TestGraphQLHandler_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing query", `{"variables":{}}`, `Missing or invalid "query" field in request body`},
		{"query not a string", `{"query":42}`, `Missing or invalid "query" field in request body`},
		{"empty query", `{"query":""}`, `Missing or invalid "query" field in request body`},
		{"not JSON", `query { x }`, "Request body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUpstream{}
			r := setupGraphQLRouter(up)

			w := serve(r, http.MethodPost, "/graphql", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "BadRequest", gjson.Get(w.Body.String(), "error").String())
			assert.Equal(t, tt.message, gjson.Get(w.Body.String(), "message").String())
			up.AssertNotCalled(t, "Execute")
		})
	}
}

func TestGraphQLHandler_TransportFailure(t *testing.T) {
	up := &mockUpstream{}
	up.onExecute("", nil, &upstream.Error{Kind: errs.ErrGatewayTimeout, Message: "request timeout"})
	r := setupGraphQLRouter(up)

	w := serve(r, http.MethodPost, "/graphql", `{"query":"{ x }"}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "GatewayTimeout", gjson.Get(w.Body.String(), "error").String())
}

func TestGraphQLHandler_Usage(t *testing.T) {
	r := setupGraphQLRouter(&mockUpstream{})

	w := serve(r, http.MethodGet, "/graphql", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "GraphQL Passthrough Endpoint", gjson.Get(body, "message").String())
	assert.Equal(t, "POST", gjson.Get(body, "usage.method").String())
}
