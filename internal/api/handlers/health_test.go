package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apicontext "github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/upstream"
)

func setupHealthRouter(up *mockUpstream) *gin.Engine {
	h := NewHealthHandler(up)
	h.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.Use(apicontext.LocaleMiddleware())
	r.GET("/health", h.Health)
	r.GET("/health/test", h.Test)
	return r
}

func TestHealthHandler_Health(t *testing.T) {
	up := &mockUpstream{}
	w := serve(setupHealthRouter(up), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "ok", gjson.Get(body, "status").String())
	assert.Equal(t, "2024-05-01T12:00:00Z", gjson.Get(body, "timestamp").String())
	assert.Equal(t, "GraphQL REST API Wrapper", gjson.Get(body, "service").String())
	assert.Equal(t, "https://graph.example.com/content/v2", gjson.Get(body, "graphql.endpoint").String())
	up.AssertNotCalled(t, "Execute")
}

func TestHealthHandler_Test(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		up := &mockUpstream{}
		up.onExecute(`{"__schema":{"queryType":{"name":"Query"}}}`, nil, nil)

		w := serve(setupHealthRouter(up), http.MethodGet, "/health/test", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Equal(t, "GraphQL connection successful", gjson.Get(body, "status").String())
		assert.Equal(t, "Query", gjson.Get(body, "response.__schema.queryType.name").String())
		assert.Equal(t, probeDocument, up.document(0))
	})

	t.Run("unreachable", func(t *testing.T) {
		up := &mockUpstream{}
		up.onExecute("", nil, &upstream.Error{Kind: errs.ErrServiceUnavailable, Message: "connect: connection refused"})

		w := serve(setupHealthRouter(up), http.MethodGet, "/health/test", "")

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := w.Body.String()
		assert.Equal(t, "GraphQL connection failed", gjson.Get(body, "status").String())
		assert.Equal(t, "connect: connection refused", gjson.Get(body, "error").String())
		assert.Equal(t, "https://graph.example.com/content/v2", gjson.Get(body, "endpoint").String())
	})
}

func TestHealthHandler_TestLocalized(t *testing.T) {
	up := &mockUpstream{}
	up.onExecute(`{"__schema":{"queryType":{"name":"Query"}}}`, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/test", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w := httptest.NewRecorder()
	setupHealthRouter(up).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GraphQL 连接成功", gjson.Get(w.Body.String(), "status").String())
}
