package context

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/upstream"
	i18npkg "github.com/xzzpig/content-rest/internal/i18n"
)

func errorRouter(err error) *gin.Engine {
	r := gin.New()
	r.Use(LocaleMiddleware())
	r.GET("/test", func(c *gin.Context) {
		WriteError(c, err)
	})
	return r
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		lang        string
		wantStatus  int
		wantKind    string
		wantMessage string
	}{
		{
			name:        "translated service error",
			err:         i18npkg.ErrNotFoundI18n(i18npkg.ErrContentNotFoundForPath).WithData(map[string]any{"URL": "/about"}),
			wantStatus:  http.StatusNotFound,
			wantKind:    "NotFound",
			wantMessage: "No content found for path: /about",
		},
		{
			name:        "translated to Chinese",
			err:         i18npkg.ErrBadRequestI18n(i18npkg.ErrMissingURL),
			lang:        "zh-CN",
			wantStatus:  http.StatusBadRequest,
			wantKind:    "BadRequest",
			wantMessage: "缺少必需的查询参数: url",
		},
		{
			name:        "classified upstream error",
			err:         upstream.Classify([]ports.GraphQLError{{Message: `Cannot query field "Nope" on type "ArticlePage".`}}),
			wantStatus:  http.StatusBadRequest,
			wantKind:    "InvalidContentType",
			wantMessage: `Cannot query field "Nope" on type "ArticlePage".`,
		},
		{
			name:        "wrapped sentinel",
			err:         fmt.Errorf("dial: %w", errs.ErrGatewayTimeout),
			wantStatus:  http.StatusGatewayTimeout,
			wantKind:    "GatewayTimeout",
			wantMessage: "dial: upstream timeout",
		},
		{
			name:        "unknown error is internal",
			err:         assert.AnError,
			wantStatus:  http.StatusInternalServerError,
			wantKind:    "InternalServerError",
			wantMessage: assert.AnError.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.lang != "" {
				req.Header.Set("Accept-Language", tt.lang)
			}
			w := httptest.NewRecorder()
			errorRouter(tt.err).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := w.Body.String()
			assert.Equal(t, tt.wantKind, gjson.Get(body, "error").String())
			assert.Equal(t, tt.wantMessage, gjson.Get(body, "message").String())
			assert.Equal(t, int64(tt.wantStatus), gjson.Get(body, "statusCode").Int())
			assert.False(t, gjson.Get(body, "details").Exists())
		})
	}
}

func TestWriteError_DebugDetails(t *testing.T) {
	gin.SetMode(gin.DebugMode)
	defer gin.SetMode(gin.TestMode)

	err := upstream.Classify([]ports.GraphQLError{{Message: "Variable \"$limit\" got invalid value"}})
	w := httptest.NewRecorder()
	errorRouter(err).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	body := w.Body.String()
	assert.Equal(t, "InvalidVariable", gjson.Get(body, "error").String())
	assert.Equal(t, 1, len(gjson.Get(body, "details.graphqlErrors").Array()))
	assert.NotEmpty(t, gjson.Get(body, "details.cause").String())
}
