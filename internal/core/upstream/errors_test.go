package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/ports"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		code    string
		want    errs.Kind
	}{
		{"unknown field", `Cannot query field "Foo" on type "Bar".`, "", errs.KindInvalidContentType},
		{"bad variable", `Variable "$where" got invalid value`, "", errs.KindInvalidVariable},
		{"no data", "No data returned for ArticlePage", "", errs.KindNotFound},
		{"timeout text", "request timeout after 30000ms", "", errs.KindGatewayTimeout},
		{"etimedout", "connect ETIMEDOUT 10.0.0.1:443", "", errs.KindGatewayTimeout},
		{"refused", "connect ECONNREFUSED 127.0.0.1:4000", "", errs.KindServiceUnavailable},
		{"fetch failed", "fetch failed", "", errs.KindServiceUnavailable},
		{"message wins over code", `Cannot query field "x"`, "BAD_USER_INPUT", errs.KindInvalidContentType},
		{"code fallback validation", "Unknown argument.", "GRAPHQL_VALIDATION_FAILED", errs.KindInvalidContentType},
		{"code fallback input", "Expected type Int.", "BAD_USER_INPUT", errs.KindInvalidVariable},
		{"unmatched", "Something exploded", "", errs.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ports.GraphQLError{Message: tt.message}
			if tt.code != "" {
				e.Extensions = map[string]any{"code": tt.code}
			}
			err := Classify([]ports.GraphQLError{e, {Message: "second"}})
			assert.Equal(t, tt.want, errs.KindOf(err))
			assert.Equal(t, tt.message, err.Error())

			var ue *Error
			assert.ErrorAs(t, err, &ue)
			assert.Len(t, ue.GraphQL, 2)
		})
	}
}

func TestClassify_Empty(t *testing.T) {
	assert.NoError(t, Classify(nil))
}

func TestTransportKind(t *testing.T) {
	assert.Equal(t, errs.ErrGatewayTimeout, transportKind("Post \"http://x\": context deadline exceeded"))
	assert.Equal(t, errs.ErrServiceUnavailable, transportKind("dial tcp 127.0.0.1:1: connect: connection refused"))
	assert.Equal(t, errs.ErrServiceUnavailable, transportKind("dial tcp: lookup nohost: no such host"))
	assert.Nil(t, transportKind("500 Internal Server Error; body: \"oops\""))
}

func TestResponseBody(t *testing.T) {
	body, ok := responseBody(`400 Bad Request; body: "{\"errors\":[{\"message\":\"bad\"}],\"data\":null}"`)
	assert.True(t, ok)
	assert.Equal(t, "bad", body.Errors[0].Message)
	assert.Nil(t, body.Data)

	_, ok = responseBody(`502 Bad Gateway; body: "<html></html>"`)
	assert.False(t, ok)

	_, ok = responseBody("dial tcp: connection refused")
	assert.False(t, ok)
}
