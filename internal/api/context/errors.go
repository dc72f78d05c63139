package context

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/upstream"
	"github.com/xzzpig/content-rest/internal/i18n"
)

// ErrorResponse is the JSON body of every failed REST request.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
}

// NewErrorResponse builds the envelope for err. Service errors are translated
// with the request localizer; other errors are categorized by errs.KindOf.
// In debug mode upstream errors carry their GraphQL error list as details.
func NewErrorResponse(c *gin.Context, err error) ErrorResponse {
	if e, ok := i18n.IsI18nError(err); ok {
		return ErrorResponse{
			Error:      string(e.Kind),
			Message:    e.Translate(GetLocalizer(c)),
			StatusCode: e.StatusCode,
			Details:    e.Details,
		}
	}

	kind := errs.KindOf(err)
	resp := ErrorResponse{
		Error:      string(kind),
		Message:    err.Error(),
		StatusCode: errs.HTTPStatus(kind),
	}
	if resp.Message == "" {
		resp.Message = i18n.T(GetLocalizer(c), i18n.ErrGeneric)
	}
	if gin.IsDebugging() {
		details := gin.H{"cause": err.Error()}
		var upErr *upstream.Error
		if errors.As(err, &upErr) && len(upErr.GraphQL) > 0 {
			details["graphqlErrors"] = upErr.GraphQL
		}
		resp.Details = details
	}
	return resp
}

// WriteError aborts the request with the error envelope for err.
func WriteError(c *gin.Context, err error) {
	resp := NewErrorResponse(c, err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}
