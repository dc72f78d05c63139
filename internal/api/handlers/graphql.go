package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	apicontext "github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/i18n"
)

func graphqlLog() *zap.Logger {
	return logger.Named("api.graphql")
}

// GraphQLHandler forwards raw documents to the upstream with public credentials.
type GraphQLHandler struct {
	exec ports.Executor
}

// NewGraphQLHandler creates a GraphQLHandler.
func NewGraphQLHandler(exec ports.Executor) *GraphQLHandler {
	return &GraphQLHandler{exec: exec}
}

// GraphQLResponse is returned for a document the upstream answered without errors.
type GraphQLResponse struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		ExecutionTime int64 `json:"executionTime"`
	} `json:"meta"`
}

// GraphQLErrorResponse is returned when the upstream reported errors.
type GraphQLErrorResponse struct {
	Errors gqlerror.List   `json:"errors"`
	Data   json.RawMessage `json:"data"`
}

// Execute handles POST /graphql
// @Summary Run a raw GraphQL document
// @Accept json
// @Produce json
// @Success 200 {object} GraphQLResponse
// @Failure 400 {object} GraphQLErrorResponse
// @Router /graphql [post]
func (h *GraphQLHandler) Execute(c *gin.Context) {
	start := time.Now()

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		HandleError(c, i18n.ErrBadRequestI18n(i18n.ErrInvalidRequestBody).WithCause(err))
		return
	}
	doc, ok := body["query"].(string)
	if !ok || doc == "" {
		HandleError(c, i18n.ErrBadRequestI18n(i18n.ErrMissingQuery))
		return
	}
	variables, _ := body["variables"].(map[string]any)
	if variables == nil {
		variables = map[string]any{}
	}

	graphqlLog().Debug("Executing raw document",
		zap.String("query", doc),
		zap.Any("variables", variables),
	)

	res, err := h.exec.Execute(c.Request.Context(), doc, variables, ports.AuthContext{Mode: ports.ModePublic})
	if err != nil {
		HandleError(c, err)
		return
	}

	if len(res.Errors) > 0 {
		data := res.Data
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		c.JSON(http.StatusBadRequest, GraphQLErrorResponse{Errors: toGQLErrors(res.Errors), Data: data})
		return
	}

	resp := GraphQLResponse{Data: res.Data}
	resp.Meta.ExecutionTime = time.Since(start).Milliseconds()
	c.JSON(http.StatusOK, resp)
}

// Usage handles GET /graphql
func (h *GraphQLHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": i18n.T(apicontext.GetLocalizer(c), i18n.MessagePassthroughEndpoint),
		"usage": gin.H{
			"method":      "POST",
			"contentType": "application/json",
			"body": gin.H{
				"query":     "string (required) - GraphQL query",
				"variables": "object (optional) - GraphQL variables",
			},
			"example": gin.H{
				"query":     "query { ArticlePage(limit: 5) { items { _id Heading } } }",
				"variables": gin.H{},
			},
		},
		"docs": "See README.md for more information",
	})
}

func toGQLErrors(errs []ports.GraphQLError) gqlerror.List {
	list := make(gqlerror.List, 0, len(errs))
	for _, e := range errs {
		gqlErr := &gqlerror.Error{
			Message:    e.Message,
			Extensions: e.Extensions,
		}
		for _, loc := range e.Locations {
			gqlErr.Locations = append(gqlErr.Locations, gqlerror.Location{Line: loc.Line, Column: loc.Column})
		}
		for _, el := range e.Path {
			switch v := el.(type) {
			case string:
				gqlErr.Path = append(gqlErr.Path, ast.PathName(v))
			case float64:
				gqlErr.Path = append(gqlErr.Path, ast.PathIndex(int(v)))
			case int:
				gqlErr.Path = append(gqlErr.Path, ast.PathIndex(v))
			}
		}
		list = append(list, gqlErr)
	}
	return list
}
