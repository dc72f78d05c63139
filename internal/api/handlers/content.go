// Package handlers provides HTTP request handlers for the API.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apicontext "github.com/xzzpig/content-rest/internal/api/context"
	"github.com/xzzpig/content-rest/internal/api/params"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
	"github.com/xzzpig/content-rest/internal/core/query"
	"github.com/xzzpig/content-rest/internal/core/rest"
	"github.com/xzzpig/content-rest/internal/i18n"
)

func contentLog() *zap.Logger {
	return logger.Named("api.content")
}

// ContentHandler serves content types as REST resources.
type ContentHandler struct {
	exec      ports.Executor
	assembler *query.Assembler
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(exec ports.Executor, assembler *query.Assembler) *ContentHandler {
	return &ContentHandler{
		exec:      exec,
		assembler: assembler,
	}
}

// List handles GET /:contentType
// @Summary List items of a content type
// @Produce json
// @Param contentType path string true "GraphQL content type"
// @Success 200 {object} rest.Response
// @Failure 400 {object} apicontext.ErrorResponse
// @Router /{contentType} [get]
func (h *ContentHandler) List(c *gin.Context) {
	auth, err := apicontext.GetAuth(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	contentType := c.Param("contentType")
	resp, err := h.fetch(c, contentType, params.Parse(c.Request.URL.RawQuery), auth)
	if err != nil {
		HandleError(c, err)
		return
	}

	apicontext.SetAuthHeaders(c, auth)
	c.JSON(http.StatusOK, resp)
}

// ByID handles GET /:contentType/:id
// @Summary Get one item of a content type by id
// @Produce json
// @Param contentType path string true "GraphQL content type"
// @Param id path string true "Item id"
// @Success 200 {object} rest.Response
// @Failure 404 {object} apicontext.ErrorResponse
// @Router /{contentType}/{id} [get]
func (h *ContentHandler) ByID(c *gin.Context) {
	auth, err := apicontext.GetAuth(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	contentType := c.Param("contentType")
	id := c.Param("id")
	p := params.Parse(c.Request.URL.RawQuery)
	p.IDs = []string{id}

	resp, err := h.fetch(c, contentType, p, auth)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !resp.PromoteFirst() {
		HandleError(c, i18n.ErrNotFoundI18n(i18n.ErrContentNotFoundForID).
			WithData(map[string]any{"ContentType": contentType, "ID": id}))
		return
	}

	apicontext.SetAuthHeaders(c, auth)
	c.JSON(http.StatusOK, resp)
}

// ByPath handles GET /contentByPath?url=&base=
// @Summary Resolve a URL path to its content item
// @Produce json
// @Param url query string true "URL path, with or without trailing slash"
// @Param base query string false "Site base"
// @Success 200 {object} rest.Response
// @Failure 400 {object} apicontext.ErrorResponse
// @Failure 404 {object} apicontext.ErrorResponse
// @Router /contentByPath [get]
func (h *ContentHandler) ByPath(c *gin.Context) {
	auth, err := apicontext.GetAuth(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	url := c.Query("url")
	if url == "" {
		HandleError(c, i18n.ErrBadRequestI18n(i18n.ErrMissingURL))
		return
	}
	base := c.Query("base")
	p := params.Parse(c.Request.URL.RawQuery)

	start := time.Now()
	doc := h.assembler.AssemblePath(c.Request.Context(), query.PathSpec{
		URL:    url,
		Base:   base,
		Fields: p.Fields,
		Expand: p.Expand,
		Depth:  p.Depth,
	})
	vars := query.PathVariables(url, base)
	contentLog().Debug("Executing path query",
		zap.String("url", url),
		zap.String("query", doc),
		zap.Any("variables", vars),
	)

	res, err := h.exec.Execute(c.Request.Context(), doc, vars, auth)
	if err != nil {
		HandleError(c, err)
		return
	}
	resp, err := rest.Format(res, query.PathContentType, time.Since(start))
	if err != nil {
		HandleError(c, err)
		return
	}
	if !resp.HasItem() {
		HandleError(c, i18n.ErrNotFoundI18n(i18n.ErrContentNotFoundForPath).WithData(map[string]any{"URL": url}))
		return
	}

	apicontext.SetAuthHeaders(c, auth)
	c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) fetch(c *gin.Context, contentType string, p query.Params, auth ports.AuthContext) (*rest.Response, error) {
	start := time.Now()
	vars := p.Variables()
	doc := h.assembler.Assemble(c.Request.Context(), query.Spec{
		ContentType: contentType,
		Variables:   vars,
		Fields:      p.Fields,
		Fragments:   p.Fragments,
		Expand:      p.Expand,
		Depth:       p.Depth,
	})
	contentLog().Debug("Executing content query",
		zap.String("contentType", contentType),
		zap.String("query", doc),
		zap.Any("variables", vars),
	)

	res, err := h.exec.Execute(c.Request.Context(), doc, vars.Payload(), auth)
	if err != nil {
		return nil, err
	}
	return rest.Format(res, contentType, time.Since(start))
}
