package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

type fakeStore struct {
	n       int
	cleared bool
}

func (s *fakeStore) Clear()   { s.n = 0; s.cleared = true }
func (s *fakeStore) Len() int { return s.n }

func TestAdminHandler(t *testing.T) {
	responses := &fakeStore{n: 3}
	schemas := &fakeStore{n: 2}
	h := NewAdminHandler(responses, schemas)

	r := gin.New()
	r.GET("/admin/cache", h.CacheStats)
	r.DELETE("/admin/cache", h.ClearCache)

	w := serve(r, http.MethodGet, "/admin/cache", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), gjson.Get(w.Body.String(), "responses").Int())
	assert.Equal(t, int64(2), gjson.Get(w.Body.String(), "schemas").Int())

	w = serve(r, http.MethodDelete, "/admin/cache", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, responses.cleared)
	assert.True(t, schemas.cleared)
}

func TestAdminHandler_ResponseCacheDisabled(t *testing.T) {
	schemas := &fakeStore{n: 1}
	h := NewAdminHandler(nil, schemas)

	r := gin.New()
	r.GET("/admin/cache", h.CacheStats)
	r.DELETE("/admin/cache", h.ClearCache)

	w := serve(r, http.MethodGet, "/admin/cache", "")
	assert.False(t, gjson.Get(w.Body.String(), "responses").Exists())

	w = serve(r, http.MethodDelete, "/admin/cache", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, schemas.cleared)
}
