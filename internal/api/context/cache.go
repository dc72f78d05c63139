package context

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/rescache"
)

func cacheLog() *zap.Logger {
	return logger.Named("api.cache")
}

// bufferedWriter holds the body back until the cache middleware has decided
// which cache headers to add.
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// CacheMiddleware serves GET requests from cache and stores successful JSON
// responses. Hits carry X-Cache: HIT, X-Cache-Age and the remaining max-age;
// newly stored responses carry X-Cache: MISS and the full max-age.
func CacheMiddleware(cache *rescache.Cache) gin.HandlerFunc {
	ttl := int(cache.TTL() / time.Second)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		url := requestURL(c.Request)

		if entry, age, ok := cache.Lookup(http.MethodGet, url); ok {
			h := c.Writer.Header()
			for k, vs := range entry.Header {
				h[k] = append([]string(nil), vs...)
			}
			ageSecs := int(age / time.Second)
			h.Set(HeaderCache, "HIT")
			h.Set(HeaderCacheAge, strconv.Itoa(ageSecs))
			h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", ttl-ageSecs))
			c.Data(entry.Status, entry.Header.Get("Content-Type"), entry.Body)
			c.Abort()
			return
		}

		w := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter

		if status := w.Status(); status >= 200 && status < 300 && w.body.Len() > 0 {
			err := cache.Store(http.MethodGet, url, status, w.body.Bytes(), replayable(w.Header()))
			if err == nil {
				w.Header().Set(HeaderCache, "MISS")
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", ttl))
			} else {
				cacheLog().Warn("Could not cache response", zap.String("url", url), zap.Error(err))
			}
		}

		if w.body.Len() > 0 {
			if _, err := w.ResponseWriter.Write(w.body.Bytes()); err != nil {
				cacheLog().Debug("Client went away", zap.String("url", url), zap.Error(err))
			}
		}
	}
}

// requestURL is the absolute URL of r, the cache key together with the method.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// replayable drops headers that describe one exchange rather than the content.
func replayable(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		switch ck := http.CanonicalHeaderKey(k); {
		case ck == http.CanonicalHeaderKey(HeaderRequestID), ck == "Content-Length", ck == "Date", ck == "Vary",
			ck == "Cache-Control", strings.HasPrefix(ck, "X-Cache"), strings.HasPrefix(ck, "Access-Control-"):
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}
