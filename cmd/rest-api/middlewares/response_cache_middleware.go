package middlewares

import (
	"bytes"
	"net/http"

	"github.com/nexuspay/nexuspay/pkg/infra/cache"
)

// ResponseCacheMiddleware wraps idempotent GET hot paths in a per-(route,
// userId) TTL cache (§4.1). userID is whatever the caller's auth method
// resolved to a stable string: the session user id, or the api-key's
// project id for project-scoped API-key routes, so two different callers
// never share a cached response.
type ResponseCacheMiddleware struct {
	cache    *cache.ResponseCache
	userIDOf func(*http.Request) (string, bool)
}

func NewResponseCacheMiddleware(c *cache.ResponseCache, userIDOf func(*http.Request) (string, bool)) *ResponseCacheMiddleware {
	return &ResponseCacheMiddleware{cache: c, userIDOf: userIDOf}
}

// Handler caches a 200 JSON response under routeName for the resolved
// caller, and serves cached bytes on a hit instead of invoking next. Non-200
// responses bypass the cache entirely (§4.1: "non-200 responses bypass").
func (m *ResponseCacheMiddleware) Handler(routeName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := m.userIDOf(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if body, contentType, hit := m.cache.Get(routeName, userID); hit {
				w.Header().Set("Content-Type", contentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}

			rec := &cachingRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode == http.StatusOK && rec.buf.Len() > 0 {
				contentType := rec.Header().Get("Content-Type")
				if contentType == "" {
					contentType = "application/json; charset=utf-8"
				}
				m.cache.Set(routeName, userID, rec.buf.Bytes(), contentType)
			}
		})
	}
}

// InvalidateHandler wraps a mutation handler so its caller's cached entries
// are dropped the moment the handler completes, regardless of outcome —
// §4.1 invalidates "by the same user", not only on success, since a failed
// write can still have partially landed state a stale cache would hide.
func (m *ResponseCacheMiddleware) InvalidateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if userID, ok := m.userIDOf(r); ok {
			m.cache.InvalidateUser(userID)
		}
	})
}

type cachingRecorder struct {
	http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func (rec *cachingRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.statusCode = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *cachingRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.statusCode = http.StatusOK
		rec.wroteHeader = true
	}
	rec.buf.Write(b)
	return rec.ResponseWriter.Write(b)
}
