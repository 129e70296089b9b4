package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexuspay/nexuspay/pkg/infra/cache"
)

func sessionUserIDFromHeader(r *http.Request) (string, bool) {
	userID := r.Header.Get("X-Test-User-Id")
	if userID == "" {
		return "", false
	}
	return userID, true
}

func TestResponseCacheMiddleware_CachesSecondCall(t *testing.T) {
	m := NewResponseCacheMiddleware(cache.NewResponseCache(time.Minute), sessionUserIDFromHeader)

	calls := 0
	handler := m.Handler("/v1/profile")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"n":1}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("X-Test-User-Id", "user-1")

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req)
	if rec1.Code != http.StatusOK || rec1.Body.String() != `{"n":1}` {
		t.Fatalf("unexpected first response: %d %s", rec1.Code, rec1.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to the wrapped handler, got %d", calls)
	}

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Body.String() != `{"n":1}` {
		t.Fatalf("unexpected cached body: %s", rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected the handler to be cached, not called again; got %d calls", calls)
	}
	if rec2.Header().Get("X-Cache") != "HIT" {
		t.Errorf("expected X-Cache: HIT on the cached response")
	}
}

func TestResponseCacheMiddleware_BypassesWithoutUserID(t *testing.T) {
	m := NewResponseCacheMiddleware(cache.NewResponseCache(time.Minute), sessionUserIDFromHeader)

	calls := 0
	handler := m.Handler("/v1/profile")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if calls != 2 {
		t.Fatalf("expected the handler to be invoked on every request when no user id resolves, got %d calls", calls)
	}
}

func TestResponseCacheMiddleware_DoesNotCacheNon200(t *testing.T) {
	m := NewResponseCacheMiddleware(cache.NewResponseCache(time.Minute), sessionUserIDFromHeader)

	calls := 0
	handler := m.Handler("/v1/profile")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("X-Test-User-Id", "user-1")

	handler.ServeHTTP(httptest.NewRecorder(), req)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if calls != 2 {
		t.Fatalf("expected non-200 responses to bypass the cache, got %d calls", calls)
	}
}

func TestResponseCacheMiddleware_InvalidateHandlerClearsUserEntries(t *testing.T) {
	responseCache := cache.NewResponseCache(time.Minute)
	m := NewResponseCacheMiddleware(responseCache, sessionUserIDFromHeader)

	readCalls := 0
	readHandler := m.Handler("/v1/profile")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		readCalls++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("body"))
	}))
	writeHandler := m.InvalidateHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("X-Test-User-Id", "user-1")

	readHandler.ServeHTTP(httptest.NewRecorder(), req)
	readHandler.ServeHTTP(httptest.NewRecorder(), req)
	if readCalls != 1 {
		t.Fatalf("expected the second read to be served from cache, got %d calls", readCalls)
	}

	writeReq := httptest.NewRequest(http.MethodPut, "/v1/profile", nil)
	writeReq.Header.Set("X-Test-User-Id", "user-1")
	writeHandler.ServeHTTP(httptest.NewRecorder(), writeReq)

	readHandler.ServeHTTP(httptest.NewRecorder(), req)
	if readCalls != 2 {
		t.Fatalf("expected invalidation to force a fresh read, got %d calls", readCalls)
	}
}
