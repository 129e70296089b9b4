package cache

import (
	"testing"
	"time"
)

func TestResponseCache_SetThenGet(t *testing.T) {
	c := NewResponseCache(time.Minute)

	c.Set("/v1/profile", "user-1", []byte(`{"ok":true}`), "application/json")

	body, contentType, hit := c.Get("/v1/profile", "user-1")
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", body)
	}
	if contentType != "application/json" {
		t.Errorf("unexpected content type: %s", contentType)
	}
}

func TestResponseCache_MissForDifferentUser(t *testing.T) {
	c := NewResponseCache(time.Minute)
	c.Set("/v1/profile", "user-1", []byte("a"), "text/plain")

	if _, _, hit := c.Get("/v1/profile", "user-2"); hit {
		t.Fatal("expected a miss for a different user")
	}
}

func TestResponseCache_MissForDifferentRoute(t *testing.T) {
	c := NewResponseCache(time.Minute)
	c.Set("/v1/profile", "user-1", []byte("a"), "text/plain")

	if _, _, hit := c.Get("/v1/projects", "user-1"); hit {
		t.Fatal("expected a miss for a different route")
	}
}

func TestResponseCache_ExpiresAfterTTL(t *testing.T) {
	c := NewResponseCache(time.Millisecond)
	c.Set("/v1/profile", "user-1", []byte("a"), "text/plain")

	time.Sleep(5 * time.Millisecond)

	if _, _, hit := c.Get("/v1/profile", "user-1"); hit {
		t.Fatal("expected the entry to have expired")
	}
}

func TestResponseCache_InvalidateUser(t *testing.T) {
	c := NewResponseCache(time.Minute)
	c.Set("/v1/profile", "user-1", []byte("a"), "text/plain")
	c.Set("/v1/projects", "user-1", []byte("b"), "text/plain")
	c.Set("/v1/profile", "user-2", []byte("c"), "text/plain")

	c.InvalidateUser("user-1")

	if _, _, hit := c.Get("/v1/profile", "user-1"); hit {
		t.Error("expected user-1's profile entry to be gone")
	}
	if _, _, hit := c.Get("/v1/projects", "user-1"); hit {
		t.Error("expected user-1's projects entry to be gone")
	}
	if _, _, hit := c.Get("/v1/profile", "user-2"); !hit {
		t.Error("expected user-2's entry to survive")
	}
}
