package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionMintsIDWhenHeaderMissing(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("expected a minted session id in context")
	}
	if got := rec.Header().Get("X-Session-Id"); got != seen {
		t.Fatalf("echoed session id = %q, want %q", got, seen)
	}
}

func TestSessionReusesProvidedID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", "sess-keep")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "sess-keep" {
		t.Fatalf("session id = %q, want sess-keep", seen)
	}
	if got := rec.Header().Get("X-Session-Id"); got != "sess-keep" {
		t.Fatalf("echoed session id = %q, want sess-keep", got)
	}
}

func TestSessionIDFromContextWithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionIDFromContext(req.Context()); got != "" {
		t.Fatalf("expected empty session id, got %q", got)
	}
}
