package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = fmt.Sprint(value)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"data":{"order":{"id":"order-%d"}}}`, *calls)
	})
}

func placementRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyRequiresKeyOnGuardedRoute(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := Idempotency(newMemoryStore(), nil)(countingHandler(&calls))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, placementRequest(`{}`, ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("handler must not run without a key, calls = %d", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := Idempotency(newMemoryStore(), nil)(countingHandler(&calls))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, placementRequest(`{"total":10}`, "key-1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, placementRequest(`{"total":10}`, "key-1"))
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201", second.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := Idempotency(newMemoryStore(), nil)(countingHandler(&calls))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, placementRequest(`{"total":10}`, "key-1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, placementRequest(`{"total":999}`, "key-1"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("reuse status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := Idempotency(newMemoryStore(), nil)(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/calculate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if calls != 1 {
		t.Fatalf("unguarded route must pass through, calls = %d", calls)
	}
}

func TestIdempotencyScopesKeysBySession(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := Session(nil)(Idempotency(newMemoryStore(), nil)(countingHandler(&calls)))

	first := placementRequest(`{"total":10}`, "shared-key")
	first.Header.Set("X-Session-Id", "sess-a")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := placementRequest(`{"total":10}`, "shared-key")
	second.Header.Set("X-Session-Id", "sess-b")
	handler.ServeHTTP(httptest.NewRecorder(), second)

	if calls != 2 {
		t.Fatalf("distinct sessions must not share replay records, calls = %d", calls)
	}
}
