package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/config"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/ratelimit"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.Nop()
	db := store.NewMemoryStore()
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), logger)
	cfg := &config.Config{
		Port:        "0",
		Env:         "test",
		AppSecret:   "test-secret-test-secret-test-secret!",
		InviteCodes: []string{"IMADIKSI-2025"},
	}
	return NewRouter(logger, db, limiter, cfg)
}

func get(h http.Handler, path, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStandardLimitExhaustion(t *testing.T) {
	h := newTestRouter(t)
	const ip = "198.51.100.20"

	for i := 1; i <= 60; i++ {
		rec := get(h, "/api/companions", ip)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if want := strconv.Itoa(60 - i); rec.Header().Get("X-RateLimit-Remaining") != want {
			t.Fatalf("request %d: expected remaining %s, got %s", i, want, rec.Header().Get("X-RateLimit-Remaining"))
		}
	}

	rec := get(h, "/api/companions", ip)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("61st request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatal("rate-limit headers must be set on rejection")
	}
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retryAfter <= 0 {
		t.Fatalf("expected positive Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error == "" || body.RetryAfter <= 0 {
		t.Fatalf("unexpected rejection body: %+v", body)
	}

	// A different client identity is unaffected
	if rec := get(h, "/api/companions", "198.51.100.21"); rec.Code != http.StatusOK {
		t.Fatalf("other identity: expected 200, got %d", rec.Code)
	}
}

func TestStrictLimitOnAuthEndpoints(t *testing.T) {
	h := newTestRouter(t)
	const ip = "198.51.100.30"

	for i := 1; i <= 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "10" {
			t.Fatalf("expected strict limit header 10, got %s", rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("11th auth request: expected 429, got %d", rec.Code)
	}
}

func TestRateLimitHeadersAlwaysSet(t *testing.T) {
	h := newTestRouter(t)

	rec := get(h, "/api/companions", "198.51.100.40")
	for _, header := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if rec.Header().Get(header) == "" {
			t.Fatalf("missing %s header on allowed request", header)
		}
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	h := newTestRouter(t)

	if rec := get(h, "/health", "198.51.100.50"); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := get(h, "/api/unknown", "198.51.100.50"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", rec.Code)
	}
}
