package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/api"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/config"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/handlers"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/ratelimit"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/store"
)

const (
	testSecret     = "test-secret-test-secret-test-secret!"
	testInviteCode = "IMADIKSI-2025"
)

// newTestEnv builds the full router over an in-memory store so handler
// tests exercise the same middleware chain as production.
func newTestEnv(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	logger := zerolog.Nop()
	db := store.NewMemoryStore()
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), logger)
	cfg := &config.Config{
		Port:        "0",
		Env:         "test",
		AppSecret:   testSecret,
		InviteCodes: []string{testInviteCode},
	}
	return api.NewRouter(logger, db, limiter, cfg), db
}

// signIn provisions a user directly in the store and mints their session
// cookie, bypassing the login endpoint.
func signIn(t *testing.T, db *store.MemoryStore, name string, consented bool) (*models.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()

	user, err := db.CreateUser(ctx, name, testInviteCode)
	if err != nil {
		t.Fatal(err)
	}
	if consented {
		user, err = db.RecordConsent(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
	}
	return user, sessionCookie(t, auth.Identity{
		UserID:       user.ID,
		DisplayName:  user.DisplayName,
		HasConsented: consented,
	})
}

func sessionCookie(t *testing.T, id auth.Identity) *http.Cookie {
	t.Helper()
	token, err := auth.CreateToken([]byte(testSecret), id)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func doJSON(t *testing.T, h http.Handler, method, target string, cookie *http.Cookie, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body)
	}
}

func createGroupSession(t *testing.T, h http.Handler, cookie *http.Cookie, topic string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/sessions", cookie, map[string]string{"topic": topic})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", rec.Code, rec.Body)
	}
	var resp handlers.CreateSessionResponse
	decodeBody(t, rec, &resp)
	return resp.Session.SessionID
}

func postMessage(t *testing.T, h http.Handler, cookie *http.Cookie, sessionID, text string) handlers.PostMessageResponse {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/messages", cookie, map[string]string{
		"sessionId": sessionID,
		"text":      text,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post message: status %d, body %s", rec.Code, rec.Body)
	}
	var resp handlers.PostMessageResponse
	decodeBody(t, rec, &resp)
	return resp
}

func fetchMessages(t *testing.T, h http.Handler, cookie *http.Cookie, sessionID, after string) handlers.MessageListResponse {
	t.Helper()
	target := "/api/messages?sessionId=" + sessionID
	if after != "" {
		target += "&after=" + url.QueryEscape(after)
	}
	rec := doJSON(t, h, http.MethodGet, target, cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch messages: status %d, body %s", rec.Code, rec.Body)
	}
	var resp handlers.MessageListResponse
	decodeBody(t, rec, &resp)
	return resp
}
