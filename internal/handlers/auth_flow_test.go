package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/handlers"
)

func extractSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLoginCreatesUserAndSession(t *testing.T) {
	h, _ := newTestEnv(t)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"inviteCode":  testInviteCode,
		"displayName": "Andi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body)
	}

	var resp handlers.LoginResponse
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.User.DisplayName != "Andi" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	if resp.User.HasConsented {
		t.Fatal("new user must not be pre-consented")
	}

	cookie := extractSessionCookie(t, rec)
	if cookie.Value == "" || !cookie.HttpOnly {
		t.Fatal("session cookie must be set and httpOnly")
	}

	// Logging in again with the same name and code resumes the same user
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"inviteCode":  testInviteCode,
		"displayName": "Andi",
	})
	var again handlers.LoginResponse
	decodeBody(t, rec, &again)
	if again.User.UserID != resp.User.UserID {
		t.Fatal("repeat login should resolve to the existing user")
	}
}

func TestLoginValidation(t *testing.T) {
	h, _ := newTestEnv(t)

	cases := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"missing invite code", map[string]string{"displayName": "Andi"}, http.StatusBadRequest},
		{"short display name", map[string]string{"inviteCode": testInviteCode, "displayName": "A"}, http.StatusBadRequest},
		{"wrong invite code", map[string]string{"inviteCode": "WRONG-CODE", "displayName": "Andi"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := doJSON(t, h, http.MethodPost, "/api/auth/login", nil, tc.body)
		if rec.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
	}
}

func TestConsentGate(t *testing.T) {
	h, _ := newTestEnv(t)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"inviteCode":  testInviteCode,
		"displayName": "Andi",
	})
	cookie := extractSessionCookie(t, rec)

	// Chat features are closed until consent is recorded
	rec = doJSON(t, h, http.MethodPost, "/api/sessions", cookie, map[string]string{"topic": "topik diskusi"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before consent, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/me", cookie, map[string]string{"action": "consent"})
	if rec.Code != http.StatusOK {
		t.Fatalf("consent: status %d, body %s", rec.Code, rec.Body)
	}
	// The reissued cookie carries the consent state
	cookie = extractSessionCookie(t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/sessions", cookie, map[string]string{"topic": "topik diskusi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after consent, got %d: %s", rec.Code, rec.Body)
	}
}

func TestConsentRejectsUnknownAction(t *testing.T) {
	h, db := newTestEnv(t)
	_, cookie := signIn(t, db, "Andi", false)

	rec := doJSON(t, h, http.MethodPost, "/api/me", cookie, map[string]string{"action": "shrug"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h, db := newTestEnv(t)
	user, cookie := signIn(t, db, "Andi", true)

	if rec := doJSON(t, h, http.MethodGet, "/api/me", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/me", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	var resp map[string]handlers.UserResponse
	decodeBody(t, rec, &resp)
	if resp["user"].UserID != user.ID.String() || !resp["user"].HasConsented {
		t.Fatalf("unexpected me response: %+v", resp["user"])
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h, db := newTestEnv(t)
	_, cookie := signIn(t, db, "Andi", true)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}
	cleared := extractSessionCookie(t, rec)
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatal("logout must clear the session cookie")
	}
}

func TestForgedCookieIgnored(t *testing.T) {
	h, _ := newTestEnv(t)

	rec := doJSON(t, h, http.MethodGet, "/api/me", &http.Cookie{Name: auth.CookieName, Value: "garbage.token.here"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged cookie, got %d", rec.Code)
	}
}
