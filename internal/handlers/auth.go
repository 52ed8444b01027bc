package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/metrics"
)

// LoginRequest represents the login request body.
type LoginRequest struct {
	InviteCode  string `json:"inviteCode"`
	DisplayName string `json:"displayName"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	HasConsented bool   `json:"hasConsented"`
	ConsentAt    string `json:"consentAt,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// Login handles invite-code login, creating the user on first visit.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	inviteCode := sanitizeInput(req.InviteCode, 50)
	displayName := sanitizeInput(req.DisplayName, 50)

	if inviteCode == "" {
		h.Error(w, http.StatusBadRequest, "Invite code is required")
		return
	}
	if len(displayName) < 2 {
		h.Error(w, http.StatusBadRequest, "Display name is required (minimum 2 characters)")
		return
	}

	if !h.validInviteCode(inviteCode) {
		metrics.Logins.WithLabelValues("failure").Inc()
		h.Error(w, http.StatusUnauthorized, "Invalid invite code")
		return
	}

	user, err := h.db.FindUserByLogin(r.Context(), displayName, inviteCode)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}
	if user == nil {
		user, err = h.db.CreateUser(r.Context(), displayName, inviteCode)
		if err != nil {
			h.Dependency(w, r, err)
			return
		}
	}

	token, err := auth.CreateToken(h.secret, auth.Identity{
		UserID:       user.ID,
		DisplayName:  user.DisplayName,
		HasConsented: user.HasConsented(),
	})
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	http.SetCookie(w, auth.SessionCookie(token, h.secureCookies))
	h.JSON(w, http.StatusOK, LoginResponse{
		Success: true,
		User: UserResponse{
			UserID:       user.ID.String(),
			DisplayName:  user.DisplayName,
			HasConsented: user.HasConsented(),
		},
	})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookies))
	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) validInviteCode(code string) bool {
	for _, c := range h.inviteCodes {
		if c == code {
			return true
		}
	}
	return false
}
