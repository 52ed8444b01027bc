package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// Me returns the fresh user record behind the current session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := h.identity(w, r)
	if id == nil {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}
	if user == nil {
		h.Error(w, http.StatusNotFound, "User not found")
		return
	}

	h.JSON(w, http.StatusOK, map[string]UserResponse{"user": userView(user)})
}

// ConsentRequest represents the consent action request body.
type ConsentRequest struct {
	Action string `json:"action"`
}

// Consent records user consent and reissues the session cookie so the
// identity carries the new consent state.
func (h *Handler) Consent(w http.ResponseWriter, r *http.Request) {
	id := h.identity(w, r)
	if id == nil {
		return
	}

	var req ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Action != "consent" {
		h.Error(w, http.StatusBadRequest, "Unknown action")
		return
	}

	user, err := h.db.RecordConsent(r.Context(), id.UserID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}
	if user == nil {
		h.Error(w, http.StatusNotFound, "User not found")
		return
	}

	token, err := auth.CreateToken(h.secret, auth.Identity{
		UserID:       user.ID,
		DisplayName:  user.DisplayName,
		HasConsented: true,
		IsAdmin:      id.IsAdmin,
	})
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, h.secureCookies))
	h.JSON(w, http.StatusOK, map[string]UserResponse{"user": userView(user)})
}

func userView(user *models.User) UserResponse {
	view := UserResponse{
		UserID:       user.ID.String(),
		DisplayName:  user.DisplayName,
		HasConsented: user.HasConsented(),
		CreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339),
	}
	if user.ConsentAt != nil {
		view.ConsentAt = user.ConsentAt.UTC().Format(time.RFC3339)
	}
	return view
}
