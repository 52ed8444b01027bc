package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/access"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/metrics"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// CreateSessionRequest represents the session creation request.
type CreateSessionRequest struct {
	Topic       string `json:"topic"`
	CompanionID string `json:"companionId,omitempty"`
}

// SessionView represents a chat session in API responses. Status is
// reported as "active" for every session: a closed state is referenced by
// the product but has no column yet, so all sessions stay open.
type SessionView struct {
	SessionID          string  `json:"sessionId"`
	Topic              string  `json:"topic"`
	CreatedBy          string  `json:"createdBy"`
	CompanionID        *string `json:"companionId"`
	CompanionName      *string `json:"companionName"`
	CompanionSpecialty *string `json:"companionSpecialty"`
	Status             string  `json:"status"`
	CreatedAt          string  `json:"createdAt"`
}

// SessionListResponse represents the sessions list response.
type SessionListResponse struct {
	Sessions []SessionView `json:"sessions"`
}

// CreateSessionResponse represents the session creation response.
type CreateSessionResponse struct {
	Success bool        `json:"success"`
	Session SessionView `json:"session"`
}

// ListSessions handles listing the caller's sessions: their own plus
// every group session, newest first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	sessions, err := h.db.ListSessionsForUser(r.Context(), id.UserID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	views := make([]SessionView, len(sessions))
	for i := range sessions {
		views[i] = sessionView(&sessions[i])
	}

	h.JSON(w, http.StatusOK, SessionListResponse{Sessions: views})
}

// CreateSession handles creating a new chat session, optionally bound to
// an active companion.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	topic := sanitizeInput(req.Topic, 200)
	if utf8.RuneCountInString(topic) < 3 {
		h.Error(w, http.StatusBadRequest, "Topic is required (minimum 3 characters)")
		return
	}

	var companionID *uuid.UUID
	if req.CompanionID != "" {
		cid, err := uuid.Parse(req.CompanionID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "Invalid companion selected")
			return
		}
		companion, err := h.db.GetActiveCompanion(r.Context(), cid)
		if err != nil {
			h.Dependency(w, r, err)
			return
		}
		if companion == nil {
			h.Error(w, http.StatusBadRequest, "Invalid companion selected")
			return
		}
		companionID = &cid
	}

	session, err := h.db.CreateSession(r.Context(), topic, id.UserID, companionID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	metrics.SessionsCreated.WithLabelValues(sessionType(session)).Inc()
	h.JSON(w, http.StatusCreated, CreateSessionResponse{
		Success: true,
		Session: sessionView(session),
	})
}

// DeleteSession handles session deletion. Deliberately stricter than
// read/write access: only the creator or an admin may delete, and the
// session's messages are removed first to satisfy referential integrity.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	sessionIDStr := r.URL.Query().Get("sessionId")
	if sessionIDStr == "" {
		h.Error(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid session ID format")
		return
	}

	session, err := h.db.GetSession(r.Context(), sessionID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}
	if session == nil {
		h.Error(w, http.StatusNotFound, "Session not found")
		return
	}

	if !access.CanDelete(session, id.UserID, id.IsAdmin) {
		h.Error(w, http.StatusForbidden, "Not authorized to delete this session")
		return
	}

	if err := h.db.DeleteSessionMessages(r.Context(), sessionID); err != nil {
		h.Dependency(w, r, err)
		return
	}
	if err := h.db.DeleteSession(r.Context(), sessionID); err != nil {
		h.Dependency(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Session deleted successfully",
	})
}

// UpdateSessionRequest represents the session status update request.
type UpdateSessionRequest struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

// UpdateSessionStatus is a placeholder: closing a session is referenced
// by the product but closure semantics are not defined yet, so the call
// succeeds without changing anything.
func (h *Handler) UpdateSessionStatus(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		h.Error(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Session status update not yet implemented",
		"sessionId": req.SessionID,
	})
}

func sessionView(s *models.ChatSession) SessionView {
	view := SessionView{
		SessionID: s.ID.String(),
		Topic:     s.Topic,
		CreatedBy: s.CreatedBy.String(),
		Status:    "active",
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if s.CompanionID != nil {
		cid := s.CompanionID.String()
		view.CompanionID = &cid
		if s.CompanionName != "" {
			name := s.CompanionName
			view.CompanionName = &name
		}
		if s.CompanionSpecialty != "" {
			specialty := s.CompanionSpecialty
			view.CompanionSpecialty = &specialty
		}
	}
	return view
}

func sessionType(s *models.ChatSession) string {
	if s.IsGroup() {
		return "group"
	}
	return "companion"
}
