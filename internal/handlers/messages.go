package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/access"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/metrics"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/risk"
)

// maxMessageChars caps message text length after sanitization.
const maxMessageChars = 2000

// MessageView represents a message in API responses. IsOwn is a view
// concern computed per request from the caller's identity, never stored.
type MessageView struct {
	MessageID   string `json:"messageId"`
	SessionID   string `json:"sessionId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
	RiskFlag    bool   `json:"riskFlag"`
	CreatedAt   string `json:"createdAt"`
	IsOwn       bool   `json:"isOwn"`
}

// MessageListResponse represents the fetch messages response. ServerTime
// lets a client establish an initial cursor even when the session is empty.
type MessageListResponse struct {
	Messages   []MessageView `json:"messages"`
	ServerTime string        `json:"serverTime"`
}

// PostMessageRequest represents the post message request.
type PostMessageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// PostMessageResponse represents the post message response.
type PostMessageResponse struct {
	Success bool           `json:"success"`
	Message MessageView    `json:"message"`
	Warning *risk.Advisory `json:"warning,omitempty"`
}

// FetchMessages handles incremental message fetches. The "after" query
// parameter is an exclusive lower bound on creation time; without it all
// messages are returned. Two fetches with the same cursor against
// unchanged storage return identical sets.
func (h *Handler) FetchMessages(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	session, ok := h.requireSessionAccess(w, r, id, r.URL.Query().Get("sessionId"))
	if !ok {
		return
	}

	var after *time.Time
	if afterStr := r.URL.Query().Get("after"); afterStr != "" {
		t, err := parseCursor(afterStr)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid after timestamp")
			return
		}
		after = &t
	}

	messages, err := h.db.ListMessages(r.Context(), session.ID, after)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	views := make([]MessageView, len(messages))
	for i := range messages {
		views[i] = messageView(&messages[i], id)
	}

	h.JSON(w, http.StatusOK, MessageListResponse{
		Messages:   views,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// PostMessage handles sending a message. Sender identity always comes
// from the verified session, never from request fields, and risk
// detection runs on the stored text so the advisory rides the same
// response as the message.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		h.Error(w, http.StatusBadRequest, "Message text is required")
		return
	}
	if utf8.RuneCountInString(text) > maxMessageChars {
		h.Error(w, http.StatusBadRequest, "Message text too long (max 2000 characters)")
		return
	}

	session, ok := h.requireSessionAccess(w, r, id, req.SessionID)
	if !ok {
		return
	}

	msg := &models.Message{
		SessionID:   session.ID,
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
		Text:        text,
	}
	if err := h.db.InsertMessage(r.Context(), msg); err != nil {
		h.Dependency(w, r, err)
		return
	}

	hasRisk := risk.Scan(text)
	metrics.MessagesPosted.WithLabelValues(sessionType(session)).Inc()

	view := messageView(msg, id)
	view.RiskFlag = hasRisk

	resp := PostMessageResponse{Success: true, Message: view}
	if hasRisk {
		metrics.RiskAdvisoriesIssued.Inc()
		resp.Warning = risk.NewAdvisory()
	}

	h.JSON(w, http.StatusCreated, resp)
}

// requireSessionAccess validates the session ID, resolves the session and
// enforces the access policy. On failure the response has already been
// written and ok is false.
func (h *Handler) requireSessionAccess(w http.ResponseWriter, r *http.Request, id *auth.Identity, sessionIDStr string) (*models.ChatSession, bool) {
	if sessionIDStr == "" {
		h.Error(w, http.StatusBadRequest, "Session ID is required")
		return nil, false
	}
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid session ID format")
		return nil, false
	}

	session, err := h.db.GetSession(r.Context(), sessionID)
	if err != nil {
		h.Dependency(w, r, err)
		return nil, false
	}
	if session == nil {
		h.Error(w, http.StatusNotFound, "Session not found")
		return nil, false
	}

	if !access.CanAccess(session, id.UserID) {
		h.Error(w, http.StatusForbidden, "Access denied to this session")
		return nil, false
	}

	return session, true
}

// parseCursor parses an incremental fetch cursor. Cursors are timestamps
// previously issued by this server (message createdAt or serverTime).
func parseCursor(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Parse(time.RFC3339, s)
	}
	return t, nil
}

func messageView(m *models.Message, id *auth.Identity) MessageView {
	return MessageView{
		MessageID:   m.ID,
		SessionID:   m.SessionID.String(),
		UserID:      m.UserID.String(),
		DisplayName: m.DisplayName,
		Text:        escapeHTML(m.Text),
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339Nano),
		IsOwn:       m.UserID == id.UserID,
	}
}
