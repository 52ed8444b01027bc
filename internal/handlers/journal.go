package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// JournalEntryView represents a journal entry in API responses.
type JournalEntryView struct {
	EntryID   string   `json:"entryId"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

// CreateJournalRequest represents the create entry request.
type CreateJournalRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// ListJournal handles fetching journal entries. With an entryId query
// parameter it returns that single entry; otherwise it lists all entries
// with bodies truncated for the overview.
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	if entryIDStr := r.URL.Query().Get("entryId"); entryIDStr != "" {
		entryID, err := uuid.Parse(entryIDStr)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid entry ID format")
			return
		}
		entry, err := h.db.GetJournalEntry(r.Context(), id.UserID, entryID)
		if err != nil {
			h.Dependency(w, r, err)
			return
		}
		if entry == nil {
			h.Error(w, http.StatusNotFound, "Entry not found")
			return
		}
		h.JSON(w, http.StatusOK, map[string]JournalEntryView{"entry": journalView(entry, false)})
		return
	}

	entries, err := h.db.ListJournalEntries(r.Context(), id.UserID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	views := make([]JournalEntryView, len(entries))
	for i := range entries {
		views[i] = journalView(&entries[i], true)
	}

	h.JSON(w, http.StatusOK, map[string][]JournalEntryView{"entries": views})
}

// CreateJournal handles creating a journal entry.
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	var req CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	title := sanitizeInput(req.Title, 200)
	body := sanitizeInput(req.Body, 10000)
	if title == "" {
		h.Error(w, http.StatusBadRequest, "Title is required")
		return
	}
	if body == "" {
		h.Error(w, http.StatusBadRequest, "Body is required")
		return
	}

	var tags []string
	for _, tag := range req.Tags {
		if tag = sanitizeInput(tag, 50); tag != "" {
			tags = append(tags, tag)
		}
	}

	entry := &models.JournalEntry{
		UserID: id.UserID,
		Title:  title,
		Body:   body,
		Tags:   tags,
	}
	if err := h.db.InsertJournalEntry(r.Context(), entry); err != nil {
		h.Dependency(w, r, err)
		return
	}

	h.JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"entry":   journalView(entry, false),
	})
}

// DeleteJournal handles deleting a journal entry owned by the caller.
func (h *Handler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	entryIDStr := r.URL.Query().Get("entryId")
	if entryIDStr == "" {
		h.Error(w, http.StatusBadRequest, "Entry ID is required")
		return
	}
	entryID, err := uuid.Parse(entryIDStr)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid entry ID format")
		return
	}

	entry, err := h.db.GetJournalEntry(r.Context(), id.UserID, entryID)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}
	if entry == nil {
		h.Error(w, http.StatusNotFound, "Entry not found")
		return
	}

	if err := h.db.DeleteJournalEntry(r.Context(), id.UserID, entryID); err != nil {
		h.Dependency(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func journalView(entry *models.JournalEntry, truncate bool) JournalEntryView {
	body := escapeHTML(entry.Body)
	if truncate && len(body) > 200 {
		body = body[:200] + "..."
	}
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	return JournalEntryView{
		EntryID:   entry.ID.String(),
		Title:     escapeHTML(entry.Title),
		Body:      body,
		Tags:      tags,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}
