package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// MoodView represents a mood log in API responses.
type MoodView struct {
	MoodID    string `json:"moodId"`
	Date      string `json:"date"`
	Score     int    `json:"score"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// MoodListResponse represents the mood history response.
type MoodListResponse struct {
	Moods []MoodView `json:"moods"`
}

// RecordMoodRequest represents the record mood request.
type RecordMoodRequest struct {
	Score int    `json:"score"`
	Note  string `json:"note,omitempty"`
}

// ListMoods handles fetching the caller's mood history.
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	var start, end *time.Time
	if startStr := query.Get("startDate"); startStr != "" {
		t, err := parseDateOrTime(startStr)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		start = &t
	}
	if endStr := query.Get("endDate"); endStr != "" {
		t, err := parseDateOrTime(endStr)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		end = &t
	}

	moods, err := h.db.ListMoods(r.Context(), id.UserID, limit, start, end)
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	views := make([]MoodView, len(moods))
	for i, m := range moods {
		views[i] = MoodView{
			MoodID:    m.ID.String(),
			Date:      m.CreatedAt.UTC().Format("2006-01-02"),
			Score:     m.Score,
			Note:      escapeHTML(m.Note),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	h.JSON(w, http.StatusOK, MoodListResponse{Moods: views})
}

// RecordMood handles logging today's mood, at most once per day.
func (h *Handler) RecordMood(w http.ResponseWriter, r *http.Request) {
	id := h.consentedIdentity(w, r)
	if id == nil {
		return
	}

	var req RecordMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Score < 1 || req.Score > 5 {
		h.Error(w, http.StatusBadRequest, "Score must be between 1 and 5")
		return
	}

	exists, err := h.db.HasMoodForDay(r.Context(), id.UserID, time.Now().UTC())
	if err != nil {
		h.Dependency(w, r, err)
		return
	}
	if exists {
		h.Error(w, http.StatusBadRequest, "Mood already recorded today")
		return
	}

	mood := &models.MoodLog{
		UserID: id.UserID,
		Score:  req.Score,
		Note:   sanitizeInput(req.Note, 500),
	}
	if err := h.db.InsertMood(r.Context(), mood); err != nil {
		h.Dependency(w, r, err)
		return
	}

	h.JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"mood": MoodView{
			MoodID:    mood.ID.String(),
			Date:      mood.CreatedAt.UTC().Format("2006-01-02"),
			Score:     mood.Score,
			Note:      escapeHTML(mood.Note),
			CreatedAt: mood.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// parseDateOrTime accepts either a bare date or a full RFC3339 timestamp.
func parseDateOrTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
