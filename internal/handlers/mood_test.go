package handlers_test

import (
	"net/http"
	"testing"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/handlers"
)

func TestRecordMoodOncePerDay(t *testing.T) {
	h, db := newTestEnv(t)
	_, alice := signIn(t, db, "Alice", true)

	rec := doJSON(t, h, http.MethodPost, "/api/mood", alice, map[string]interface{}{
		"score": 3,
		"note":  "hari yang cukup berat",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record mood: status %d, body %s", rec.Code, rec.Body)
	}

	// Second log on the same day is rejected
	rec = doJSON(t, h, http.MethodPost, "/api/mood", alice, map[string]interface{}{"score": 4})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for second mood today, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/mood", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list moods: status %d", rec.Code)
	}
	var resp handlers.MoodListResponse
	decodeBody(t, rec, &resp)
	if len(resp.Moods) != 1 || resp.Moods[0].Score != 3 {
		t.Fatalf("unexpected mood history: %+v", resp.Moods)
	}
}

func TestRecordMoodScoreBounds(t *testing.T) {
	h, db := newTestEnv(t)
	_, alice := signIn(t, db, "Alice", true)

	for _, score := range []int{0, 6, -1} {
		rec := doJSON(t, h, http.MethodPost, "/api/mood", alice, map[string]interface{}{"score": score})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for score %d, got %d", score, rec.Code)
		}
	}
}

func TestMoodRequiresConsent(t *testing.T) {
	h, db := newTestEnv(t)
	_, citra := signIn(t, db, "Citra", false)

	rec := doJSON(t, h, http.MethodPost, "/api/mood", citra, map[string]interface{}{"score": 3})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without consent, got %d", rec.Code)
	}
}
