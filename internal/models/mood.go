package models

import (
	"time"

	"github.com/google/uuid"
)

// MoodLog represents a single daily mood entry.
type MoodLog struct {
	ID        uuid.UUID `json:"moodId"`
	UserID    uuid.UUID `json:"-"`
	Score     int       `json:"score"` // 1 (worst) to 5 (best)
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
