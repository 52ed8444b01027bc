package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry represents a private journal entry owned by a single user.
type JournalEntry struct {
	ID        uuid.UUID `json:"entryId"`
	UserID    uuid.UUID `json:"-"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}
