package models

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a chat message. Messages are append-only; the store
// assigns ID and CreatedAt on insert and never mutates them afterwards.
type Message struct {
	ID          string    `json:"messageId"` // ULID
	SessionID   uuid.UUID `json:"sessionId"`
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}
