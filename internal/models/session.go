package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession represents a conversation container. A session with no
// companion assigned is a group chat open to every consented user; a
// session with a companion is private to its creator.
type ChatSession struct {
	ID          uuid.UUID  `json:"sessionId"`
	Topic       string     `json:"topic"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	CompanionID *uuid.UUID `json:"companionId"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Companion display metadata, populated by session queries.
	CompanionName      string `json:"companionName,omitempty"`
	CompanionSpecialty string `json:"companionSpecialty,omitempty"`
}

// IsGroup reports whether the session is an open group chat.
func (s *ChatSession) IsGroup() bool {
	return s.CompanionID == nil
}
