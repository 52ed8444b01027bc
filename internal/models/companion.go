package models

import (
	"time"

	"github.com/google/uuid"
)

// Companion represents a support-staff actor assignable to chat sessions.
type Companion struct {
	ID          uuid.UUID `json:"companionId"`
	Username    string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Specialty   string    `json:"specialty,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Active      bool      `json:"-"`
	CreatedAt   time.Time `json:"-"`
}
