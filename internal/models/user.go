package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered peer-support user.
type User struct {
	ID          uuid.UUID  `json:"userId"`
	DisplayName string     `json:"displayName"`
	InviteCode  string     `json:"-"`
	ConsentAt   *time.Time `json:"consentAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// HasConsented reports whether the user has recorded consent.
func (u *User) HasConsented() bool {
	return u.ConsentAt != nil
}
