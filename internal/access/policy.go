// Package access enforces the privacy boundary between open group chats
// and 1:1 companion sessions. Every message read and write path must pass
// through CanAccess before touching message data.
package access

import (
	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// CanAccess decides whether a user may read or write messages in a session.
// Group sessions (no companion assigned) are open to every consented user;
// companion sessions belong to their creator alone. The companion-side
// actor is authorized through the companion portal's own identity check,
// never through this policy.
func CanAccess(session *models.ChatSession, userID uuid.UUID) bool {
	if session.CompanionID == nil {
		return true
	}
	return session.CreatedBy == userID
}

// CanDelete decides whether a user may delete a session. Deliberately
// stricter than CanAccess: only the creator or an admin qualifies, so a
// companion actor can never delete a user's session through this policy.
func CanDelete(session *models.ChatSession, userID uuid.UUID, isAdmin bool) bool {
	return session.CreatedBy == userID || isAdmin
}
