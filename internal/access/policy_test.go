package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

func TestGroupSessionsOpenToEveryone(t *testing.T) {
	for i := 0; i < 100; i++ {
		session := &models.ChatSession{
			ID:        uuid.New(),
			CreatedBy: uuid.New(),
		}
		if !CanAccess(session, uuid.New()) {
			t.Fatal("group session should be accessible to any user")
		}
		if !CanAccess(session, session.CreatedBy) {
			t.Fatal("group session should be accessible to its creator")
		}
	}
}

func TestCompanionSessionsCreatorOnly(t *testing.T) {
	for i := 0; i < 100; i++ {
		companionID := uuid.New()
		session := &models.ChatSession{
			ID:          uuid.New(),
			CreatedBy:   uuid.New(),
			CompanionID: &companionID,
		}
		if !CanAccess(session, session.CreatedBy) {
			t.Fatal("creator should access their companion session")
		}
		if CanAccess(session, uuid.New()) {
			t.Fatal("other users should not access a companion session")
		}
		// The companion's own ID grants nothing through this policy
		if CanAccess(session, companionID) {
			t.Fatal("companion actor ID should not pass the user access policy")
		}
	}
}

func TestCanDeleteStricterThanCanAccess(t *testing.T) {
	creator := uuid.New()
	other := uuid.New()
	group := &models.ChatSession{ID: uuid.New(), CreatedBy: creator}

	// Anyone can access a group session, but only the creator may delete it
	if !CanAccess(group, other) {
		t.Fatal("expected group access for non-creator")
	}
	if CanDelete(group, other, false) {
		t.Fatal("non-creator must not delete a group session")
	}
	if !CanDelete(group, creator, false) {
		t.Fatal("creator should delete their session")
	}
	if !CanDelete(group, other, true) {
		t.Fatal("admin should delete any session")
	}
}
