package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

func TestMessageTimestampsStrictlyMonotonic(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	session, err := s.CreateSession(ctx, "topik", uuid.New(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var prev time.Time
	for i := 0; i < 50; i++ {
		msg := &models.Message{SessionID: session.ID, UserID: uuid.New(), Text: "x"}
		if err := s.InsertMessage(ctx, msg); err != nil {
			t.Fatal(err)
		}
		if msg.ID == "" {
			t.Fatal("insert must assign a message ID")
		}
		if !msg.CreatedAt.After(prev) {
			t.Fatalf("timestamp %d not strictly after predecessor", i)
		}
		prev = msg.CreatedAt
	}
}

func TestListMessagesCursorExclusive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	session, err := s.CreateSession(ctx, "topik", uuid.New(), nil)
	if err != nil {
		t.Fatal(err)
	}

	first := &models.Message{SessionID: session.ID, UserID: uuid.New(), Text: "satu"}
	second := &models.Message{SessionID: session.ID, UserID: uuid.New(), Text: "dua"}
	s.InsertMessage(ctx, first)
	s.InsertMessage(ctx, second)

	// The cursor excludes the message bearing it
	got, err := s.ListMessages(ctx, session.ID, &first.CreatedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != second.ID {
		t.Fatalf("expected only the second message, got %d", len(got))
	}

	// No cursor returns everything in insertion order
	all, err := s.ListMessages(ctx, session.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != first.ID {
		t.Fatalf("expected both messages ascending, got %d", len(all))
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := NewMemoryStore()

	session, err := s.GetSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Fatal("unknown session should resolve to nil, nil")
	}
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	session, _ := s.CreateSession(ctx, "topik", uuid.New(), nil)
	s.InsertMessage(ctx, &models.Message{SessionID: session.ID, UserID: uuid.New(), Text: "x"})

	if err := s.DeleteSessionMessages(ctx, session.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSession(ctx, session.ID); err != nil {
		t.Fatal(err)
	}

	msgs, _ := s.ListMessages(ctx, session.ID, nil)
	if len(msgs) != 0 {
		t.Fatalf("expected no messages after delete, got %d", len(msgs))
	}
	got, _ := s.GetSession(ctx, session.ID)
	if got != nil {
		t.Fatal("session should be gone after delete")
	}
}

func TestRecordConsentIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	user, _ := s.CreateUser(ctx, "Alice", "CODE")
	first, err := s.RecordConsent(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.ConsentAt == nil {
		t.Fatal("consent timestamp not set")
	}

	second, _ := s.RecordConsent(ctx, user.ID)
	if !second.ConsentAt.Equal(*first.ConsentAt) {
		t.Fatal("repeat consent must not move the original timestamp")
	}
}
