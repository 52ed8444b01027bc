package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// DataStore defines the interface for persistent storage. PostgresStore
// backs production, SQLiteStore backs development, and MemoryStore backs
// tests. Lookup methods return (nil, nil) when the record does not exist.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, displayName, inviteCode string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByLogin(ctx context.Context, displayName, inviteCode string) (*models.User, error)
	RecordConsent(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Companion operations
	CreateCompanion(ctx context.Context, username, passwordHash, name, description, specialty, avatarURL string) (*models.Companion, error)
	GetActiveCompanion(ctx context.Context, id uuid.UUID) (*models.Companion, error)
	ListActiveCompanions(ctx context.Context) ([]models.Companion, error)

	// Chat session operations
	CreateSession(ctx context.Context, topic string, createdBy uuid.UUID, companionID *uuid.UUID) (*models.ChatSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	ListSessionsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error)
	DeleteSessionMessages(ctx context.Context, sessionID uuid.UUID) error
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	// Message operations. InsertMessage assigns the message ID and
	// CreatedAt; ListMessages returns messages strictly after the cursor
	// (all messages when nil) in ascending creation order, ties broken by
	// insertion order.
	InsertMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, sessionID uuid.UUID, after *time.Time) ([]models.Message, error)

	// Mood operations
	InsertMood(ctx context.Context, mood *models.MoodLog) error
	HasMoodForDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)
	ListMoods(ctx context.Context, userID uuid.UUID, limit int, start, end *time.Time) ([]models.MoodLog, error)

	// Journal operations
	InsertJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	GetJournalEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.JournalEntry, error)
	ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]models.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, userID, entryID uuid.UUID) error
}
