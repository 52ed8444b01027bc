package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// MemoryStore is an in-process DataStore used by tests and as a
// zero-configuration fallback in development. Message timestamps are
// strictly monotonic per store instance so cursor fetches never skip a
// message written in the same instant.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	companions map[uuid.UUID]*models.Companion
	sessions   map[uuid.UUID]*models.ChatSession
	messages   map[uuid.UUID][]models.Message // keyed by session ID
	moods      map[uuid.UUID][]models.MoodLog // keyed by user ID
	journals   map[uuid.UUID][]models.JournalEntry
	lastStamp  time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uuid.UUID]*models.User),
		companions: make(map[uuid.UUID]*models.Companion),
		sessions:   make(map[uuid.UUID]*models.ChatSession),
		messages:   make(map[uuid.UUID][]models.Message),
		moods:      make(map[uuid.UUID][]models.MoodLog),
		journals:   make(map[uuid.UUID][]models.JournalEntry),
	}
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// stampLocked returns a timestamp strictly after every previously issued one.
func (s *MemoryStore) stampLocked() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return now
}

// CreateUser creates a new user record.
func (s *MemoryStore) CreateUser(_ context.Context, displayName, inviteCode string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &models.User{
		ID:          uuid.New(),
		DisplayName: displayName,
		InviteCode:  inviteCode,
		CreatedAt:   s.stampLocked(),
	}
	s.users[user.ID] = user
	out := *user
	return &out, nil
}

// GetUserByID retrieves a user by ID.
func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := *user
	return &out, nil
}

// FindUserByLogin retrieves a user by display name and invite code.
func (s *MemoryStore) FindUserByLogin(_ context.Context, displayName, inviteCode string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.DisplayName == displayName && user.InviteCode == inviteCode {
			out := *user
			return &out, nil
		}
	}
	return nil, nil
}

// RecordConsent sets the user's consent timestamp if not already set.
func (s *MemoryStore) RecordConsent(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if user.ConsentAt == nil {
		at := s.stampLocked()
		user.ConsentAt = &at
	}
	out := *user
	return &out, nil
}

// CreateCompanion creates a new companion record, active by default.
func (s *MemoryStore) CreateCompanion(_ context.Context, username, passwordHash, name, description, specialty, avatarURL string) (*models.Companion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	companion := &models.Companion{
		ID:          uuid.New(),
		Username:    username,
		Name:        name,
		Description: description,
		Specialty:   specialty,
		AvatarURL:   avatarURL,
		Active:      true,
		CreatedAt:   s.stampLocked(),
	}
	s.companions[companion.ID] = companion
	out := *companion
	return &out, nil
}

// GetActiveCompanion retrieves an active companion by ID.
func (s *MemoryStore) GetActiveCompanion(_ context.Context, id uuid.UUID) (*models.Companion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	companion, ok := s.companions[id]
	if !ok || !companion.Active {
		return nil, nil
	}
	out := *companion
	return &out, nil
}

// ListActiveCompanions lists active companions ordered by name.
func (s *MemoryStore) ListActiveCompanions(_ context.Context) ([]models.Companion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var companions []models.Companion
	for _, c := range s.companions {
		if c.Active {
			companions = append(companions, *c)
		}
	}
	sort.Slice(companions, func(i, j int) bool {
		return companions[i].Name < companions[j].Name
	})
	return companions, nil
}

// CreateSession creates a new chat session.
func (s *MemoryStore) CreateSession(_ context.Context, topic string, createdBy uuid.UUID, companionID *uuid.UUID) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &models.ChatSession{
		ID:        uuid.New(),
		Topic:     topic,
		CreatedBy: createdBy,
		CreatedAt: s.stampLocked(),
	}
	if companionID != nil {
		cid := *companionID
		session.CompanionID = &cid
		if companion, ok := s.companions[cid]; ok {
			session.CompanionName = companion.Name
			session.CompanionSpecialty = companion.Specialty
		}
	}
	s.sessions[session.ID] = session
	out := *session
	return &out, nil
}

// GetSession retrieves a session by ID.
func (s *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	out := *session
	return &out, nil
}

// ListSessionsForUser lists the user's own sessions plus all group
// sessions, newest first.
func (s *MemoryStore) ListSessionsForUser(_ context.Context, userID uuid.UUID) ([]models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []models.ChatSession
	for _, sess := range s.sessions {
		if sess.CompanionID == nil || sess.CreatedBy == userID {
			sessions = append(sessions, *sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteSessionMessages removes all messages for a session.
func (s *MemoryStore) DeleteSessionMessages(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	return nil
}

// DeleteSession removes a session.
func (s *MemoryStore) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// InsertMessage appends a message, assigning its ID and timestamp.
func (s *MemoryStore) InsertMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = ulid.Make().String()
	msg.CreatedAt = s.stampLocked()
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
	return nil
}

// ListMessages returns messages created strictly after the cursor in
// ascending creation order.
func (s *MemoryStore) ListMessages(_ context.Context, sessionID uuid.UUID, after *time.Time) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var messages []models.Message
	for _, msg := range s.messages[sessionID] {
		if after != nil && !msg.CreatedAt.After(*after) {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// InsertMood appends a mood log entry, assigning its ID and timestamp.
func (s *MemoryStore) InsertMood(_ context.Context, mood *models.MoodLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mood.ID = uuid.New()
	mood.CreatedAt = s.stampLocked()
	s.moods[mood.UserID] = append(s.moods[mood.UserID], *mood)
	return nil
}

// HasMoodForDay reports whether the user already logged a mood on the
// given UTC day.
func (s *MemoryStore) HasMoodForDay(_ context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	y, m, d := day.UTC().Date()
	for _, mood := range s.moods[userID] {
		my, mm, md := mood.CreatedAt.UTC().Date()
		if y == my && m == mm && d == md {
			return true, nil
		}
	}
	return false, nil
}

// ListMoods returns the user's mood history, newest first.
func (s *MemoryStore) ListMoods(_ context.Context, userID uuid.UUID, limit int, start, end *time.Time) ([]models.MoodLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moods []models.MoodLog
	for _, mood := range s.moods[userID] {
		if start != nil && mood.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && mood.CreatedAt.After(*end) {
			continue
		}
		moods = append(moods, mood)
	}
	sort.Slice(moods, func(i, j int) bool {
		return moods[i].CreatedAt.After(moods[j].CreatedAt)
	})
	if limit > 0 && len(moods) > limit {
		moods = moods[:limit]
	}
	return moods, nil
}

// InsertJournalEntry appends a journal entry, assigning its ID and timestamp.
func (s *MemoryStore) InsertJournalEntry(_ context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = s.stampLocked()
	s.journals[entry.UserID] = append(s.journals[entry.UserID], *entry)
	return nil
}

// GetJournalEntry retrieves a single entry owned by the user.
func (s *MemoryStore) GetJournalEntry(_ context.Context, userID, entryID uuid.UUID) (*models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.journals[userID] {
		if entry.ID == entryID {
			out := entry
			return &out, nil
		}
	}
	return nil, nil
}

// ListJournalEntries returns the user's entries, newest first.
func (s *MemoryStore) ListJournalEntries(_ context.Context, userID uuid.UUID) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]models.JournalEntry, len(s.journals[userID]))
	copy(entries, s.journals[userID])
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// DeleteJournalEntry removes an entry owned by the user.
func (s *MemoryStore) DeleteJournalEntry(_ context.Context, userID, entryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.journals[userID]
	for i, entry := range entries {
		if entry.ID == entryID {
			s.journals[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return nil
}
