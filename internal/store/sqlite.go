package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// SQLiteStore handles SQLite database operations. All timestamps are
// stored in UTC so cursor comparisons stay consistent.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/ruangdengar.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/ruangdengar.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		invite_code TEXT NOT NULL,
		consent_at DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS companions (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		specialty TEXT DEFAULT '',
		avatar_url TEXT DEFAULT '',
		is_active INTEGER DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		created_by TEXT NOT NULL,
		companion_id TEXT REFERENCES companions(id),
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES chat_sessions(id),
		user_id TEXT NOT NULL,
		display_name TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mood_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		note TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		tags TEXT DEFAULT '[]',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_login ON users(display_name, invite_code);
	CREATE INDEX IF NOT EXISTS idx_sessions_created_by ON chat_sessions(created_by);
	CREATE INDEX IF NOT EXISTS idx_messages_session_time ON messages(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_moods_user_time ON mood_logs(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_journal_user ON journal_entries(user_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, displayName, inviteCode string) (*models.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, invite_code, created_at)
		VALUES (?, ?, ?, ?)
	`, id.String(), displayName, inviteCode, now)
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, display_name, invite_code, consent_at, created_at
		FROM users WHERE id = ?
	`, id.String()))
}

// FindUserByLogin retrieves a user by display name and invite code.
func (s *SQLiteStore) FindUserByLogin(ctx context.Context, displayName, inviteCode string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, display_name, invite_code, consent_at, created_at
		FROM users WHERE display_name = ? AND invite_code = ?
	`, displayName, inviteCode))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := row.Scan(&idStr, &user.DisplayName, &user.InviteCode, &user.ConsentAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// RecordConsent sets the user's consent timestamp if not already set.
func (s *SQLiteStore) RecordConsent(ctx context.Context, id uuid.UUID) (*models.User, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET consent_at = ? WHERE id = ? AND consent_at IS NULL
	`, time.Now().UTC(), id.String())
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

// CreateCompanion creates a new companion record, active by default.
func (s *SQLiteStore) CreateCompanion(ctx context.Context, username, passwordHash, name, description, specialty, avatarURL string) (*models.Companion, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companions (id, username, password_hash, name, description, specialty, avatar_url, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, id.String(), username, passwordHash, name, description, specialty, avatarURL, now)
	if err != nil {
		return nil, err
	}

	return s.GetActiveCompanion(ctx, id)
}

// GetActiveCompanion retrieves an active companion by ID.
func (s *SQLiteStore) GetActiveCompanion(ctx context.Context, id uuid.UUID) (*models.Companion, error) {
	companion := &models.Companion{Active: true}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, name, description, specialty, avatar_url, created_at
		FROM companions WHERE id = ? AND is_active = 1
	`, id.String()).Scan(
		&idStr,
		&companion.Username,
		&companion.Name,
		&companion.Description,
		&companion.Specialty,
		&companion.AvatarURL,
		&companion.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	companion.ID = uuid.MustParse(idStr)
	return companion, nil
}

// ListActiveCompanions lists active companions ordered by name.
func (s *SQLiteStore) ListActiveCompanions(ctx context.Context) ([]models.Companion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, name, description, specialty, avatar_url, created_at
		FROM companions WHERE is_active = 1 ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companions []models.Companion
	for rows.Next() {
		companion := models.Companion{Active: true}
		var idStr string
		err := rows.Scan(
			&idStr,
			&companion.Username,
			&companion.Name,
			&companion.Description,
			&companion.Specialty,
			&companion.AvatarURL,
			&companion.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		companion.ID = uuid.MustParse(idStr)
		companions = append(companions, companion)
	}

	return companions, rows.Err()
}

// CreateSession creates a new chat session.
func (s *SQLiteStore) CreateSession(ctx context.Context, topic string, createdBy uuid.UUID, companionID *uuid.UUID) (*models.ChatSession, error) {
	id := uuid.New()
	now := time.Now().UTC()

	var companionStr *string
	if companionID != nil {
		str := companionID.String()
		companionStr = &str
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, topic, created_by, companion_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id.String(), topic, createdBy.String(), companionStr, now)
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, id)
}

const sessionSelect = `
	SELECT s.id, s.topic, s.created_by, s.companion_id, s.created_at,
	       COALESCE(c.name, ''), COALESCE(c.specialty, '')
	FROM chat_sessions s
	LEFT JOIN companions c ON c.id = s.companion_id
`

// GetSession retrieves a session by ID with companion metadata.
func (s *SQLiteStore) GetSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	var idStr string
	var createdByStr string
	var companionStr *string

	err := s.db.QueryRowContext(ctx, sessionSelect+` WHERE s.id = ?`, id.String()).Scan(
		&idStr,
		&session.Topic,
		&createdByStr,
		&companionStr,
		&session.CreatedAt,
		&session.CompanionName,
		&session.CompanionSpecialty,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	session.ID = uuid.MustParse(idStr)
	session.CreatedBy = uuid.MustParse(createdByStr)
	if companionStr != nil {
		cid := uuid.MustParse(*companionStr)
		session.CompanionID = &cid
	}
	return session, nil
}

// ListSessionsForUser lists the user's own sessions plus all group
// sessions, newest first.
func (s *SQLiteStore) ListSessionsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, sessionSelect+`
		WHERE s.companion_id IS NULL OR s.created_by = ?
		ORDER BY s.created_at DESC
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChatSession
	for rows.Next() {
		var session models.ChatSession
		var idStr, createdByStr string
		var companionStr *string

		err := rows.Scan(
			&idStr,
			&session.Topic,
			&createdByStr,
			&companionStr,
			&session.CreatedAt,
			&session.CompanionName,
			&session.CompanionSpecialty,
		)
		if err != nil {
			return nil, err
		}

		session.ID = uuid.MustParse(idStr)
		session.CreatedBy = uuid.MustParse(createdByStr)
		if companionStr != nil {
			cid := uuid.MustParse(*companionStr)
			session.CompanionID = &cid
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// DeleteSessionMessages removes all messages for a session. Must run
// before DeleteSession because of the foreign key constraint.
func (s *SQLiteStore) DeleteSessionMessages(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID.String())
	return err
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, sessionID.String())
	return err
}

// InsertMessage appends a message, assigning its ID and timestamp.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = ulid.Make().String()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, user_id, display_name, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID.String(), msg.UserID.String(), msg.DisplayName, msg.Text, msg.CreatedAt)
	return err
}

// ListMessages returns messages created strictly after the cursor in
// ascending creation order, ties broken by insertion order (rowid).
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID uuid.UUID, after *time.Time) ([]models.Message, error) {
	query := `
		SELECT id, session_id, user_id, display_name, text, created_at
		FROM messages WHERE session_id = ?
	`
	args := []interface{}{sessionID.String()}

	if after != nil {
		query += ` AND created_at > ?`
		args = append(args, after.UTC())
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var sessionStr, userStr string
		if err := rows.Scan(&msg.ID, &sessionStr, &userStr, &msg.DisplayName, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.SessionID = uuid.MustParse(sessionStr)
		msg.UserID = uuid.MustParse(userStr)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// InsertMood appends a mood log entry, assigning its ID and timestamp.
func (s *SQLiteStore) InsertMood(ctx context.Context, mood *models.MoodLog) error {
	mood.ID = uuid.New()
	mood.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mood_logs (id, user_id, score, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, mood.ID.String(), mood.UserID.String(), mood.Score, mood.Note, mood.CreatedAt)
	return err
}

// HasMoodForDay reports whether the user already logged a mood on the
// given UTC day.
func (s *SQLiteStore) HasMoodForDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM mood_logs
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
	`, userID.String(), dayStart, dayEnd).Scan(&count)
	return count > 0, err
}

// ListMoods returns the user's mood history, newest first.
func (s *SQLiteStore) ListMoods(ctx context.Context, userID uuid.UUID, limit int, start, end *time.Time) ([]models.MoodLog, error) {
	query := `
		SELECT id, user_id, score, note, created_at
		FROM mood_logs WHERE user_id = ?
	`
	args := []interface{}{userID.String()}

	if start != nil {
		query += ` AND created_at >= ?`
		args = append(args, start.UTC())
	}
	if end != nil {
		query += ` AND created_at <= ?`
		args = append(args, end.UTC())
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moods []models.MoodLog
	for rows.Next() {
		var mood models.MoodLog
		var idStr, userStr string
		if err := rows.Scan(&idStr, &userStr, &mood.Score, &mood.Note, &mood.CreatedAt); err != nil {
			return nil, err
		}
		mood.ID = uuid.MustParse(idStr)
		mood.UserID = uuid.MustParse(userStr)
		moods = append(moods, mood)
	}

	return moods, rows.Err()
}

// InsertJournalEntry appends a journal entry, assigning its ID and timestamp.
func (s *SQLiteStore) InsertJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, title, body, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID.String(), entry.UserID.String(), entry.Title, entry.Body, string(tags), entry.CreatedAt)
	return err
}

// GetJournalEntry retrieves a single entry owned by the user.
func (s *SQLiteStore) GetJournalEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.JournalEntry, error) {
	entry := &models.JournalEntry{}
	var idStr, userStr, tagsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, body, tags, created_at
		FROM journal_entries WHERE id = ? AND user_id = ?
	`, entryID.String(), userID.String()).Scan(
		&idStr, &userStr, &entry.Title, &entry.Body, &tagsJSON, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	entry.ID = uuid.MustParse(idStr)
	entry.UserID = uuid.MustParse(userStr)
	if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
		entry.Tags = nil
	}
	return entry, nil
}

// ListJournalEntries returns the user's entries, newest first.
func (s *SQLiteStore) ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, body, tags, created_at
		FROM journal_entries WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		var idStr, userStr, tagsJSON string
		if err := rows.Scan(&idStr, &userStr, &entry.Title, &entry.Body, &tagsJSON, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.ID = uuid.MustParse(idStr)
		entry.UserID = uuid.MustParse(userStr)
		if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
			entry.Tags = nil
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// DeleteJournalEntry removes an entry owned by the user.
func (s *SQLiteStore) DeleteJournalEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM journal_entries WHERE id = ? AND user_id = ?
	`, entryID.String(), userID.String())
	return err
}
