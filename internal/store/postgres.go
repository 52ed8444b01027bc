package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies the schema to the database.
func RunMigrations(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		display_name TEXT NOT NULL,
		invite_code TEXT NOT NULL,
		consent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS companions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		specialty TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS chat_sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		topic TEXT NOT NULL,
		created_by UUID NOT NULL,
		companion_id UUID REFERENCES companions(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		seq BIGINT GENERATED ALWAYS AS IDENTITY,
		session_id UUID NOT NULL REFERENCES chat_sessions(id),
		user_id UUID NOT NULL,
		display_name TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS mood_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		score INT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_users_login ON users(display_name, invite_code);
	CREATE INDEX IF NOT EXISTS idx_sessions_created_by ON chat_sessions(created_by);
	CREATE INDEX IF NOT EXISTS idx_messages_session_time ON messages(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_moods_user_time ON mood_logs(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_journal_user ON journal_entries(user_id);
	`

	_, err = conn.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, displayName, inviteCode string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (display_name, invite_code)
		VALUES ($1, $2)
		RETURNING id, display_name, invite_code, consent_at, created_at
	`, displayName, inviteCode).Scan(
		&user.ID, &user.DisplayName, &user.InviteCode, &user.ConsentAt, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, display_name, invite_code, consent_at, created_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.DisplayName, &user.InviteCode, &user.ConsentAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindUserByLogin retrieves a user by display name and invite code.
func (s *PostgresStore) FindUserByLogin(ctx context.Context, displayName, inviteCode string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, display_name, invite_code, consent_at, created_at
		FROM users WHERE display_name = $1 AND invite_code = $2
	`, displayName, inviteCode).Scan(
		&user.ID, &user.DisplayName, &user.InviteCode, &user.ConsentAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RecordConsent sets the user's consent timestamp if not already set.
func (s *PostgresStore) RecordConsent(ctx context.Context, id uuid.UUID) (*models.User, error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET consent_at = now() WHERE id = $1 AND consent_at IS NULL
	`, id)
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

// CreateCompanion creates a new companion record, active by default.
func (s *PostgresStore) CreateCompanion(ctx context.Context, username, passwordHash, name, description, specialty, avatarURL string) (*models.Companion, error) {
	companion := &models.Companion{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO companions (username, password_hash, name, description, specialty, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, username, name, description, specialty, avatar_url, is_active, created_at
	`, username, passwordHash, name, description, specialty, avatarURL).Scan(
		&companion.ID, &companion.Username, &companion.Name, &companion.Description,
		&companion.Specialty, &companion.AvatarURL, &companion.Active, &companion.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return companion, nil
}

// GetActiveCompanion retrieves an active companion by ID.
func (s *PostgresStore) GetActiveCompanion(ctx context.Context, id uuid.UUID) (*models.Companion, error) {
	companion := &models.Companion{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, name, description, specialty, avatar_url, is_active, created_at
		FROM companions WHERE id = $1 AND is_active
	`, id).Scan(
		&companion.ID, &companion.Username, &companion.Name, &companion.Description,
		&companion.Specialty, &companion.AvatarURL, &companion.Active, &companion.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return companion, nil
}

// ListActiveCompanions lists active companions ordered by name.
func (s *PostgresStore) ListActiveCompanions(ctx context.Context) ([]models.Companion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, name, description, specialty, avatar_url, is_active, created_at
		FROM companions WHERE is_active ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companions []models.Companion
	for rows.Next() {
		var companion models.Companion
		err := rows.Scan(
			&companion.ID, &companion.Username, &companion.Name, &companion.Description,
			&companion.Specialty, &companion.AvatarURL, &companion.Active, &companion.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		companions = append(companions, companion)
	}

	return companions, rows.Err()
}

const pgSessionSelect = `
	SELECT s.id, s.topic, s.created_by, s.companion_id, s.created_at,
	       COALESCE(c.name, ''), COALESCE(c.specialty, '')
	FROM chat_sessions s
	LEFT JOIN companions c ON c.id = s.companion_id
`

// CreateSession creates a new chat session.
func (s *PostgresStore) CreateSession(ctx context.Context, topic string, createdBy uuid.UUID, companionID *uuid.UUID) (*models.ChatSession, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_sessions (topic, created_by, companion_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, topic, createdBy, companionID).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetSession(ctx, id)
}

// GetSession retrieves a session by ID with companion metadata.
func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	err := s.pool.QueryRow(ctx, pgSessionSelect+` WHERE s.id = $1`, id).Scan(
		&session.ID, &session.Topic, &session.CreatedBy, &session.CompanionID,
		&session.CreatedAt, &session.CompanionName, &session.CompanionSpecialty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// ListSessionsForUser lists the user's own sessions plus all group
// sessions, newest first.
func (s *PostgresStore) ListSessionsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error) {
	rows, err := s.pool.Query(ctx, pgSessionSelect+`
		WHERE s.companion_id IS NULL OR s.created_by = $1
		ORDER BY s.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChatSession
	for rows.Next() {
		var session models.ChatSession
		err := rows.Scan(
			&session.ID, &session.Topic, &session.CreatedBy, &session.CompanionID,
			&session.CreatedAt, &session.CompanionName, &session.CompanionSpecialty,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// DeleteSessionMessages removes all messages for a session. Must run
// before DeleteSession because of the foreign key constraint.
func (s *PostgresStore) DeleteSessionMessages(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, sessionID)
	return err
}

// DeleteSession removes a session.
func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, sessionID)
	return err
}

// InsertMessage appends a message. The database assigns the timestamp so
// ordering follows the store's clock, not the caller's.
func (s *PostgresStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = ulid.Make().String()

	return s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, session_id, user_id, display_name, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, msg.ID, msg.SessionID, msg.UserID, msg.DisplayName, msg.Text).Scan(&msg.CreatedAt)
}

// ListMessages returns messages created strictly after the cursor in
// ascending creation order, ties broken by insertion order (seq).
func (s *PostgresStore) ListMessages(ctx context.Context, sessionID uuid.UUID, after *time.Time) ([]models.Message, error) {
	query := `
		SELECT id, session_id, user_id, display_name, text, created_at
		FROM messages WHERE session_id = $1
	`
	args := []interface{}{sessionID}

	if after != nil {
		query += ` AND created_at > $2`
		args = append(args, after.UTC())
	}
	query += ` ORDER BY created_at ASC, seq ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.DisplayName, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// InsertMood appends a mood log entry.
func (s *PostgresStore) InsertMood(ctx context.Context, mood *models.MoodLog) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO mood_logs (user_id, score, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, mood.UserID, mood.Score, mood.Note).Scan(&mood.ID, &mood.CreatedAt)
}

// HasMoodForDay reports whether the user already logged a mood on the
// given UTC day.
func (s *PostgresStore) HasMoodForDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)

	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM mood_logs
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, dayStart, dayStart.Add(24*time.Hour)).Scan(&count)
	return count > 0, err
}

// ListMoods returns the user's mood history, newest first.
func (s *PostgresStore) ListMoods(ctx context.Context, userID uuid.UUID, limit int, start, end *time.Time) ([]models.MoodLog, error) {
	query := `
		SELECT id, user_id, score, note, created_at
		FROM mood_logs WHERE user_id = $1
	`
	args := []interface{}{userID}

	if start != nil {
		args = append(args, start.UTC())
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if end != nil {
		args = append(args, end.UTC())
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moods []models.MoodLog
	for rows.Next() {
		var mood models.MoodLog
		if err := rows.Scan(&mood.ID, &mood.UserID, &mood.Score, &mood.Note, &mood.CreatedAt); err != nil {
			return nil, err
		}
		moods = append(moods, mood)
	}

	return moods, rows.Err()
}

// InsertJournalEntry appends a journal entry.
func (s *PostgresStore) InsertJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO journal_entries (user_id, title, body, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, entry.UserID, entry.Title, entry.Body, tags).Scan(&entry.ID, &entry.CreatedAt)
}

// GetJournalEntry retrieves a single entry owned by the user.
func (s *PostgresStore) GetJournalEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.JournalEntry, error) {
	entry := &models.JournalEntry{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, body, tags, created_at
		FROM journal_entries WHERE id = $1 AND user_id = $2
	`, entryID, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Body, &entry.Tags, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// ListJournalEntries returns the user's entries, newest first.
func (s *PostgresStore) ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]models.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, body, tags, created_at
		FROM journal_entries WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Title, &entry.Body, &entry.Tags, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// DeleteJournalEntry removes an entry owned by the user.
func (s *PostgresStore) DeleteJournalEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM journal_entries WHERE id = $1 AND user_id = $2
	`, entryID, userID)
	return err
}
