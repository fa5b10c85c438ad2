package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one drawing session: when it ran and how much was drawn.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   *time.Time
	Strokes   int
	Clears    int
}

// SessionRepository records drawing sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Begin inserts a new session row and returns it.
func (r *SessionRepository) Begin() (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		session.ID, session.StartedAt,
	)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// End closes a session, recording the end time and activity counters.
func (r *SessionRepository) End(id string, strokes, clears int) error {
	res, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, strokes = ?, clears = ? WHERE id = ?`,
		time.Now(), strokes, clears, id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	session := &Session{}
	var endedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at, strokes, clears FROM sessions WHERE id = ?`,
		id,
	).Scan(&session.ID, &session.StartedAt, &endedAt, &session.Strokes, &session.Clears)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}
	return session, nil
}

// List retrieves all sessions, most recent first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, strokes, clears
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		var endedAt sql.NullTime

		if err := rows.Scan(&session.ID, &session.StartedAt, &endedAt, &session.Strokes, &session.Clears); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			session.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
