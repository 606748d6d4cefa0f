package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Sid110307/FaceCounter/internal/model"
)

// SessionRepository implements repository.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert adds a new session record to the database.
func (r *SessionRepository) Insert(s *model.Session) error {
	r.db.Lock()
	defer r.db.Unlock()

	var endedAt sql.NullTime
	if s.EndedAt != nil {
		endedAt = sql.NullTime{Time: *s.EndedAt, Valid: true}
	}

	_, err := r.db.Conn().Exec(`
		INSERT INTO sessions (id, source, log_path, started_at, ended_at, total)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Source, s.LogPath, s.StartedAt, endedAt, s.Total)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Finish stores the end time and the final total of a session.
func (r *SessionRepository) Finish(id string, endedAt time.Time, total int) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		UPDATE sessions SET ended_at = ?, total = ? WHERE id = ?
	`, endedAt, total, id)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`
		SELECT id, source, log_path, started_at, ended_at, total
		FROM sessions WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// GetAll returns every session, newest first.
func (r *SessionRepository) GetAll() ([]model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, source, log_path, started_at, ended_at, total
		FROM sessions ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}

// Delete removes a session; its samples go with it through ON DELETE CASCADE.
func (r *SessionRepository) Delete(id string) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ExistsForLog checks whether a session from the given log file and start time is stored.
func (r *SessionRepository) ExistsForLog(logPath string, startedAt time.Time) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*) FROM sessions WHERE log_path = ? AND started_at = ?
	`, logPath, startedAt).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return count > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*model.Session, error) {
	var s model.Session
	var endedAt sql.NullTime

	if err := row.Scan(&s.ID, &s.Source, &s.LogPath, &s.StartedAt, &endedAt, &s.Total); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}
