package sqlite

import (
	"fmt"

	"github.com/Sid110307/FaceCounter/internal/model"
)

// SampleRepository implements repository.SampleRepository for SQLite.
type SampleRepository struct {
	db *DB
}

// NewSampleRepository creates a new SQLite sample repository.
func NewSampleRepository(db *DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Insert adds a new sample record to the database.
func (r *SampleRepository) Insert(s *model.Sample) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO samples (session_id, timestamp, faces)
		VALUES (?, ?, ?)
	`, s.SessionID, s.Timestamp, s.Faces)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sample: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple samples in a single transaction.
func (r *SampleRepository) InsertBatch(samples []model.Sample) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (session_id, timestamp, faces)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(s.SessionID, s.Timestamp, s.Faces); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves all samples of a session in commit order.
func (r *SampleRepository) GetBySessionID(sessionID string) ([]model.Sample, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, session_id, timestamp, faces
		FROM samples WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var s model.Sample
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Timestamp, &s.Faces); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}
