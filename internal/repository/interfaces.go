package repository

import (
	"time"

	"github.com/Sid110307/FaceCounter/internal/model"
)

// SessionRepository defines the interface for session data operations.
type SessionRepository interface {
	// Create operations
	Insert(s *model.Session) error

	// Update operations
	Finish(id string, endedAt time.Time, total int) error

	// Delete operations
	Delete(id string) error

	// Read operations
	GetByID(id string) (*model.Session, error)
	GetAll() ([]model.Session, error)
	ExistsForLog(logPath string, startedAt time.Time) (bool, error)
}

// SampleRepository defines the interface for sample data operations.
type SampleRepository interface {
	// Create operations
	Insert(s *model.Sample) (int64, error)
	InsertBatch(samples []model.Sample) error

	// Read operations
	GetBySessionID(sessionID string) ([]model.Sample, error)
}
