package storage

import (
	"context"
	"sync"
	"time"

	"github.com/Sid110307/FaceCounter/internal/logger"
	"github.com/Sid110307/FaceCounter/internal/model"
	"github.com/Sid110307/FaceCounter/internal/repository"
)

const (
	// SampleBufferLimit forces a flush once this many samples are waiting.
	SampleBufferLimit = 60
	// SampleFlushInterval defines how often buffered samples are written to the archive.
	SampleFlushInterval = 30 * time.Second
)

// BufferService collects archive samples in memory and writes them in batches
// from a background ticker. It implements repository.SampleRepository.
type BufferService struct {
	repo    repository.SampleRepository
	samples []model.Sample
	limit   int
	mu      sync.Mutex
	logger  *logger.Logger
}

// NewBufferService wraps repo. A limit below 1 uses SampleBufferLimit.
func NewBufferService(repo repository.SampleRepository, limit int, logger *logger.Logger) *BufferService {
	if limit < 1 {
		limit = SampleBufferLimit
	}
	return &BufferService{
		repo:    repo,
		samples: make([]model.Sample, 0, limit),
		limit:   limit,
		logger:  logger,
	}
}

// Run flushes on every tick until ctx is cancelled, then flushes once more.
func (s *BufferService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flushLogged()
		case <-ctx.Done():
			s.flushLogged()
			return
		}
	}
}

// Insert buffers the sample. The returned id is always 0 because the row is
// not written yet.
func (s *BufferService) Insert(sample *model.Sample) (int64, error) {
	s.mu.Lock()
	s.samples = append(s.samples, *sample)
	full := len(s.samples) >= s.limit
	s.mu.Unlock()

	if full {
		return 0, s.Flush()
	}
	return 0, nil
}

// InsertBatch writes straight through after flushing what is buffered.
func (s *BufferService) InsertBatch(samples []model.Sample) error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.repo.InsertBatch(samples)
}

// GetBySessionID flushes first so buffered samples are visible.
func (s *BufferService) GetBySessionID(sessionID string) ([]model.Sample, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s.repo.GetBySessionID(sessionID)
}

// Pending returns how many samples wait for the next flush.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Flush writes buffered samples in one batch. On failure they are put back in
// front of anything buffered meanwhile.
func (s *BufferService) Flush() error {
	s.mu.Lock()
	pending := s.samples
	s.samples = make([]model.Sample, 0, s.limit)
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	if err := s.repo.InsertBatch(pending); err != nil {
		s.mu.Lock()
		s.samples = append(pending, s.samples...)
		s.mu.Unlock()
		return err
	}

	s.logger.Info("Flushed %d samples to the archive", len(pending))
	return nil
}

func (s *BufferService) flushLogged() {
	if err := s.Flush(); err != nil {
		s.logger.Error("Error saving samples to the archive: %v", err)
	}
}
