package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sid110307/FaceCounter/internal/logger"
	"github.com/Sid110307/FaceCounter/internal/model"
)

type fakeSampleRepo struct {
	batches [][]model.Sample
	fail    error
}

func (r *fakeSampleRepo) Insert(s *model.Sample) (int64, error) {
	r.batches = append(r.batches, []model.Sample{*s})
	return 1, nil
}

func (r *fakeSampleRepo) InsertBatch(samples []model.Sample) error {
	if r.fail != nil {
		return r.fail
	}
	r.batches = append(r.batches, append([]model.Sample(nil), samples...))
	return nil
}

func (r *fakeSampleRepo) GetBySessionID(sessionID string) ([]model.Sample, error) {
	var out []model.Sample
	for _, batch := range r.batches {
		for _, s := range batch {
			if s.SessionID == sessionID {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.NewQuiet(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func sample(faces int) *model.Sample {
	return &model.Sample{SessionID: "s1", Timestamp: time.Now(), Faces: faces}
}

func TestBufferService_FlushOnLimit(t *testing.T) {
	repo := &fakeSampleRepo{}
	buffer := NewBufferService(repo, 3, newTestLogger(t))

	for i := 0; i < 2; i++ {
		if _, err := buffer.Insert(sample(i)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if len(repo.batches) != 0 || buffer.Pending() != 2 {
		t.Fatalf("expected samples to stay buffered, got %d batches, %d pending", len(repo.batches), buffer.Pending())
	}

	if _, err := buffer.Insert(sample(2)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 3 {
		t.Fatalf("expected one batch of 3, got %v", repo.batches)
	}
	if buffer.Pending() != 0 {
		t.Errorf("expected empty buffer, got %d", buffer.Pending())
	}
}

func TestBufferService_FailedFlushKeepsSamples(t *testing.T) {
	repo := &fakeSampleRepo{fail: errors.New("database is locked")}
	buffer := NewBufferService(repo, 10, newTestLogger(t))

	buffer.Insert(sample(1))
	buffer.Insert(sample(2))

	if err := buffer.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
	if buffer.Pending() != 2 {
		t.Fatalf("expected 2 pending samples, got %d", buffer.Pending())
	}

	repo.fail = nil
	if err := buffer.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(repo.batches) != 1 || repo.batches[0][0].Faces != 1 || repo.batches[0][1].Faces != 2 {
		t.Errorf("unexpected batches %v", repo.batches)
	}
}

func TestBufferService_GetFlushesFirst(t *testing.T) {
	repo := &fakeSampleRepo{}
	buffer := NewBufferService(repo, 10, newTestLogger(t))
	buffer.Insert(sample(4))

	got, err := buffer.GetBySessionID("s1")
	if err != nil {
		t.Fatalf("GetBySessionID failed: %v", err)
	}
	if len(got) != 1 || got[0].Faces != 4 {
		t.Errorf("expected buffered sample to be visible, got %v", got)
	}
}

func TestBufferService_RunFlushesOnCancel(t *testing.T) {
	repo := &fakeSampleRepo{}
	buffer := NewBufferService(repo, 10, newTestLogger(t))
	buffer.Insert(sample(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		buffer.Run(ctx, time.Hour)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if len(repo.batches) != 1 || buffer.Pending() != 0 {
		t.Errorf("expected a final flush, got %d batches, %d pending", len(repo.batches), buffer.Pending())
	}
}

func TestNewBufferService_DefaultLimit(t *testing.T) {
	buffer := NewBufferService(&fakeSampleRepo{}, 0, newTestLogger(t))
	if buffer.limit != SampleBufferLimit {
		t.Errorf("expected limit %d, got %d", SampleBufferLimit, buffer.limit)
	}
}
