// Package session runs one capture session: read a frame, detect faces, render,
// decide whether to sample, and persist committed samples, until the source runs
// out or the operator stops it. Whatever ends the loop, the session log gets its
// Total row and every acquired resource is released exactly once.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/errs"
	"github.com/Sid110307/FaceCounter/internal/logger"
	"github.com/Sid110307/FaceCounter/internal/metrics"
	"github.com/Sid110307/FaceCounter/internal/model"
	"github.com/Sid110307/FaceCounter/internal/repository"
	"github.com/Sid110307/FaceCounter/internal/service/aggregator"
	"github.com/Sid110307/FaceCounter/internal/service/scheduler"
	"github.com/Sid110307/FaceCounter/internal/service/sessionlog"

	"github.com/google/uuid"
)

// Options configures a session. A zero CheckPeriod falls back to the scheduler
// default. SamplingInterval is used as given: zero commits at every check and a
// negative value is rejected.
type Options struct {
	Source           string
	OutputDirectory  string
	SamplingInterval time.Duration
	CheckPeriod      int
	Clock            scheduler.Clock

	// Optional collaborators. OpenLog defaults to sessionlog.Open.
	OpenLog  func(path string) (Log, error)
	Metrics  *metrics.Metrics
	Sessions repository.SessionRepository
	Samples  repository.SampleRepository
}

type Session[F any] struct {
	id        string
	startedAt time.Time
	clock     scheduler.Clock

	source     FrameSource[F]
	detector   Detector[F]
	renderer   Renderer[F]
	scheduler  *scheduler.Scheduler
	aggregator *aggregator.Aggregator
	log        Log

	logger   *logger.Logger
	metrics  *metrics.Metrics
	sessions repository.SessionRepository
	samples  repository.SampleRepository

	mu        sync.RWMutex
	state     State
	frames    int
	lastCount int
	closeErr  error
}

// Open performs the Initializing phase: it acquires the frame source, then the
// detector, then opens the session log. If any step fails, everything acquired so
// far is released and the session never starts.
func Open[F any](
	opts Options,
	openSource func() (FrameSource[F], error),
	openDetector func() (Detector[F], error),
	renderer Renderer[F],
	logger *logger.Logger,
) (*Session[F], error) {
	clock := opts.Clock
	if clock == nil {
		clock = scheduler.SystemClock
	}
	if opts.CheckPeriod == 0 {
		opts.CheckPeriod = scheduler.DefaultCheckPeriod
	}
	if renderer == nil {
		renderer = noopRenderer[F]{}
	}
	openLog := opts.OpenLog
	if openLog == nil {
		openLog = openSessionLog
	}

	startedAt := clock.Now()
	sched, err := scheduler.New(clock, opts.SamplingInterval, opts.CheckPeriod, startedAt)
	if err != nil {
		return nil, err
	}

	source, err := openSource()
	if err != nil {
		return nil, fmt.Errorf("failed to open video source: %w", err)
	}

	detector, err := openDetector()
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to load face detector: %w", err)
	}

	logPath := filepath.Join(opts.OutputDirectory, sessionlog.FileName(startedAt))
	log, err := openLog(logPath)
	if err != nil {
		detector.Close()
		source.Close()
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	s := &Session[F]{
		id:         uuid.NewString(),
		startedAt:  startedAt,
		clock:      clock,
		source:     source,
		detector:   detector,
		renderer:   renderer,
		scheduler:  sched,
		aggregator: aggregator.New(),
		log:        log,
		logger:     logger,
		metrics:    opts.Metrics,
		sessions:   opts.Sessions,
		samples:    opts.Samples,
		state:      Initializing,
	}

	if s.sessions != nil {
		record := &model.Session{ID: s.id, Source: opts.Source, LogPath: log.Path(), StartedAt: startedAt}
		if err := s.sessions.Insert(record); err != nil {
			s.logger.Warning("Archive disabled for session %s: %v", s.id, err)
			s.sessions, s.samples = nil, nil
		}
	}

	s.logger.Info("Session %s started, logging to %s", s.id, log.Path())
	return s, nil
}

func openSessionLog(path string) (Log, error) {
	log, err := sessionlog.Open(path)
	if err != nil {
		return nil, err
	}
	return log, nil
}

// Run executes the capture loop until the source is exhausted, the renderer
// reports a quit key or ctx is cancelled. ctx is polled once per iteration and
// never interrupts a read or a detection in progress. Run always closes the session
// before returning; the returned error joins the loop failure and any close failure.
func (s *Session[F]) Run(ctx context.Context) (err error) {
	if !s.transition(Initializing, Running) {
		return errs.ErrSessionClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capture loop panicked: %v", r)
		}
		if err != nil {
			s.metrics.Error()
			s.logger.Error("Session %s stopped on error: %v", s.id, err)
		}
		err = errors.Join(err, s.Close())
	}()

	for {
		if ctx.Err() != nil {
			s.logger.Info("Stop requested: %v", context.Cause(ctx))
			return nil
		}

		frame, err := s.source.Read()
		if err != nil {
			s.logger.Warning("Unable to capture video: %v", err)
			return nil
		}

		result, err := s.detector.Detect(frame)
		if err != nil {
			return fmt.Errorf("face detection failed: %w", err)
		}
		if result.Count < 0 {
			return fmt.Errorf("%w: detector returned count %d", errs.ErrInvariantViolation, result.Count)
		}

		quit := s.renderer.Render(frame, result)
		s.recordFrame(result.Count)

		if at, ok := s.scheduler.Observe(); ok {
			if err := s.commit(at, result.Count); err != nil {
				return err
			}
		}

		if quit {
			s.logger.Info("Quit key pressed")
			return nil
		}
	}
}

// commit adds the sample to the running total and appends it to the log.
func (s *Session[F]) commit(at time.Time, count int) error {
	s.mu.Lock()
	err := s.aggregator.Update(count)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	record := dto.SampleRecord{Timestamp: at, Count: count}
	if err := s.log.Append(record); err != nil {
		return err
	}
	s.metrics.SampleCommitted(count)

	if s.samples != nil {
		sample := &model.Sample{SessionID: s.id, Timestamp: at, Faces: count}
		if _, err := s.samples.Insert(sample); err != nil {
			s.logger.Warning("Failed to archive sample: %v", err)
		}
	}
	return nil
}

// Close runs the Closing phase: write the Total row, then release the source,
// the log, the renderer and the detector. Every release is attempted even if an
// earlier one failed. Later calls return the first call's result.
func (s *Session[F]) Close() error {
	s.mu.Lock()
	if s.state == Closing || s.state == Closed {
		err := s.closeErr
		s.mu.Unlock()
		return err
	}
	s.state = Closing
	total := s.aggregator.Finalize()
	s.mu.Unlock()

	var errList []error

	if err := s.log.AppendSummary(total); err != nil {
		errList = append(errList, err)
	}

	if err := s.source.Close(); err != nil {
		errList = append(errList, fmt.Errorf("failed to release video source: %w", err))
	}
	if err := s.log.Close(); err != nil {
		errList = append(errList, err)
	}
	if err := s.renderer.Close(); err != nil {
		errList = append(errList, fmt.Errorf("failed to close renderer: %w", err))
	}
	if err := s.detector.Close(); err != nil {
		errList = append(errList, fmt.Errorf("failed to release detector: %w", err))
	}

	if s.sessions != nil {
		if err := s.sessions.Finish(s.id, s.clock.Now(), total); err != nil {
			s.logger.Warning("Failed to archive session total: %v", err)
		}
	}

	closeErr := errors.Join(errList...)
	if closeErr != nil {
		s.logger.Error("Session %s closed with errors, the log may be incomplete: %v", s.id, closeErr)
	}
	s.logger.Info("Total faces detected: %d.", total)
	s.logger.Info("CSV log saved to %s.", s.log.Path())

	s.mu.Lock()
	s.state = Closed
	s.closeErr = closeErr
	s.mu.Unlock()

	return closeErr
}

func (s *Session[F]) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *Session[F]) recordFrame(count int) {
	s.mu.Lock()
	s.frames++
	s.lastCount = count
	s.mu.Unlock()
	s.metrics.FrameRead(count)
}

// ID returns the session identifier used in the archive.
func (s *Session[F]) ID() string {
	return s.id
}

func (s *Session[F]) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Total returns the running total; after Close it is the final total.
func (s *Session[F]) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregator.Total()
}

// LogPath returns the absolute path of the session log.
func (s *Session[F]) LogPath() string {
	return s.log.Path()
}

// Status returns a copy of the session's progress. Safe to call from other goroutines.
func (s *Session[F]) Status() dto.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return dto.SessionStatus{
		ID:              s.id,
		State:           s.state.String(),
		StartedAt:       s.startedAt,
		FramesProcessed: s.frames,
		Samples:         s.aggregator.Samples(),
		LastCount:       s.lastCount,
		Total:           s.aggregator.Total(),
		LogPath:         s.log.Path(),
	}
}
