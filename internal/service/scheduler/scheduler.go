// Package scheduler decides which processed frames become logged samples.
//
// The decision is a two-condition gate: the clock is only consulted once every
// CheckPeriod frames, and a sample is committed when at least Interval of wall-clock
// time has passed since the previous commit. Actual spacing is therefore Interval
// rounded up to a whole number of check periods.
package scheduler

import (
	"fmt"
	"time"
)

const (
	// DefaultInterval is the target spacing between two committed samples.
	DefaultInterval = time.Second
	// DefaultCheckPeriod is how many frames pass between two clock reads.
	DefaultCheckPeriod = 10
)

// Clock is the time source. Tests swap in a manual clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// Scheduler is not safe for concurrent use; one capture loop owns it.
type Scheduler struct {
	clock       Clock
	interval    time.Duration
	checkPeriod int

	frames     int
	lastCommit time.Time
}

// New creates a scheduler whose first interval starts at start.
func New(clock Clock, interval time.Duration, checkPeriod int, start time.Time) (*Scheduler, error) {
	if clock == nil {
		clock = SystemClock
	}
	if checkPeriod < 1 {
		return nil, fmt.Errorf("check period must be at least 1 frame, got %d", checkPeriod)
	}
	if interval < 0 {
		return nil, fmt.Errorf("sampling interval must not be negative, got %v", interval)
	}

	return &Scheduler{
		clock:       clock,
		interval:    interval,
		checkPeriod: checkPeriod,
		lastCommit:  start,
	}, nil
}

// Observe registers one processed frame. It returns the commit time and true when
// the frame's detection result should be committed.
func (s *Scheduler) Observe() (time.Time, bool) {
	s.frames++
	if s.frames < s.checkPeriod {
		return time.Time{}, false
	}
	s.frames = 0

	now := s.clock.Now()
	if now.Sub(s.lastCommit) < s.interval {
		return time.Time{}, false
	}

	s.lastCommit = now
	return now, true
}

// LastCommit returns the time of the latest commit, or the start time before any.
func (s *Scheduler) LastCommit() time.Time {
	return s.lastCommit
}

// Interval returns the configured sampling interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// CheckPeriod returns the configured number of frames between clock reads.
func (s *Scheduler) CheckPeriod() int {
	return s.checkPeriod
}
