package aggregator

import (
	"fmt"

	"github.com/Sid110307/FaceCounter/internal/errs"
)

// Aggregator keeps the running total of faces over all committed samples.
type Aggregator struct {
	total     int
	samples   int
	finalized bool
}

func New() *Aggregator {
	return &Aggregator{}
}

// Update adds a committed sample's count to the total.
func (a *Aggregator) Update(count int) error {
	if a.finalized {
		return fmt.Errorf("%w: update after finalize", errs.ErrInvariantViolation)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative detection count %d", errs.ErrInvariantViolation, count)
	}

	a.total += count
	a.samples++
	return nil
}

// Total returns the current running total.
func (a *Aggregator) Total() int {
	return a.total
}

// Samples returns how many counts have been added.
func (a *Aggregator) Samples() int {
	return a.samples
}

// Finalize returns the terminal total. Calling it again returns the same value.
func (a *Aggregator) Finalize() int {
	a.finalized = true
	return a.total
}
