// Package errs holds the sentinel errors shared by the capture pipeline.
// Callers wrap them with fmt.Errorf("...: %w") and match with errors.Is.
package errs

import "errors"

var (
	// ErrSourceAcquisition means the video source or the detector could not be opened at startup.
	ErrSourceAcquisition = errors.New("source acquisition failed")
	// ErrSourceExhausted means the source returned no frame. It ends a session normally.
	ErrSourceExhausted = errors.New("source exhausted")
	// ErrLogIO wraps any failure to open, write or close the session log.
	ErrLogIO = errors.New("session log i/o")
	// ErrInvariantViolation flags a collaborator bug such as a negative detection count.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrSessionClosed is returned by operations on a session that already reached Closed.
	ErrSessionClosed = errors.New("session closed")
)
