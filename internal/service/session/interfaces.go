package session

import "github.com/Sid110307/FaceCounter/internal/dto"

// FrameSource yields frames until it is exhausted. A read error of any kind ends
// the session; it is never retried.
type FrameSource[F any] interface {
	Read() (F, error)
	Close() error
}

// Detector finds faces in a frame. A nil error means the result is usable,
// possibly with zero regions.
type Detector[F any] interface {
	Detect(frame F) (dto.DetectionResult, error)
	Close() error
}

// Renderer shows a frame with its detection result. It reports true when the
// operator asked to stop. Rendering never changes what gets logged.
type Renderer[F any] interface {
	Render(frame F, result dto.DetectionResult) (quit bool)
	Close() error
}

// Log persists committed samples and the trailing total. Rows are written in
// call order; nothing may be appended after AppendSummary.
type Log interface {
	Append(record dto.SampleRecord) error
	AppendSummary(total int) error
	Close() error
	Path() string
}

type noopRenderer[F any] struct{}

func (noopRenderer[F]) Render(F, dto.DetectionResult) bool { return false }
func (noopRenderer[F]) Close() error { return nil }
