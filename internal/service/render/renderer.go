// Package render draws detection results onto frames and hands them to the
// local window and the websocket preview.
package render

import (
	"errors"

	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/logger"
	"github.com/Sid110307/FaceCounter/internal/service/ai"

	"gocv.io/x/gocv"
)

// FrameRenderer is implemented by every output of the fan-out.
type FrameRenderer interface {
	Render(frame *gocv.Mat, result dto.DetectionResult) bool
	Close() error
}

// Fanout annotates each frame once and passes it to all outputs.
type Fanout struct {
	outputs []FrameRenderer
	logger  *logger.Logger
}

func NewFanout(logger *logger.Logger, outputs ...FrameRenderer) *Fanout {
	return &Fanout{outputs: outputs, logger: logger}
}

// Render reports true if any output asked to stop. Every output still sees the frame.
func (f *Fanout) Render(frame *gocv.Mat, result dto.DetectionResult) bool {
	if len(f.outputs) == 0 {
		return false
	}

	if err := ai.Annotate(frame, result); err != nil {
		f.logger.Warning("Failed to annotate frame: %v", err)
	}

	quit := false
	for _, out := range f.outputs {
		if out.Render(frame, result) {
			quit = true
		}
	}
	return quit
}

// Close closes every output.
func (f *Fanout) Close() error {
	var errList []error
	for _, out := range f.outputs {
		if err := out.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
