package capture

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Sid110307/FaceCounter/internal/errs"

	"gocv.io/x/gocv"
)

// Webcam reads frames from a capture device, a video file or a stream URL.
type Webcam struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	source  string
	frames  int
	closed  bool
}

// Open opens source. A non-negative integer selects a device index, anything
// else is passed to OpenCV as a file name or URL.
func Open(source string) (*Webcam, error) {
	var (
		capture *gocv.VideoCapture
		err     error
	)

	if index, convErr := strconv.Atoi(source); convErr == nil && index >= 0 {
		capture, err = gocv.VideoCaptureDevice(index)
	} else {
		capture, err = gocv.VideoCaptureFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open video source %q: %v", errs.ErrSourceAcquisition, source, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: video source %q is not available", errs.ErrSourceAcquisition, source)
	}

	return &Webcam{
		capture: capture,
		frame:   gocv.NewMat(),
		source:  source,
	}, nil
}

// Read grabs the next frame into a buffer owned by the Webcam. The returned Mat
// is overwritten by the following Read and must not be closed by the caller.
// A failed grab is reported as errs.ErrSourceExhausted.
func (w *Webcam) Read() (*gocv.Mat, error) {
	if w.closed {
		return nil, fmt.Errorf("%w: %s is closed", errs.ErrSourceExhausted, w.source)
	}
	if ok := w.capture.Read(&w.frame); !ok {
		return nil, fmt.Errorf("%w: cannot read from %s after %d frames", errs.ErrSourceExhausted, w.source, w.frames)
	}
	if w.frame.Empty() {
		return nil, fmt.Errorf("%w: empty frame from %s", errs.ErrSourceExhausted, w.source)
	}

	w.frames++
	return &w.frame, nil
}

// Frames returns how many frames were read successfully.
func (w *Webcam) Frames() int {
	return w.frames
}

// Source returns the source string the Webcam was opened with.
func (w *Webcam) Source() string {
	return w.source
}

// Close releases the device and the frame buffer.
func (w *Webcam) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	return errors.Join(w.capture.Close(), w.frame.Close())
}
