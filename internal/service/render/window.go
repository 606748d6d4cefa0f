package render

import (
	"github.com/Sid110307/FaceCounter/internal/dto"

	"gocv.io/x/gocv"
)

// WindowTitle names the local preview window.
const WindowTitle = "FaceCounter"

// WindowRenderer shows frames in a local OpenCV window and polls the keyboard
// once per frame.
type WindowRenderer struct {
	window  *gocv.Window
	quitKey int
}

func NewWindowRenderer(quitKey rune) *WindowRenderer {
	window := gocv.NewWindow(WindowTitle)

	return &WindowRenderer{
		window:  window,
		quitKey: int(quitKey) & 0xFF,
	}
}

// Render displays the frame and reports whether the quit key was pressed.
func (r *WindowRenderer) Render(frame *gocv.Mat, result dto.DetectionResult) bool {
	r.window.IMShow(*frame)
	key := r.window.WaitKey(1)
	return key >= 0 && key&0xFF == r.quitKey
}

func (r *WindowRenderer) Close() error {
	return r.window.Close()
}
