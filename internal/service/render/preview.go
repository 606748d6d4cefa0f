package render

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/metrics"
	"github.com/Sid110307/FaceCounter/internal/service/websocket"

	"gocv.io/x/gocv"
)

// PreviewMessage is the JSON payload sent to websocket viewers.
type PreviewMessage struct {
	Faces   int          `json:"faces"`
	Regions []dto.Region `json:"regions"`
	Image   string       `json:"image"`
}

// NewPreviewMessage encodes an already-compressed JPEG frame for viewers.
func NewPreviewMessage(jpeg []byte, result dto.DetectionResult) ([]byte, error) {
	msg := PreviewMessage{
		Faces:   result.Count,
		Regions: result.Regions,
		Image:   base64.StdEncoding.EncodeToString(jpeg),
	}
	if msg.Regions == nil {
		msg.Regions = []dto.Region{}
	}
	return json.Marshal(msg)
}

// PreviewRenderer streams annotated frames to the websocket hub. It never asks
// the session to stop.
type PreviewRenderer struct {
	hub     *websocket.HubService
	metrics *metrics.Metrics
}

func NewPreviewRenderer(hub *websocket.HubService, metrics *metrics.Metrics) *PreviewRenderer {
	return &PreviewRenderer{hub: hub, metrics: metrics}
}

// Render encodes the frame only when someone is watching.
func (r *PreviewRenderer) Render(frame *gocv.Mat, result dto.DetectionResult) bool {
	if r.hub.GetClientCount() == 0 {
		return false
	}

	jpeg, err := encodeJPEG(frame)
	if err != nil {
		r.metrics.Error()
		return false
	}

	msg, err := NewPreviewMessage(jpeg, result)
	if err != nil {
		r.metrics.Error()
		return false
	}

	if !r.hub.Broadcast(msg) {
		r.metrics.PreviewDrop()
	}
	return false
}

func (r *PreviewRenderer) Close() error {
	return nil
}

func encodeJPEG(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
