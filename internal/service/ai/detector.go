package ai

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/Sid110307/FaceCounter/internal/config"
	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/errs"
	"github.com/Sid110307/FaceCounter/internal/logger"

	"gocv.io/x/gocv"
)

// BoxColor is used for face rectangles and the counter overlay.
var BoxColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// CascadeDetector finds faces with an OpenCV Haar cascade.
type CascadeDetector struct {
	classifier   gocv.CascadeClassifier
	gray         gocv.Mat
	modelPath    string
	scaleFactor  float64
	minNeighbors int
	minSize      image.Point
	logger       *logger.Logger
}

// NewCascadeDetector loads the cascade named by config.CascadePath.
func NewCascadeDetector(config *config.Config, logger *logger.Logger) (*CascadeDetector, error) {
	if _, err := os.Stat(config.CascadePath); err != nil {
		return nil, fmt.Errorf("%w: cascade file not found: %s", errs.ErrSourceAcquisition, config.CascadePath)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(config.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("%w: failed to load cascade %s", errs.ErrSourceAcquisition, config.CascadePath)
	}

	d := &CascadeDetector{
		classifier:   classifier,
		gray:         gocv.NewMat(),
		modelPath:    config.CascadePath,
		scaleFactor:  config.ScaleFactor,
		minNeighbors: config.MinNeighbors,
		minSize:      image.Pt(config.MinSize, config.MinSize),
		logger:       logger,
	}

	logger.Info("Face cascade loaded from %s", config.CascadePath)
	return d, nil
}

// Detect converts the frame to grayscale and runs the cascade on it.
func (d *CascadeDetector) Detect(frame *gocv.Mat) (dto.DetectionResult, error) {
	if frame == nil || frame.Empty() {
		return dto.DetectionResult{}, fmt.Errorf("frame is empty")
	}

	if err := gocv.CvtColor(*frame, &d.gray, gocv.ColorBGRToGray); err != nil {
		return dto.DetectionResult{}, fmt.Errorf("failed to convert frame to grayscale: %v", err)
	}

	rects := d.classifier.DetectMultiScaleWithParams(d.gray, d.scaleFactor, d.minNeighbors, 0, d.minSize, image.Pt(0, 0))

	regions := make([]dto.Region, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, dto.RegionFromRect(r))
	}
	return dto.NewDetectionResult(regions), nil
}

// ModelPath returns the cascade file in use.
func (d *CascadeDetector) ModelPath() string {
	return d.modelPath
}

// Close releases the classifier and the grayscale buffer.
func (d *CascadeDetector) Close() error {
	return errors.Join(d.classifier.Close(), d.gray.Close())
}

// Annotate draws the face count and a rectangle around every region onto frame.
func Annotate(frame *gocv.Mat, result dto.DetectionResult) error {
	label := fmt.Sprintf("Faces Detected: %d", result.Count)
	if err := gocv.PutText(frame, label, image.Pt(30, 50), gocv.FontHersheySimplex, 1, BoxColor, 2); err != nil {
		return fmt.Errorf("failed to draw text: %v", err)
	}

	for _, region := range result.Regions {
		if err := gocv.Rectangle(frame, region.Rect(), BoxColor, 2); err != nil {
			return fmt.Errorf("failed to draw rectangle: %v", err)
		}
	}
	return nil
}
