package dto

import "image"

// Region is an axis-aligned bounding box reported by the detector.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region into an image.Rectangle for drawing.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// RegionFromRect is the inverse of Rect. Negative origins are clamped to zero.
func RegionFromRect(rect image.Rectangle) Region {
	rect = rect.Canon()
	x, y := rect.Min.X, rect.Min.Y
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return Region{X: x, Y: y, Width: rect.Max.X - x, Height: rect.Max.Y - y}
}

// DetectionResult is what a detector returns for one frame.
type DetectionResult struct {
	Count   int      `json:"count"`
	Regions []Region `json:"regions"`
}

// NewDetectionResult builds a result whose count matches the regions.
func NewDetectionResult(regions []Region) DetectionResult {
	return DetectionResult{Count: len(regions), Regions: regions}
}
