package face

import (
	"context"
	"image"

	"github.com/sweeney/blink-logger/internal/logic"
)

// Frame is one scripted detector result: the faces returned by Detect and,
// in the same order, the landmarks returned by Predict for each face.
type Frame struct {
	Faces     []image.Rectangle
	Landmarks []Landmarks
}

// FakeAnalyzer is a test double that returns scripted detections.
type FakeAnalyzer struct {
	// Frames contains scripted results. Each call to Detect consumes the
	// next frame; once exhausted the last frame repeats.
	Frames []Frame

	index   int
	current Frame

	// DetectError, if set, will be returned by Detect.
	DetectError error

	// PredictError, if set, will be returned by Predict.
	PredictError error

	// DetectCalls counts calls to Detect.
	DetectCalls int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeAnalyzer creates a FakeAnalyzer with the given frames.
func NewFakeAnalyzer(frames []Frame) *FakeAnalyzer {
	return &FakeAnalyzer{Frames: frames}
}

// Detect returns the faces of the next scripted frame.
func (f *FakeAnalyzer) Detect(ctx context.Context, img *image.Gray) ([]image.Rectangle, error) {
	f.DetectCalls++
	if f.DetectError != nil {
		return nil, f.DetectError
	}
	if len(f.Frames) == 0 {
		return nil, nil
	}

	f.current = f.Frames[f.index]
	if f.index < len(f.Frames)-1 {
		f.index++
	}
	return f.current.Faces, nil
}

// Predict returns the scripted landmarks for a face returned by the last Detect.
func (f *FakeAnalyzer) Predict(ctx context.Context, img *image.Gray, face image.Rectangle) (Landmarks, error) {
	if f.PredictError != nil {
		return nil, f.PredictError
	}
	for i, r := range f.current.Faces {
		if r == face && i < len(f.current.Landmarks) {
			return f.current.Landmarks[i], nil
		}
	}
	return nil, ErrTooFewPoints
}

// Close marks the analyzer as closed.
func (f *FakeAnalyzer) Close() error {
	f.Closed = true
	return nil
}

// SyntheticLandmarks builds a 68-point landmark set whose eyes both have the
// given openness ratio. Points outside the eyes are left at the origin.
func SyntheticLandmarks(ratio float64) Landmarks {
	lm := make(Landmarks, NumLandmarks)
	for _, start := range []int{LeftEyeStart, RightEyeStart} {
		x := float64(start * 10)
		h := 2 * ratio // each lid pair spans 2h on a 4px-wide eye
		lm[start+0] = logic.Point{X: x, Y: 0}
		lm[start+1] = logic.Point{X: x + 1, Y: -h}
		lm[start+2] = logic.Point{X: x + 3, Y: -h}
		lm[start+3] = logic.Point{X: x + 4, Y: 0}
		lm[start+4] = logic.Point{X: x + 3, Y: h}
		lm[start+5] = logic.Point{X: x + 1, Y: h}
	}
	return lm
}
