// Package face provides face detection and landmark prediction behind
// interfaces. The real implementation talks to an external landmark service
// over gRPC; the fake implementation allows testing without a model.
package face

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sweeney/blink-logger/internal/logic"
)

// Landmark layout (68-point iBUG 300-W scheme).
const (
	NumLandmarks  = 68
	LeftEyeStart  = 36
	RightEyeStart = 42
	eyePoints     = 6
)

// ErrTooFewPoints is returned when a landmark set does not cover both eyes.
var ErrTooFewPoints = errors.New("landmark set does not cover both eyes")

// Detector finds face regions in a grayscale image.
type Detector interface {
	// Detect returns zero or more face rectangles.
	Detect(ctx context.Context, img *image.Gray) ([]image.Rectangle, error)
}

// Predictor locates anatomical landmarks inside a detected face.
type Predictor interface {
	// Predict returns the ordered landmark points for the face region.
	Predict(ctx context.Context, img *image.Gray, face image.Rectangle) (Landmarks, error)
}

// Analyzer is both a Detector and a Predictor, plus lifecycle.
type Analyzer interface {
	Detector
	Predictor
	Close() error
}

// Landmarks is an ordered set of face landmark points.
type Landmarks []logic.Point

// LeftEye returns points 36..41.
func (l Landmarks) LeftEye() (logic.Eye, error) {
	return l.eye(LeftEyeStart)
}

// RightEye returns points 42..47.
func (l Landmarks) RightEye() (logic.Eye, error) {
	return l.eye(RightEyeStart)
}

// Eyes returns both eye outlines.
func (l Landmarks) Eyes() (left, right logic.Eye, err error) {
	if left, err = l.LeftEye(); err != nil {
		return left, right, err
	}
	right, err = l.RightEye()
	return left, right, err
}

func (l Landmarks) eye(start int) (logic.Eye, error) {
	var eye logic.Eye
	if len(l) < start+eyePoints {
		return eye, fmt.Errorf("%w: have %d points, need %d", ErrTooFewPoints, len(l), start+eyePoints)
	}
	copy(eye[:], l[start:start+eyePoints])
	return eye, nil
}
