package logic

import (
	"errors"
	"math"
)

// ErrDegenerateEye is returned when the eye corners coincide and the ratio
// would divide by zero.
var ErrDegenerateEye = errors.New("degenerate eye geometry: zero horizontal span")

// Point is a 2D landmark coordinate in image pixels.
type Point struct {
	X float64
	Y float64
}

// Eye is the six-point outline of one eye: p0 outer corner, p3 inner corner,
// (p1, p5) and (p2, p4) the upper/lower lid pairs.
type Eye [6]Point

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// EyeRatio returns (|p1-p5| + |p2-p4|) / (2 * |p0-p3|).
// Lower values mean a more closed eye.
func EyeRatio(eye Eye) (float64, error) {
	horizontal := dist(eye[0], eye[3])
	if horizontal == 0 {
		return 0, ErrDegenerateEye
	}
	vertical := dist(eye[1], eye[5]) + dist(eye[2], eye[4])
	return vertical / (2 * horizontal), nil
}

// FaceRatio averages the ratios of both eyes. If either eye is degenerate the
// whole face sample is rejected.
func FaceRatio(left, right Eye) (float64, error) {
	l, err := EyeRatio(left)
	if err != nil {
		return 0, err
	}
	r, err := EyeRatio(right)
	if err != nil {
		return 0, err
	}
	return (l + r) / 2, nil
}
