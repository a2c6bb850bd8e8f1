package logic

import (
	"errors"
	"math"
	"testing"
)

func openEye() Eye {
	return Eye{
		{X: 0, Y: 0},
		{X: 1, Y: -1},
		{X: 3, Y: -1},
		{X: 4, Y: 0},
		{X: 3, Y: 1},
		{X: 1, Y: 1},
	}
}

func TestEyeRatio(t *testing.T) {
	got, err := EyeRatio(openEye())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.5 {
		t.Errorf("ratio: got %v, want 0.5", got)
	}
}

func TestEyeRatioClosedEye(t *testing.T) {
	eye := Eye{{0, 0}, {1, 0}, {3, 0}, {4, 0}, {3, 0}, {1, 0}}
	got, err := EyeRatio(eye)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("ratio: got %v, want 0", got)
	}
}

func TestEyeRatioDegenerate(t *testing.T) {
	eye := openEye()
	eye[3] = eye[0]

	got, err := EyeRatio(eye)
	if !errors.Is(err, ErrDegenerateEye) {
		t.Fatalf("expected ErrDegenerateEye, got %v", err)
	}
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("degenerate ratio must not be Inf/NaN, got %v", got)
	}
}

func TestEyeRatioFiniteForNonDegenerate(t *testing.T) {
	tests := []struct {
		name string
		eye  Eye
	}{
		{"unit", openEye()},
		{"tiny span", Eye{{0, 0}, {0, 5}, {0, 5}, {1e-9, 0}, {0, -5}, {0, -5}}},
		{"rotated", Eye{{0, 0}, {1, 2}, {2, 3}, {3, 3}, {2, 1}, {1, 0}}},
		{"negative coords", Eye{{-10, -10}, {-9, -11}, {-7, -11}, {-6, -10}, {-7, -9}, {-9, -9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EyeRatio(tt.eye)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.IsInf(got, 0) || math.IsNaN(got) || got < 0 {
				t.Errorf("expected finite non-negative ratio, got %v", got)
			}
		})
	}
}

func TestFaceRatioAverages(t *testing.T) {
	left := openEye() // 0.5
	right := Eye{{0, 0}, {1, -0.5}, {3, -0.5}, {4, 0}, {3, 0.5}, {1, 0.5}} // 0.25

	got, err := FaceRatio(left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.375 {
		t.Errorf("face ratio: got %v, want 0.375", got)
	}
}

func TestFaceRatioRejectsDegenerateEye(t *testing.T) {
	right := openEye()
	right[0] = right[3]

	if _, err := FaceRatio(openEye(), right); !errors.Is(err, ErrDegenerateEye) {
		t.Errorf("expected ErrDegenerateEye, got %v", err)
	}
}
