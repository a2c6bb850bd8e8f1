package camera

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestFakeSourceDeliversThenCloses(t *testing.T) {
	f := NewFakeSource(2)

	for i := 1; i <= 2; i++ {
		frame, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if frame.Seq != uint64(i) {
			t.Errorf("read %d: Seq got %d", i, frame.Seq)
		}
	}

	if _, err := f.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after frames exhausted, got %v", err)
	}
}

func TestFakeSourceError(t *testing.T) {
	f := NewFakeSource(-1)
	f.ReadError = errors.New("usb unplugged")

	if _, err := f.Read(); err == nil || err.Error() != "usb unplugged" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeSourceClose(t *testing.T) {
	f := NewFakeSource(-1)
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if _, err := f.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestGrayscalePassthrough(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	if Grayscale(g) != g {
		t.Error("gray image should be returned unchanged")
	}
}

func TestGrayscaleConvertsRGBA(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	rgba.Set(1, 0, color.RGBA{A: 255})

	g := Grayscale(rgba)
	if g.GrayAt(0, 0).Y != 255 {
		t.Errorf("white pixel: got %d, want 255", g.GrayAt(0, 0).Y)
	}
	if g.GrayAt(1, 0).Y != 0 {
		t.Errorf("black pixel: got %d, want 0", g.GrayAt(1, 0).Y)
	}
}
