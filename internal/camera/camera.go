// Package camera provides frame acquisition with hardware abstraction.
// The real implementation uses a GStreamer pipeline; the fake implementation
// allows testing without a camera.
package camera

import (
	"errors"
	"image"
	"image/draw"
	"time"
)

// ErrClosed is returned by Read once the source has stopped delivering frames.
var ErrClosed = errors.New("camera: source closed")

// Frame is a single captured video frame.
type Frame struct {
	// Seq is the monotonic sequence number
	Seq uint64
	// Timestamp is when the frame was captured
	Timestamp time.Time
	// Image holds the pixels, usually *image.RGBA or *image.Gray
	Image image.Image
	// TraceID identifies the frame in logs
	TraceID string
}

// Config selects the capture device and output size.
type Config struct {
	// Device is the platform device: a /dev/videoN path on Linux, an index
	// elsewhere. Empty selects the first camera.
	Device string
	Width  int
	Height int
}

// Source delivers frames one at a time.
type Source interface {
	// Read blocks until the next frame is available. It returns ErrClosed
	// (possibly wrapped) when the device is gone.
	Read() (Frame, error)

	// Close releases the device.
	Close() error
}

// Grayscale returns img as *image.Gray, converting only when needed.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}
