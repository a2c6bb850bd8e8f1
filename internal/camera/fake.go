package camera

import (
	"image"
	"time"
)

// FakeSource is a test double that returns a fixed number of blank frames
// and then reports ErrClosed.
type FakeSource struct {
	// Frames is how many frames to deliver before ErrClosed. Negative means
	// unlimited.
	Frames int

	// Image is returned in every frame. Defaults to a 64x48 gray image.
	Image image.Image

	// ReadError, if set, will be returned by Read().
	ReadError error

	// Reads counts calls to Read, including failed ones.
	Reads int

	// Closed tracks if Close was called.
	Closed bool

	seq uint64
}

// NewFakeSource creates a FakeSource delivering n frames.
func NewFakeSource(n int) *FakeSource {
	return &FakeSource{
		Frames: n,
		Image:  image.NewGray(image.Rect(0, 0, 64, 48)),
	}
}

// Read returns the next blank frame.
func (f *FakeSource) Read() (Frame, error) {
	f.Reads++
	if f.ReadError != nil {
		return Frame{}, f.ReadError
	}
	if f.Closed || (f.Frames >= 0 && int(f.seq) >= f.Frames) {
		return Frame{}, ErrClosed
	}
	f.seq++
	return Frame{
		Seq:       f.seq,
		Timestamp: time.Time{},
		Image:     f.Image,
	}, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
