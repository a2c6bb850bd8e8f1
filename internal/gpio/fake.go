package gpio

import "errors"

// FakeButton is a test double that returns scripted button states.
type FakeButton struct {
	// Samples contains scripted states. Each call to Pressed consumes the
	// next one; once exhausted the last sample repeats.
	Samples []bool

	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Pressed()
	ReadError error
}

// NewFakeButton creates a FakeButton with the given samples.
func NewFakeButton(samples ...bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

// Pressed returns the next scripted sample.
func (f *FakeButton) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	pressed := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return pressed, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the first sample.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Closed = false
}
