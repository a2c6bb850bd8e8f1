// Package input samples the user's current input action once per frame.
// Two variants exist, selected at startup: pointer (mouse + keyboard) and
// gamepad. Device access sits behind small interfaces so the samplers can be
// tested with fakes.
package input

import "errors"

var (
	// ErrNoGamepad is returned at startup when no controller is connected.
	ErrNoGamepad = errors.New("input: no gamepad connected")

	// ErrUnsupported is returned when the device backend is not available on
	// this platform.
	ErrUnsupported = errors.New("input: not supported on this platform")
)

// ActionNone is the label recorded when nothing is held.
const ActionNone = "None"

// Variant identifies which sampler produced a Sample.
type Variant string

const (
	VariantPointer Variant = "pointer"
	VariantGamepad Variant = "gamepad"
)

// Cursor is a screen position in pixels.
type Cursor struct {
	X int
	Y int
}

// Stick is an analog stick position, each axis in [-1, 1].
type Stick struct {
	X float64
	Y float64
}

// Sample is the input state observed in one iteration.
type Sample struct {
	Variant Variant
	// Cursor is set for VariantPointer.
	Cursor Cursor
	// LeftStick and RightStick are set for VariantGamepad.
	LeftStick  Stick
	RightStick Stick
	// Action is exactly one label, ActionNone when idle.
	Action string
}

// Sampler reads the current input state.
type Sampler interface {
	// Variant reports which record shape this sampler produces.
	Variant() Variant

	// Sample returns the input state right now.
	Sample() (Sample, error)

	// Close releases the device.
	Close() error
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
