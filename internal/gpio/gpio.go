// Package gpio reads a hardware push button used to end a capture session.
// The real implementation uses the Linux GPIO character device; the fake
// allows testing without hardware.
package gpio

import "go.uber.org/zap"

// Button reads a momentary push button.
type Button interface {
	// Pressed returns the logical button state.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Trigger adapts a Button to a quit signal.
type Trigger struct {
	Button Button
	Logger *zap.Logger
}

// QuitRequested reports whether the button is held. Read errors are logged
// and count as not pressed.
func (t Trigger) QuitRequested() bool {
	pressed, err := t.Button.Pressed()
	if err != nil {
		if t.Logger != nil {
			t.Logger.Warn("gpio read failed", zap.Error(err))
		}
		return false
	}
	return pressed
}

// String names the trigger for logs.
func (t Trigger) String() string {
	return "gpio"
}
