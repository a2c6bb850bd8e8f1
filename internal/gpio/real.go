//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealButton reads a button wired between the pin and ground.
type RealButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealButton requests pin (BCM numbering) on chip as an input with pull-up.
func NewRealButton(chip string, pin int) (*RealButton, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := c.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request pin %d: %w", pin, err)
	}

	return &RealButton{chip: c, line: line}, nil
}

// Pressed reports whether the button is down. The line idles high through the
// pull-up, so raw 0 means pressed.
func (b *RealButton) Pressed() (bool, error) {
	raw, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin: %w", err)
	}
	return raw == 0, nil
}

// Close returns the pin to input with pull-down, matching Pi boot defaults,
// and releases the chip.
func (b *RealButton) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
