//go:build linux

package input

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Linux joystick API (linux/joystick.h).
const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80
	jsEventSize   = 8
	jsMaxAxes     = 16
	jsMaxButtons  = 32
)

// JoystickMap assigns joystick API axis and button numbers to logical controls.
type JoystickMap struct {
	LeftX, LeftY   int
	RightX, RightY int
	// TriggerLeft and TriggerRight are axes resting at -32767.
	TriggerLeft, TriggerRight int
	Buttons                   map[Button]int
}

// XpadMap is the layout reported by the xpad driver for Xbox-style pads.
var XpadMap = JoystickMap{
	LeftX: 0, LeftY: 1,
	RightX: 3, RightY: 4,
	TriggerLeft: 2, TriggerRight: 5,
	Buttons: map[Button]int{
		ButtonA:     0,
		ButtonB:     1,
		ButtonX:     2,
		ButtonY:     3,
		ButtonLB:    4,
		ButtonRB:    5,
		ButtonBack:  6,
		ButtonStart: 7,
		ButtonL3:    9,
		ButtonR3:    10,
	},
}

// JoystickPad reads /dev/input/jsN without blocking.
type JoystickPad struct {
	fd      int
	path    string
	mapping JoystickMap
	axes    [jsMaxAxes]int16
	buttons [jsMaxButtons]bool
}

// OpenPad opens /dev/input/js<index> with the xpad layout.
func OpenPad(index int) (*JoystickPad, error) {
	return OpenJoystick(fmt.Sprintf("/dev/input/js%d", index), XpadMap)
}

// OpenJoystick opens the joystick device at path.
func OpenJoystick(path string, mapping JoystickMap) (*JoystickPad, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENODEV) {
		return nil, fmt.Errorf("%w: %s", ErrNoGamepad, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	p := &JoystickPad{fd: fd, path: path, mapping: mapping}
	p.axes[mapping.TriggerLeft] = -32767
	p.axes[mapping.TriggerRight] = -32767
	return p, nil
}

// State drains pending events and returns the resulting controller state.
func (p *JoystickPad) State() (PadState, error) {
	if err := p.drain(); err != nil {
		return PadState{}, err
	}

	var held ButtonSet
	for b, n := range p.mapping.Buttons {
		if n < jsMaxButtons && p.buttons[n] {
			held = held.With(b)
		}
	}
	if trigger(p.axes[p.mapping.TriggerLeft]) {
		held = held.With(ButtonLT)
	}
	if trigger(p.axes[p.mapping.TriggerRight]) {
		held = held.With(ButtonRT)
	}

	return PadState{
		Left:  Stick{X: axis(p.axes[p.mapping.LeftX]), Y: axis(p.axes[p.mapping.LeftY])},
		Right: Stick{X: axis(p.axes[p.mapping.RightX]), Y: axis(p.axes[p.mapping.RightY])},
		Held:  held,
	}, nil
}

func (p *JoystickPad) drain() error {
	var buf [jsEventSize * 32]byte
	for {
		n, err := unix.Read(p.fd, buf[:])
		if errors.Is(err, unix.EAGAIN) {
			return nil
		}
		if errors.Is(err, unix.ENODEV) {
			return fmt.Errorf("%w: %s disconnected", ErrNoGamepad, p.path)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p.path, err)
		}
		if n == 0 {
			return nil
		}
		for off := 0; off+jsEventSize <= n; off += jsEventSize {
			p.apply(buf[off : off+jsEventSize])
		}
	}
}

func (p *JoystickPad) apply(ev []byte) {
	value := int16(binary.NativeEndian.Uint16(ev[4:6]))
	typ := ev[6] &^ jsEventInit
	number := int(ev[7])

	switch typ {
	case jsEventButton:
		if number < jsMaxButtons {
			p.buttons[number] = value != 0
		}
	case jsEventAxis:
		if number < jsMaxAxes {
			p.axes[number] = value
		}
	}
}

// Close releases the device.
func (p *JoystickPad) Close() error {
	return unix.Close(p.fd)
}

func axis(v int16) float64 {
	return clamp(float64(v) / 32767)
}

// trigger treats a trigger axis as held past roughly 12% travel.
func trigger(v int16) bool {
	return int(v) > -32767+8000
}
