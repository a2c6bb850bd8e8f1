//go:build windows

package input

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	xinput             = windows.NewLazySystemDLL("xinput1_4.dll")
	procXInputGetState = xinput.NewProc("XInputGetState")
)

const (
	xinputStart         = 0x0010
	xinputBack          = 0x0020
	xinputLeftThumb     = 0x0040
	xinputRightThumb    = 0x0080
	xinputLeftShoulder  = 0x0100
	xinputRightShoulder = 0x0200
	xinputA             = 0x1000
	xinputB             = 0x2000
	xinputX             = 0x4000
	xinputY             = 0x8000

	// XINPUT_GAMEPAD_TRIGGER_THRESHOLD
	xinputTriggerThreshold = 30
)

var xinputButtons = []struct {
	mask   uint16
	button Button
}{
	{xinputA, ButtonA},
	{xinputB, ButtonB},
	{xinputX, ButtonX},
	{xinputY, ButtonY},
	{xinputLeftShoulder, ButtonLB},
	{xinputRightShoulder, ButtonRB},
	{xinputLeftThumb, ButtonL3},
	{xinputRightThumb, ButtonR3},
	{xinputBack, ButtonBack},
	{xinputStart, ButtonStart},
}

type xinputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

type xinputState struct {
	PacketNumber uint32
	Gamepad      xinputGamepad
}

// XInputPad reads an XInput controller slot (0-3).
type XInputPad struct {
	index uint32
}

// OpenPad opens controller slot index. It returns ErrNoGamepad if the slot is
// empty.
func OpenPad(index int) (*XInputPad, error) {
	if err := xinput.Load(); err != nil {
		return nil, fmt.Errorf("failed to load xinput: %w", err)
	}
	p := &XInputPad{index: uint32(index)}
	if _, err := p.State(); err != nil {
		return nil, err
	}
	return p, nil
}

// State polls the controller. Stick Y axes grow downward.
func (p *XInputPad) State() (PadState, error) {
	var st xinputState
	ret, _, _ := procXInputGetState.Call(uintptr(p.index), uintptr(unsafe.Pointer(&st)))
	if errors.Is(windows.Errno(ret), windows.ERROR_DEVICE_NOT_CONNECTED) {
		return PadState{}, ErrNoGamepad
	}
	if ret != 0 {
		return PadState{}, fmt.Errorf("XInputGetState: %w", windows.Errno(ret))
	}

	g := st.Gamepad
	var held ButtonSet
	for _, b := range xinputButtons {
		if g.Buttons&b.mask != 0 {
			held = held.With(b.button)
		}
	}
	if g.LeftTrigger > xinputTriggerThreshold {
		held = held.With(ButtonLT)
	}
	if g.RightTrigger > xinputTriggerThreshold {
		held = held.With(ButtonRT)
	}

	return PadState{
		Left:  Stick{X: thumb(g.ThumbLX), Y: -thumb(g.ThumbLY)},
		Right: Stick{X: thumb(g.ThumbRX), Y: -thumb(g.ThumbRY)},
		Held:  held,
	}, nil
}

// Close is a no-op; XInput slots need no release.
func (p *XInputPad) Close() error {
	return nil
}

func thumb(v int16) float64 {
	return clamp(float64(v) / 32767)
}
