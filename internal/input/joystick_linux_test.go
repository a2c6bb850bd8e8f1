//go:build linux

package input

import (
	"encoding/binary"
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func jsEvent(typ uint8, number uint8, value int16) []byte {
	ev := make([]byte, jsEventSize)
	binary.NativeEndian.PutUint32(ev[0:4], 1234)
	binary.NativeEndian.PutUint16(ev[4:6], uint16(value))
	ev[6] = typ
	ev[7] = number
	return ev
}

// pipePad returns a JoystickPad reading from a nonblocking pipe and the write end.
func pipePad(t *testing.T) (*JoystickPad, int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })

	p := &JoystickPad{fd: fds[0], path: "pipe", mapping: XpadMap}
	p.axes[XpadMap.TriggerLeft] = -32767
	p.axes[XpadMap.TriggerRight] = -32767
	t.Cleanup(func() { p.Close() })
	return p, fds[1]
}

func write(t *testing.T, fd int, events ...[]byte) {
	t.Helper()
	for _, ev := range events {
		if _, err := unix.Write(fd, ev); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestJoystickPad_NoEvents(t *testing.T) {
	p, _ := pipePad(t)

	st, err := p.State()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Held != 0 {
		t.Errorf("held = %b, want none", st.Held)
	}
	if st.Left != (Stick{}) || st.Right != (Stick{}) {
		t.Errorf("sticks = %+v %+v, want centred", st.Left, st.Right)
	}
}

func TestJoystickPad_ButtonsAndAxes(t *testing.T) {
	p, w := pipePad(t)

	write(t, w,
		jsEvent(jsEventButton|jsEventInit, 0, 0),
		jsEvent(jsEventButton, 1, 1),
		jsEvent(jsEventButton, 9, 1),
		jsEvent(jsEventAxis, 0, 32767),
		jsEvent(jsEventAxis, 4, -32767),
		jsEvent(jsEventAxis, 5, 32767),
	)

	st, err := p.State()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range []Button{ButtonB, ButtonL3, ButtonRT} {
		if !st.Held.Has(b) {
			t.Errorf("%s not held", b)
		}
	}
	if st.Held.Has(ButtonA) || st.Held.Has(ButtonLT) {
		t.Errorf("unexpected held set %b", st.Held)
	}
	if st.Left.X != 1 {
		t.Errorf("left x = %v, want 1", st.Left.X)
	}
	if st.Right.Y != -1 {
		t.Errorf("right y = %v, want -1", st.Right.Y)
	}

	// Release persists across polls.
	write(t, w, jsEvent(jsEventButton, 1, 0))
	st, _ = p.State()
	if st.Held.Has(ButtonB) {
		t.Error("B still held after release")
	}
	if !st.Held.Has(ButtonL3) {
		t.Error("L3 released without event")
	}
}

func TestOpenJoystick_Missing(t *testing.T) {
	_, err := OpenJoystick("/dev/input/js-does-not-exist", XpadMap)
	if !errors.Is(err, ErrNoGamepad) {
		t.Errorf("err = %v, want ErrNoGamepad", err)
	}
}
