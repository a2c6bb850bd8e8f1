package input

import "errors"

// FakeDesktop is a test double with settable cursor and held keys.
type FakeDesktop struct {
	Cursor Cursor
	// Held contains the virtual keys currently down.
	Held map[uint16]bool
	// CursorError, if set, will be returned by CursorPos.
	CursorError error
}

// NewFakeDesktop creates a FakeDesktop with nothing held.
func NewFakeDesktop() *FakeDesktop {
	return &FakeDesktop{Held: make(map[uint16]bool)}
}

// Press marks the given keys as held.
func (f *FakeDesktop) Press(codes ...uint16) {
	for _, c := range codes {
		f.Held[c] = true
	}
}

// ReleaseAll clears every held key.
func (f *FakeDesktop) ReleaseAll() {
	f.Held = make(map[uint16]bool)
}

// CursorPos returns the scripted cursor.
func (f *FakeDesktop) CursorPos() (Cursor, error) {
	if f.CursorError != nil {
		return Cursor{}, f.CursorError
	}
	return f.Cursor, nil
}

// KeyDown reports whether vk was pressed.
func (f *FakeDesktop) KeyDown(vk uint16) bool {
	return f.Held[vk]
}

// FakePad is a test double that returns scripted controller states.
type FakePad struct {
	// States contains scripted states. Each call to State consumes the next
	// one; once exhausted the last state repeats.
	States []PadState

	index int

	// StateError, if set, will be returned by State().
	StateError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePad creates a FakePad with the given states.
func NewFakePad(states []PadState) *FakePad {
	return &FakePad{States: states}
}

// State returns the next scripted state.
func (f *FakePad) State() (PadState, error) {
	if f.StateError != nil {
		return PadState{}, f.StateError
	}
	if len(f.States) == 0 {
		return PadState{}, errors.New("no states configured")
	}

	st := f.States[f.index]
	if f.index < len(f.States)-1 {
		f.index++
	}
	return st, nil
}

// Close marks the pad as closed.
func (f *FakePad) Close() error {
	f.Closed = true
	return nil
}
