package input

import (
	"errors"
	"testing"
)

func TestPointerSampler_Idle(t *testing.T) {
	d := NewFakeDesktop()
	d.Cursor = Cursor{X: 640, Y: 360}
	s := NewPointerSampler(d, nil)

	got, err := s.Sample()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Variant != VariantPointer {
		t.Errorf("variant = %q, want %q", got.Variant, VariantPointer)
	}
	if got.Cursor != (Cursor{X: 640, Y: 360}) {
		t.Errorf("cursor = %+v, want (640, 360)", got.Cursor)
	}
	if got.Action != ActionNone {
		t.Errorf("action = %q, want %q", got.Action, ActionNone)
	}
}

func TestPointerSampler_Priority(t *testing.T) {
	tests := []struct {
		name string
		held []uint16
		want string
	}{
		{"left click beats keys", []uint16{VKLButton, 0x57}, ActionLeftClick},
		{"left click beats right click", []uint16{VKLButton, VKRButton}, ActionLeftClick},
		{"right click beats keys", []uint16{VKRButton, VKSpace}, ActionRightClick},
		{"single key", []uint16{0x44}, "D"},
		{"first key in order wins", []uint16{0x34, 0x41, VKShift}, "A"},
		{"W before A", []uint16{0x41, 0x57}, "W"},
		{"modifier", []uint16{VKControl}, "Ctrl"},
		{"alt", []uint16{VKMenu}, "Alt"},
		{"escape", []uint16{VKEscape}, "Esc"},
		{"digit", []uint16{0x33}, "3"},
		{"untracked key", []uint16{0x5A}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewFakeDesktop()
			d.Press(tt.held...)
			got, err := NewPointerSampler(d, nil).Sample()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Action != tt.want {
				t.Errorf("action = %q, want %q", got.Action, tt.want)
			}
		})
	}
}

func TestPointerSampler_CustomKeys(t *testing.T) {
	d := NewFakeDesktop()
	d.Press(0x57, 0x46)
	s := NewPointerSampler(d, []Key{{0x46, "F"}})

	got, _ := s.Sample()
	if got.Action != "F" {
		t.Errorf("action = %q, want F", got.Action)
	}
}

func TestPointerSampler_CursorError(t *testing.T) {
	d := NewFakeDesktop()
	d.CursorError = errors.New("no display")

	if _, err := NewPointerSampler(d, nil).Sample(); err == nil {
		t.Fatal("expected error")
	}
}

func TestQuitKey(t *testing.T) {
	d := NewFakeDesktop()
	q := QuitKey{Desktop: d}

	if q.QuitRequested() {
		t.Error("quit before press")
	}

	d.Press(VKQ)
	if q.QuitRequested() {
		t.Error("bare Q reported quit")
	}
	d.Press(VKControl)
	if q.QuitRequested() {
		t.Error("Ctrl+Q reported quit")
	}
	d.Press(VKShift)
	if !q.QuitRequested() {
		t.Error("quit not reported while Ctrl+Shift+Q held")
	}

	d.ReleaseAll()
	if q.QuitRequested() {
		t.Error("quit reported after release")
	}
}

func TestQuitKey_CustomKeys(t *testing.T) {
	d := NewFakeDesktop()
	q := QuitKey{Desktop: d, Keys: []uint16{VKEscape}}

	d.Press(VKEscape)
	if !q.QuitRequested() {
		t.Error("custom chord not reported")
	}
}

func TestButtonSet(t *testing.T) {
	var s ButtonSet
	s = s.With(ButtonB).With(ButtonR3)

	if !s.Has(ButtonB) || !s.Has(ButtonR3) {
		t.Errorf("set %b missing held buttons", s)
	}
	if s.Has(ButtonA) {
		t.Errorf("set %b reports A held", s)
	}
}

func TestButton_String(t *testing.T) {
	want := []string{"A", "B", "X", "Y", "LB", "RB", "LT", "RT", "L3", "R3"}
	for i, b := range DefaultButtons {
		if b.String() != want[i] {
			t.Errorf("DefaultButtons[%d] = %q, want %q", i, b.String(), want[i])
		}
	}
	if Button(200).String() != "Unknown" {
		t.Errorf("out of range button = %q", Button(200).String())
	}
}

func TestGamepadSampler(t *testing.T) {
	tests := []struct {
		name string
		held ButtonSet
		want string
	}{
		{"idle", 0, ActionNone},
		{"single", ButtonSet(0).With(ButtonY), "Y"},
		{"first in scan order", ButtonSet(0).With(ButtonRT).With(ButtonX), "X"},
		{"A beats everything", ButtonSet(0).With(ButtonR3).With(ButtonA), "A"},
		{"trigger", ButtonSet(0).With(ButtonLT), "LT"},
		{"untracked start", ButtonSet(0).With(ButtonStart), ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad := NewFakePad([]PadState{{Held: tt.held}})
			got, err := NewGamepadSampler(pad, nil).Sample()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Action != tt.want {
				t.Errorf("action = %q, want %q", got.Action, tt.want)
			}
		})
	}
}

func TestGamepadSampler_Sticks(t *testing.T) {
	pad := NewFakePad([]PadState{{
		Left:  Stick{X: 0.12, Y: -0.46},
		Right: Stick{X: 1.3, Y: -2},
	}})
	s := NewGamepadSampler(pad, nil)

	got, err := s.Sample()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Variant != VariantGamepad {
		t.Errorf("variant = %q, want %q", got.Variant, VariantGamepad)
	}
	if got.LeftStick != (Stick{X: 0.12, Y: -0.46}) {
		t.Errorf("left = %+v", got.LeftStick)
	}
	if got.RightStick != (Stick{X: 1, Y: -1}) {
		t.Errorf("right = %+v, want clamped (1, -1)", got.RightStick)
	}
}

func TestGamepadSampler_Error(t *testing.T) {
	pad := NewFakePad(nil)
	pad.StateError = ErrNoGamepad

	_, err := NewGamepadSampler(pad, nil).Sample()
	if !errors.Is(err, ErrNoGamepad) {
		t.Errorf("err = %v, want ErrNoGamepad", err)
	}
}

func TestGamepadSampler_Close(t *testing.T) {
	pad := NewFakePad([]PadState{{}})
	s := NewGamepadSampler(pad, nil)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pad.Closed {
		t.Error("pad not closed")
	}
}

func TestFakePad_RepeatsLast(t *testing.T) {
	pad := NewFakePad([]PadState{
		{Held: ButtonSet(0).With(ButtonA)},
		{Held: ButtonSet(0).With(ButtonB)},
	})

	want := []Button{ButtonA, ButtonB, ButtonB}
	for i, b := range want {
		st, err := pad.State()
		if err != nil {
			t.Fatalf("state %d: %v", i, err)
		}
		if !st.Held.Has(b) {
			t.Errorf("state %d: %s not held", i, b)
		}
	}
}
