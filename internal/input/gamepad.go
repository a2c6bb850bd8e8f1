package input

// Button is a logical gamepad button, independent of backend numbering.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLB
	ButtonRB
	ButtonLT
	ButtonRT
	ButtonL3
	ButtonR3
	ButtonBack
	ButtonStart
)

var buttonLabels = map[Button]string{
	ButtonA:     "A",
	ButtonB:     "B",
	ButtonX:     "X",
	ButtonY:     "Y",
	ButtonLB:    "LB",
	ButtonRB:    "RB",
	ButtonLT:    "LT",
	ButtonRT:    "RT",
	ButtonL3:    "L3",
	ButtonR3:    "R3",
	ButtonBack:  "Back",
	ButtonStart: "Start",
}

// String returns the log label of b.
func (b Button) String() string {
	if s, ok := buttonLabels[b]; ok {
		return s
	}
	return "Unknown"
}

// ButtonSet is a bitmask of held buttons.
type ButtonSet uint32

// With returns s with b held.
func (s ButtonSet) With(b Button) ButtonSet {
	return s | 1<<b
}

// Has reports whether b is held.
func (s ButtonSet) Has(b Button) bool {
	return s&(1<<b) != 0
}

// PadState is one poll of a controller.
type PadState struct {
	Left  Stick
	Right Stick
	Held  ButtonSet
}

// Pad reads a game controller.
type Pad interface {
	// State polls the controller.
	State() (PadState, error)

	// Close releases the device.
	Close() error
}

// DefaultButtons is the scan order for the gamepad action label.
var DefaultButtons = []Button{
	ButtonA, ButtonB, ButtonX, ButtonY,
	ButtonLB, ButtonRB, ButtonLT, ButtonRT,
	ButtonL3, ButtonR3,
}

// GamepadSampler records both stick positions and the first held button.
type GamepadSampler struct {
	pad     Pad
	buttons []Button
}

// NewGamepadSampler creates a sampler over pad. A nil buttons slice uses
// DefaultButtons.
func NewGamepadSampler(pad Pad, buttons []Button) *GamepadSampler {
	if buttons == nil {
		buttons = DefaultButtons
	}
	return &GamepadSampler{pad: pad, buttons: buttons}
}

// Variant returns VariantGamepad.
func (g *GamepadSampler) Variant() Variant {
	return VariantGamepad
}

// Sample polls the pad. Sticks are always recorded; the action is the first
// held button in scan order, else ActionNone.
func (g *GamepadSampler) Sample() (Sample, error) {
	st, err := g.pad.State()
	if err != nil {
		return Sample{}, err
	}

	action := ActionNone
	for _, b := range g.buttons {
		if st.Held.Has(b) {
			action = b.String()
			break
		}
	}

	return Sample{
		Variant:    VariantGamepad,
		LeftStick:  Stick{X: clamp(st.Left.X), Y: clamp(st.Left.Y)},
		RightStick: Stick{X: clamp(st.Right.X), Y: clamp(st.Right.Y)},
		Action:     action,
	}, nil
}

// Close releases the pad.
func (g *GamepadSampler) Close() error {
	return g.pad.Close()
}
