package input

// Virtual-key codes (Win32 numbering, also used by the fakes).
const (
	VKLButton uint16 = 0x01
	VKRButton uint16 = 0x02
	VKShift   uint16 = 0x10
	VKControl uint16 = 0x11
	VKMenu    uint16 = 0x12
	VKEscape  uint16 = 0x1B
	VKSpace   uint16 = 0x20
	VKQ       uint16 = 0x51
)

// Labels for mouse buttons.
const (
	ActionLeftClick  = "Left Click"
	ActionRightClick = "Right Click"
)

// Desktop exposes the pointer and keyboard state of the local session.
type Desktop interface {
	// CursorPos returns the current cursor position.
	CursorPos() (Cursor, error)

	// KeyDown reports whether the virtual key (or mouse button) is held.
	KeyDown(vk uint16) bool
}

// Key maps a virtual-key code to its log label.
type Key struct {
	Code  uint16
	Label string
}

// DefaultKeys is the tracked key set in priority order.
var DefaultKeys = []Key{
	{0x57, "W"},
	{0x41, "A"},
	{0x53, "S"},
	{0x44, "D"},
	{0x52, "R"},
	{0x43, "C"},
	{VKShift, "Shift"},
	{VKControl, "Ctrl"},
	{VKMenu, "Alt"},
	{VKSpace, "Space"},
	{VKEscape, "Esc"},
	{0x31, "1"},
	{0x32, "2"},
	{0x33, "3"},
	{0x34, "4"},
}

// PointerSampler records the cursor position and the dominant mouse/key action.
type PointerSampler struct {
	desktop Desktop
	keys    []Key
}

// NewPointerSampler creates a sampler over desktop. A nil keys slice uses
// DefaultKeys.
func NewPointerSampler(desktop Desktop, keys []Key) *PointerSampler {
	if keys == nil {
		keys = DefaultKeys
	}
	return &PointerSampler{desktop: desktop, keys: keys}
}

// Variant returns VariantPointer.
func (p *PointerSampler) Variant() Variant {
	return VariantPointer
}

// Sample reads the cursor and picks one action: left click, then right click,
// then the first held key in configured order, else ActionNone.
func (p *PointerSampler) Sample() (Sample, error) {
	cursor, err := p.desktop.CursorPos()
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Variant: VariantPointer,
		Cursor:  cursor,
		Action:  p.action(),
	}, nil
}

func (p *PointerSampler) action() string {
	if p.desktop.KeyDown(VKLButton) {
		return ActionLeftClick
	}
	if p.desktop.KeyDown(VKRButton) {
		return ActionRightClick
	}
	for _, k := range p.keys {
		if p.desktop.KeyDown(k.Code) {
			return k.Label
		}
	}
	return ActionNone
}

// Close is a no-op; the desktop is shared with the quit key.
func (p *PointerSampler) Close() error {
	return nil
}

// QuitChord is the key combination that ends a session. Every key must be
// held at once; a lone Q is an ordinary action key.
var QuitChord = []uint16{VKControl, VKShift, VKQ}

// QuitKey reports a quit request while its whole chord is held.
type QuitKey struct {
	Desktop Desktop
	// Keys defaults to QuitChord.
	Keys []uint16
}

// QuitRequested reports whether every chord key is down.
func (q QuitKey) QuitRequested() bool {
	keys := q.Keys
	if len(keys) == 0 {
		keys = QuitChord
	}
	for _, k := range keys {
		if !q.Desktop.KeyDown(k) {
			return false
		}
	}
	return true
}

// String names the trigger for logs.
func (q QuitKey) String() string {
	return "key"
}
