//go:build !windows

package input

// Win32Desktop is unavailable off Windows.
type Win32Desktop struct{}

// NewDesktop returns ErrUnsupported on this platform.
func NewDesktop() (*Win32Desktop, error) {
	return nil, ErrUnsupported
}

// CursorPos always fails.
func (d *Win32Desktop) CursorPos() (Cursor, error) {
	return Cursor{}, ErrUnsupported
}

// KeyDown always reports false.
func (d *Win32Desktop) KeyDown(vk uint16) bool {
	return false
}
