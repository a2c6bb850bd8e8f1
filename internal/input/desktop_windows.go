//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procGetKeyState  = user32.NewProc("GetKeyState")
	procGetCursorPos = user32.NewProc("GetCursorPos")
)

type point struct {
	X int32
	Y int32
}

// Win32Desktop reads the cursor and key state through user32.
type Win32Desktop struct{}

// NewDesktop returns the Windows desktop backend.
func NewDesktop() (*Win32Desktop, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("failed to load user32: %w", err)
	}
	return &Win32Desktop{}, nil
}

// CursorPos returns the cursor position in screen coordinates.
func (d *Win32Desktop) CursorPos() (Cursor, error) {
	var p point
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if ret == 0 {
		return Cursor{}, fmt.Errorf("GetCursorPos: %w", err)
	}
	return Cursor{X: int(p.X), Y: int(p.Y)}, nil
}

// KeyDown reports whether vk is held. GetKeyState sets the high bit, making
// the SHORT negative, while the key is down.
func (d *Win32Desktop) KeyDown(vk uint16) bool {
	ret, _, _ := procGetKeyState.Call(uintptr(vk))
	return int16(ret) < 0
}
