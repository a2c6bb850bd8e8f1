//go:build !windows && !linux

package input

// OpenPad returns ErrUnsupported on this platform.
func OpenPad(index int) (Pad, error) {
	return nil, ErrUnsupported
}
