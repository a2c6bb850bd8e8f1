// Package record formats and persists the per-iteration log line.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/blink-logger/internal/input"
)

// TimeLayout is the timestamp format of a log line, in local time.
const TimeLayout = "2006-01-02 15:04:05"

const sep = " - "

// Record is one line of the session log.
type Record struct {
	Time    time.Time
	Variant input.Variant
	// Cursor is used by pointer records.
	Cursor input.Cursor
	// LeftStick and RightStick are used by gamepad records.
	LeftStick  input.Stick
	RightStick input.Stick
	Action     string
	Blinks     int
}

// New builds a record from an input sample.
func New(t time.Time, s input.Sample, blinks int) Record {
	return Record{
		Time:       t,
		Variant:    s.Variant,
		Cursor:     s.Cursor,
		LeftStick:  s.LeftStick,
		RightStick: s.RightStick,
		Action:     s.Action,
		Blinks:     blinks,
	}
}

// Format renders r without a trailing newline.
//
//	pointer: 2024-05-01 14:03:22 - (640, 360) - W - 3
//	gamepad: 2024-05-01 14:03:22 - (0.12, -0.46) - (0.00, 1.00) - A - 3
func (r Record) Format() string {
	ts := r.Time.Format(TimeLayout)
	if r.Variant == input.VariantGamepad {
		return fmt.Sprintf("%s - (%.2f, %.2f) - (%.2f, %.2f) - %s - %d",
			ts, r.LeftStick.X, r.LeftStick.Y, r.RightStick.X, r.RightStick.Y, r.Action, r.Blinks)
	}
	return fmt.Sprintf("%s - (%d, %d) - %s - %d", ts, r.Cursor.X, r.Cursor.Y, r.Action, r.Blinks)
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return r.Format()
}

// ParseLine parses a formatted line. The variant is inferred from the field
// count: four fields for pointer, five for gamepad. Timestamps are read in loc.
func ParseLine(line string, loc *time.Location) (Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), sep)

	var r Record
	switch len(fields) {
	case 4:
		r.Variant = input.VariantPointer
	case 5:
		r.Variant = input.VariantGamepad
	default:
		return Record{}, fmt.Errorf("unexpected field count %d in %q", len(fields), line)
	}

	t, err := time.ParseInLocation(TimeLayout, fields[0], loc)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	r.Time = t

	last := len(fields) - 1
	r.Blinks, err = strconv.Atoi(fields[last])
	if err != nil {
		return Record{}, fmt.Errorf("invalid blink count: %w", err)
	}
	r.Action = fields[last-1]

	if r.Variant == input.VariantPointer {
		x, y, err := parsePair(fields[1])
		if err != nil {
			return Record{}, fmt.Errorf("invalid cursor: %w", err)
		}
		cx, errX := strconv.Atoi(x)
		cy, errY := strconv.Atoi(y)
		if errX != nil || errY != nil {
			return Record{}, fmt.Errorf("invalid cursor %q", fields[1])
		}
		r.Cursor = input.Cursor{X: cx, Y: cy}
		return r, nil
	}

	r.LeftStick, err = parseStick(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("invalid left stick: %w", err)
	}
	r.RightStick, err = parseStick(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("invalid right stick: %w", err)
	}
	return r, nil
}

func parsePair(s string) (string, string, error) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", "", fmt.Errorf("not a pair: %q", s)
	}
	a, b, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return "", "", fmt.Errorf("not a pair: %q", s)
	}
	return strings.TrimSpace(a), strings.TrimSpace(b), nil
}

func parseStick(s string) (input.Stick, error) {
	a, b, err := parsePair(s)
	if err != nil {
		return input.Stick{}, err
	}
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return input.Stick{}, err
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return input.Stick{}, err
	}
	return input.Stick{X: x, Y: y}, nil
}

// DefaultFileName returns the log name for a session started at t:
// HH-MM_DD-MM_log.txt, or HH-MM_DD-MM_controller_log.txt for gamepad.
func DefaultFileName(t time.Time, v input.Variant) string {
	prefix := t.Format("15-04_02-01")
	if v == input.VariantGamepad {
		return prefix + "_controller_log.txt"
	}
	return prefix + "_log.txt"
}
