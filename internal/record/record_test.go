package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/input"
)

var ts = time.Date(2024, 5, 1, 14, 3, 22, 0, time.UTC)

func TestFormat_Pointer(t *testing.T) {
	r := Record{
		Time:    ts,
		Variant: input.VariantPointer,
		Cursor:  input.Cursor{X: 640, Y: 360},
		Action:  "Left Click",
		Blinks:  7,
	}

	want := "2024-05-01 14:03:22 - (640, 360) - Left Click - 7"
	if got := r.Format(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormat_Gamepad(t *testing.T) {
	r := Record{
		Time:       ts,
		Variant:    input.VariantGamepad,
		LeftStick:  input.Stick{X: 0.123, Y: -0.456},
		RightStick: input.Stick{X: 0.0, Y: 1.0},
		Action:     "A",
		Blinks:     3,
	}

	want := "2024-05-01 14:03:22 - (0.12, -0.46) - (0.00, 1.00) - A - 3"
	if got := r.Format(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNew(t *testing.T) {
	s := input.Sample{
		Variant: input.VariantPointer,
		Cursor:  input.Cursor{X: 1, Y: 2},
		Action:  "W",
	}
	r := New(ts, s, 4)

	if r.Variant != input.VariantPointer || r.Cursor != s.Cursor || r.Action != "W" || r.Blinks != 4 {
		t.Errorf("unexpected record %+v", r)
	}
	if !r.Time.Equal(ts) {
		t.Errorf("time = %v, want %v", r.Time, ts)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "pointer",
			line: "2024-05-01 14:03:22 - (640, 360) - W - 3",
			want: Record{Time: ts, Variant: input.VariantPointer, Cursor: input.Cursor{X: 640, Y: 360}, Action: "W", Blinks: 3},
		},
		{
			name: "pointer negative cursor",
			line: "2024-05-01 14:03:22 - (-1920, 5) - Right Click - 0\n",
			want: Record{Time: ts, Variant: input.VariantPointer, Cursor: input.Cursor{X: -1920, Y: 5}, Action: "Right Click", Blinks: 0},
		},
		{
			name: "gamepad",
			line: "2024-05-01 14:03:22 - (0.12, -0.46) - (0.00, 1.00) - A - 3",
			want: Record{Time: ts, Variant: input.VariantGamepad, LeftStick: input.Stick{X: 0.12, Y: -0.46}, RightStick: input.Stick{X: 0, Y: 1}, Action: "A", Blinks: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Time.Equal(tt.want.Time) {
				t.Errorf("time = %v, want %v", got.Time, tt.want.Time)
			}
			got.Time = tt.want.Time
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_Invalid(t *testing.T) {
	lines := []string{
		"",
		"2024-05-01 14:03:22 - W - 3",
		"yesterday - (1, 2) - W - 3",
		"2024-05-01 14:03:22 - (1, 2) - W - many",
		"2024-05-01 14:03:22 - 1, 2 - W - 3",
		"2024-05-01 14:03:22 - (a, 2) - W - 3",
		"2024-05-01 14:03:22 - (0.1, x) - (0, 0) - A - 3",
	}
	for _, line := range lines {
		if _, err := ParseLine(line, time.UTC); err == nil {
			t.Errorf("ParseLine(%q) succeeded, want error", line)
		}
	}
}

func TestParseLine_RoundTripsFormat(t *testing.T) {
	r := Record{Time: ts, Variant: input.VariantGamepad, LeftStick: input.Stick{X: -1, Y: 0.5}, Action: "RT", Blinks: 12}
	got, err := ParseLine(r.Format(), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format() != r.Format() {
		t.Errorf("got %q, want %q", got.Format(), r.Format())
	}
}

func TestDefaultFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 5, 0, 0, time.UTC)

	if got := DefaultFileName(at, input.VariantPointer); got != "08-05_09-03_log.txt" {
		t.Errorf("pointer = %q", got)
	}
	if got := DefaultFileName(at, input.VariantGamepad); got != "08-05_09-03_controller_log.txt" {
		t.Errorf("gamepad = %q", got)
	}
}

func TestFileSink_AppendsAndFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_log.txt")
	if err := os.WriteFile(path, []byte("existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r := Record{Time: ts, Variant: input.VariantPointer, Action: "None"}
	if err := s.Write(r); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Visible before Close.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "existing\n" + r.Format() + "\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if s.Path() != path {
		t.Errorf("path = %q", s.Path())
	}
}

func TestOpenFile_BadDir(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing", "log.txt"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMemorySink(t *testing.T) {
	m := NewMemorySink()
	m.Write(Record{Blinks: 1})
	m.Write(Record{Blinks: 2})

	got := m.Records()
	if len(got) != 2 || got[1].Blinks != 2 {
		t.Errorf("records = %+v", got)
	}

	m.WriteError = errors.New("disk full")
	if err := m.Write(Record{}); err == nil {
		t.Error("expected write error")
	}
	m.Close()
	if !m.Closed {
		t.Error("not closed")
	}
}

func TestTee(t *testing.T) {
	primary := NewMemorySink()
	good := NewMemorySink()
	bad := NewMemorySink()
	bad.WriteError = errors.New("connection refused")

	tee := NewTee(primary, zap.NewNop(), bad, nil, good)
	if err := tee.Write(Record{Blinks: 5}); err != nil {
		t.Fatalf("mirror failure leaked: %v", err)
	}
	if len(primary.Records()) != 1 || len(good.Records()) != 1 {
		t.Errorf("primary=%d good=%d, want 1 each", len(primary.Records()), len(good.Records()))
	}

	if err := tee.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !primary.Closed || !good.Closed || !bad.Closed {
		t.Error("not every sink closed")
	}
}

func TestTee_PrimaryFailure(t *testing.T) {
	primary := NewMemorySink()
	primary.WriteError = errors.New("disk full")
	mirror := NewMemorySink()

	tee := NewTee(primary, zap.NewNop(), mirror)
	if err := tee.Write(Record{}); err == nil {
		t.Fatal("expected primary error")
	}
	if len(mirror.Records()) != 0 {
		t.Error("mirror written after primary failure")
	}
}

// stallSink blocks every Write until release is closed.
type stallSink struct {
	*MemorySink
	started chan struct{}
	release chan struct{}
}

func newStallSink() *stallSink {
	return &stallSink{
		MemorySink: NewMemorySink(),
		started:    make(chan struct{}, 16),
		release:    make(chan struct{}),
	}
}

func (s *stallSink) Write(r Record) error {
	s.started <- struct{}{}
	<-s.release
	return s.MemorySink.Write(r)
}

func TestAsync_DoesNotBlockOnStalledSink(t *testing.T) {
	inner := newStallSink()
	a := NewAsync(inner, 1, zap.NewNop())

	a.Write(Record{Blinks: 1})
	<-inner.started // writer is now stuck on record 1

	done := make(chan struct{})
	go func() {
		a.Write(Record{Blinks: 2}) // queued
		a.Write(Record{Blinks: 3}) // dropped
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Write blocked on a stalled sink")
	}

	if got := a.Dropped(); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}

	close(inner.release)
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	recs := inner.Records()
	if len(recs) != 2 || recs[0].Blinks != 1 || recs[1].Blinks != 2 {
		t.Errorf("got %v, want blinks 1 and 2", recs)
	}
	if !inner.Closed {
		t.Error("inner sink not closed")
	}
}

func TestAsync_LogsWriteErrors(t *testing.T) {
	inner := NewMemorySink()
	inner.WriteError = errors.New("timeout")
	a := NewAsync(inner, 0, zap.NewNop())

	if err := a.Write(Record{}); err != nil {
		t.Fatalf("write error leaked: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestRecordFields(t *testing.T) {
	r := Record{Time: ts, Variant: input.VariantGamepad, LeftStick: input.Stick{X: 0.12, Y: -0.46}, Action: "A", Blinks: 3}
	f := recordFields(r, "abc")

	checks := map[string]string{
		"session": "abc",
		"variant": "gamepad",
		"action":  "A",
		"blinks":  "3",
		"left":    "0.12,-0.46",
		"right":   "0.00,0.00",
		"time":    "2024-05-01T14:03:22Z",
	}
	for k, want := range checks {
		if f[k] != want {
			t.Errorf("%s = %v, want %q", k, f[k], want)
		}
	}
	if _, ok := f["cursor"]; ok {
		t.Error("gamepad record carries cursor")
	}
	if !strings.HasSuffix(f["line"].(string), "- A - 3") {
		t.Errorf("line = %v", f["line"])
	}

	p := recordFields(Record{Time: ts, Variant: input.VariantPointer, Cursor: input.Cursor{X: 3, Y: 4}}, "abc")
	if p["cursor"] != "3,4" {
		t.Errorf("cursor = %v", p["cursor"])
	}
}
