// Package status provides a thread-safe status tracker for a capture session.
// It is written by the frame loop and read by HTTP handlers and MQTT
// lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/blink-logger/internal/logic"
)

// Config contains session configuration for display.
type Config struct {
	Variant     string
	PaceMs      int64
	Threshold   float64
	MinCloseMs  int64
	Window      int
	HeartbeatMs int64
	LogPath     string
	Landmarks   string
	Broker      string
	HTTPAddr    string
}

// Frame is what the loop observed in one iteration.
type Frame struct {
	Time        time.Time
	State       logic.State
	Count       int
	Counts      logic.EventCounts
	FaceVisible bool
	// Raw and Smoothed are the last computed ratios; unchanged when no face
	// was visible.
	Raw      float64
	Smoothed float64
	Action   string
}

// Snapshot is a point-in-time view of session state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Session       string
	State         logic.State
	Count         int
	Counts        logic.EventCounts
	Raw           float64
	Smoothed      float64
	HaveRatio     bool
	FaceVisible   bool
	LastAction    string
	LastFrame     time.Time
	Records       int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the session started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable session state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given session id, start time and config.
func NewTracker(session string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Session:   session,
			State:     logic.StateOpen,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Record stores one iteration and counts it as a written record.
func (t *Tracker) Record(f Frame) {
	t.mu.Lock()
	t.snap.State = f.State
	t.snap.Count = f.Count
	t.snap.Counts = f.Counts
	t.snap.FaceVisible = f.FaceVisible
	if f.FaceVisible {
		t.snap.Raw = f.Raw
		t.snap.Smoothed = f.Smoothed
		t.snap.HaveRatio = true
	}
	t.snap.LastAction = f.Action
	t.snap.LastFrame = f.Time
	t.snap.Records++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the session state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
