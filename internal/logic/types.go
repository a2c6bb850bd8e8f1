// Package logic contains the pure blink-detection pipeline: eye openness
// ratio, rolling smoothing and the open/closed state machine.
// This package has NO external dependencies (no camera, input devices, MQTT,
// OS, or time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the current eye state.
type State string

const (
	StateOpen   State = "OPEN"
	StateClosed State = "CLOSED"
)

// EventType represents a blink state machine transition.
type EventType string

const (
	// EventEyesClosed fires on every OPEN -> CLOSED transition.
	EventEyesClosed EventType = "EYES_CLOSED"
	// EventBlink fires when a closure lasted at least MinClose.
	EventBlink EventType = "BLINK"
	// EventShortClosure fires when a closure ended before MinClose.
	EventShortClosure EventType = "SHORT_CLOSURE"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	State     State
	// Duration is the closed interval; zero for EventEyesClosed.
	Duration time.Duration
	// Count is the blink count after this event was applied.
	Count int
	// Smoothed is the ratio that triggered the transition.
	Smoothed float64
}

// DetectorConfig holds the blink detector parameters.
type DetectorConfig struct {
	// Threshold is the smoothed ratio below which the eyes count as closed.
	Threshold float64
	// MinClose is the shortest closure counted as a blink. Zero disables the gate.
	MinClose time.Duration
}

// Default detector parameters.
const (
	DefaultThreshold = 0.25
	DefaultMinClose  = 100 * time.Millisecond
	DefaultWindow    = 5
)

// DefaultDetectorConfig returns the stock threshold and minimum closure.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Threshold: DefaultThreshold,
		MinClose:  DefaultMinClose,
	}
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Blinks   int
	Closures int
	Rejected int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
