// Package mqtt publishes blink telemetry to a broker, with an interface so the
// frame loop can be tested without one.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/blink-logger/internal/logic"
)

// TopicEvents carries BLINK, EYES_CLOSED and SHORT_CLOSURE events.
const TopicEvents = "blinklogger/events"

// TopicSystem carries STARTUP, HEARTBEAT and SHUTDOWN events.
const TopicSystem = "blinklogger/system"

// System event names.
const (
	EventStartup     = "STARTUP"
	EventHeartbeat   = "HEARTBEAT"
	EventShutdown    = "SHUTDOWN"
	EventReconnected = "RECONNECTED"
	EventOffline     = "OFFLINE"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a detector event. Failures are reported but must not stop
	// the caller.
	Publish(event logic.Event) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	// Reason is set for SHUTDOWN: CANCELLED, QUIT or ERROR.
	Reason string
	// RawPayload, if set, is sent as-is (a full status snapshot).
	RawPayload []byte
	Retained   bool
}

// Payload is the JSON body of a detector event.
type Payload struct {
	Blink BlinkPayload `json:"blink"`
}

// BlinkPayload contains the detector event details.
type BlinkPayload struct {
	Session    string  `json:"session,omitempty"`
	Timestamp  string  `json:"timestamp"`
	Event      string  `json:"event"`
	State      string  `json:"state"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Count      int     `json:"count"`
	Ratio      float64 `json:"ratio"`
}

// FormatPayload creates the JSON payload for a detector event.
func FormatPayload(event logic.Event, session string) ([]byte, error) {
	payload := Payload{
		Blink: BlinkPayload{
			Session:    session,
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
			Event:      string(event.Type),
			State:      string(event.State),
			DurationMS: event.Duration.Milliseconds(),
			Count:      event.Count,
			Ratio:      event.Smoothed,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the JSON body of a lifecycle event without a snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Session   string `json:"session,omitempty"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event. A set
// RawPayload is returned unchanged.
func FormatSystemPayload(event SystemEvent, session string) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Session:   session,
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
