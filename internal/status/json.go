package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Session       string     `json:"session"`
	Variant       string     `json:"variant"`
	State         string     `json:"state"`
	BlinkCount    int        `json:"blink_count"`
	FaceVisible   bool       `json:"face_visible"`
	Ratio         *RatioJSON `json:"ratio,omitempty"`
	LastAction    string     `json:"last_action,omitempty"`
	LastFrame     string     `json:"last_frame,omitempty"`
	Records       int        `json:"records"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// RatioJSON holds the last raw and smoothed eye ratio.
type RatioJSON struct {
	Raw      float64 `json:"raw"`
	Smoothed float64 `json:"smoothed"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Blinks   int `json:"blinks"`
	Closures int `json:"closures"`
	Rejected int `json:"rejected"`
}

// ConfigJSON is the JSON representation of session config.
type ConfigJSON struct {
	PaceMs      int64   `json:"pace_ms"`
	Threshold   float64 `json:"threshold"`
	MinCloseMs  int64   `json:"min_close_ms"`
	Window      int     `json:"window"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	LogPath     string  `json:"log_path"`
	Landmarks   string  `json:"landmarks"`
	Broker      string  `json:"broker,omitempty"`
	HTTPAddr    string  `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		Session:       snap.Session,
		Variant:       snap.Config.Variant,
		State:         state,
		BlinkCount:    snap.Count,
		FaceVisible:   snap.FaceVisible,
		LastAction:    snap.LastAction,
		Records:       snap.Records,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Blinks:   snap.Counts.Blinks,
			Closures: snap.Counts.Closures,
			Rejected: snap.Counts.Rejected,
		},
		Config: ConfigJSON{
			PaceMs:      snap.Config.PaceMs,
			Threshold:   snap.Config.Threshold,
			MinCloseMs:  snap.Config.MinCloseMs,
			Window:      snap.Config.Window,
			HeartbeatMs: snap.Config.HeartbeatMs,
			LogPath:     snap.Config.LogPath,
			Landmarks:   snap.Config.Landmarks,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if snap.HaveRatio {
		inner.Ratio = &RatioJSON{Raw: snap.Raw, Smoothed: snap.Smoothed}
	}
	if !snap.LastFrame.IsZero() {
		inner.LastFrame = snap.LastFrame.UTC().Format(time.RFC3339Nano)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
