package logic

import "time"

// Detector turns the smoothed ratio stream into discrete blink events using
// a threshold with an inert boundary and a minimum closure duration.
type Detector struct {
	cfg           DetectorConfig
	state         State
	closedSince   time.Time
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewDetector creates a detector in the OPEN state.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(cfg DetectorConfig, startTime time.Time) *Detector {
	return &Detector{
		cfg:           cfg,
		state:         StateOpen,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process feeds one smoothed ratio observed at now and returns the events
// caused by it (zero or one). A ratio exactly equal to the threshold never
// causes a transition.
//
// Frames without a face must not be passed in: the state is held across them.
func (d *Detector) Process(smoothed float64, now time.Time) []Event {
	switch {
	case d.state == StateOpen && smoothed < d.cfg.Threshold:
		d.state = StateClosed
		d.closedSince = now
		d.eventCounts.Closures++
		return []Event{{
			Timestamp: now,
			Type:      EventEyesClosed,
			State:     StateClosed,
			Count:     d.eventCounts.Blinks,
			Smoothed:  smoothed,
		}}

	case d.state == StateClosed && smoothed > d.cfg.Threshold:
		duration := now.Sub(d.closedSince)
		d.state = StateOpen
		d.closedSince = time.Time{}

		event := Event{
			Timestamp: now,
			State:     StateOpen,
			Duration:  duration,
			Smoothed:  smoothed,
		}
		if d.cfg.MinClose <= 0 || duration >= d.cfg.MinClose {
			d.eventCounts.Blinks++
			event.Type = EventBlink
		} else {
			d.eventCounts.Rejected++
			event.Type = EventShortClosure
		}
		event.Count = d.eventCounts.Blinks
		return []Event{event}
	}

	return nil
}

// State returns the current eye state.
func (d *Detector) State() State {
	return d.state
}

// ClosedSince returns when the current closure began. ok is false while OPEN.
func (d *Detector) ClosedSince() (t time.Time, ok bool) {
	if d.state != StateClosed {
		return time.Time{}, false
	}
	return d.closedSince, true
}

// Count returns the number of blinks counted since startup.
func (d *Detector) Count() int {
	return d.eventCounts.Blinks
}

// EventCountsSnapshot returns a copy of all event counters.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// Config returns the detector parameters.
func (d *Detector) Config() DetectorConfig {
	return d.cfg
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.eventCounts,
	}
}
