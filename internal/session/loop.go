// Package session runs the per-frame capture loop: read a frame, update the
// blink detector from every visible face, sample the input device and append
// one record.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/camera"
	"github.com/sweeney/blink-logger/internal/face"
	"github.com/sweeney/blink-logger/internal/input"
	"github.com/sweeney/blink-logger/internal/logic"
	"github.com/sweeney/blink-logger/internal/mqtt"
	"github.com/sweeney/blink-logger/internal/record"
	"github.com/sweeney/blink-logger/internal/status"
)

// DefaultPace is the delay between iterations (about 20 per second).
const DefaultPace = 50 * time.Millisecond

// Shutdown reasons carried by the SHUTDOWN event.
const (
	ReasonCancelled = "CANCELLED"
	ReasonQuit      = "QUIT"
	ReasonError     = "ERROR"
)

// Options wires a Loop. Source, Analyzer, Sampler and Sink are required.
type Options struct {
	Source   camera.Source
	Analyzer face.Analyzer
	Sampler  input.Sampler
	Sink     record.Sink

	// Publisher receives detector and lifecycle events. Optional.
	Publisher mqtt.Publisher
	// MQTTStatus feeds the tracker's connection flag. Optional.
	MQTTStatus mqtt.ConnectionStatus
	// Tracker is updated every iteration. Optional.
	Tracker *status.Tracker
	// Quit ends the session cleanly when it fires. Optional.
	Quit QuitSignal

	Detector logic.DetectorConfig
	Window   int
	// Pace is the delay after each iteration; zero uses DefaultPace.
	Pace time.Duration
	// Heartbeat is the HEARTBEAT interval; zero disables it.
	Heartbeat time.Duration

	Logger *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Sleep defaults to a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Loop owns the smoothing and detector state for one session.
type Loop struct {
	opts     Options
	logger   *zap.Logger
	smoother *logic.Smoother
	detector *logic.Detector
}

// New creates a Loop. The detector clock starts on Run.
func New(opts Options) *Loop {
	if opts.Pace <= 0 {
		opts.Pace = DefaultPace
	}
	if opts.Window <= 0 {
		opts.Window = logic.DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Loop{
		opts:     opts,
		logger:   opts.Logger,
		smoother: logic.NewSmoother(opts.Window),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Count returns the blink count so far.
func (l *Loop) Count() int {
	if l.detector == nil {
		return 0
	}
	return l.detector.Count()
}

// Run iterates until the context is cancelled, the quit signal fires, or an
// iteration fails. Cancellation and quit return nil. The sink is closed on
// every path.
func (l *Loop) Run(ctx context.Context) (err error) {
	start := l.opts.Now()
	l.detector = logic.NewDetector(l.opts.Detector, start)

	l.publishSystem(mqtt.EventStartup, "", start)
	l.logger.Info("session started",
		zap.String("variant", string(l.opts.Sampler.Variant())),
		zap.Float64("threshold", l.opts.Detector.Threshold),
		zap.Duration("min_close", l.opts.Detector.MinClose),
		zap.Int("window", l.opts.Window),
		zap.Duration("pace", l.opts.Pace))

	reason := ReasonCancelled
	defer func() {
		if closeErr := l.opts.Sink.Close(); closeErr != nil {
			l.logger.Error("close log", zap.Error(closeErr))
			if err == nil {
				err = fmt.Errorf("close log: %w", closeErr)
			}
		}
		if err != nil {
			reason = ReasonError
		}
		l.publishSystem(mqtt.EventShutdown, reason, l.opts.Now())
		l.logger.Info("session ended",
			zap.String("reason", reason),
			zap.Int("blinks", l.Count()),
			zap.Error(err))
	}()

	for {
		now, err := l.step(ctx)
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return nil
		}
		if l.opts.Quit != nil && l.opts.Quit.QuitRequested() {
			reason = ReasonQuit
			return nil
		}

		if hb := l.detector.CheckHeartbeat(now, l.opts.Heartbeat); hb != nil {
			l.logger.Info("heartbeat",
				zap.Duration("uptime", hb.Uptime),
				zap.Int("blinks", hb.Counts.Blinks),
				zap.Int("closures", hb.Counts.Closures),
				zap.Int("rejected", hb.Counts.Rejected))
			l.publishSystem(mqtt.EventHeartbeat, "", hb.Timestamp)
		}

		if err := l.opts.Sleep(ctx, l.opts.Pace); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// step runs one iteration and returns its timestamp.
func (l *Loop) step(ctx context.Context) (time.Time, error) {
	frame, err := l.opts.Source.Read()
	if err != nil {
		return time.Time{}, fmt.Errorf("read frame: %w", err)
	}
	now := l.opts.Now()
	gray := camera.Grayscale(frame.Image)

	obs := l.observe(ctx, gray, now, frame.TraceID)

	sample, err := l.opts.Sampler.Sample()
	if err != nil {
		return now, fmt.Errorf("sample input: %w", err)
	}

	count := l.detector.Count()
	if err := l.opts.Sink.Write(record.New(now, sample, count)); err != nil {
		return now, fmt.Errorf("write record: %w", err)
	}

	if t := l.opts.Tracker; t != nil {
		t.Record(status.Frame{
			Time:        now,
			State:       l.detector.State(),
			Count:       count,
			Counts:      l.detector.EventCountsSnapshot(),
			FaceVisible: obs.faces > 0,
			Raw:         obs.raw,
			Smoothed:    obs.smoothed,
			Action:      sample.Action,
		})
		if l.opts.MQTTStatus != nil {
			t.SetMQTTConnected(l.opts.MQTTStatus.IsConnected())
		}
	}
	return now, nil
}

type observation struct {
	faces    int
	raw      float64
	smoothed float64
}

// observe feeds every usable face, in detection order, through the smoother
// and detector. Detector failures count as no face.
func (l *Loop) observe(ctx context.Context, gray *image.Gray, now time.Time, trace string) observation {
	var obs observation

	rects, err := l.opts.Analyzer.Detect(ctx, gray)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("face detection failed", zap.String("frame", trace), zap.Error(err))
		}
		return obs
	}

	for _, rect := range rects {
		lm, err := l.opts.Analyzer.Predict(ctx, gray, rect)
		if err != nil {
			l.logger.Warn("landmark prediction failed", zap.String("frame", trace), zap.Error(err))
			continue
		}
		left, right, err := lm.Eyes()
		if err != nil {
			l.logger.Debug("skipping face", zap.String("frame", trace), zap.Error(err))
			continue
		}
		raw, err := logic.FaceRatio(left, right)
		if err != nil {
			l.logger.Debug("skipping face", zap.String("frame", trace), zap.Error(err))
			continue
		}

		smoothed := l.smoother.Add(raw)
		for _, ev := range l.detector.Process(smoothed, now) {
			l.logger.Debug("blink event",
				zap.String("type", string(ev.Type)),
				zap.Int("count", ev.Count),
				zap.Duration("duration", ev.Duration))
			if l.opts.Publisher != nil {
				if err := l.opts.Publisher.Publish(ev); err != nil {
					l.logger.Warn("publish failed", zap.Error(err))
				}
			}
		}

		obs.faces++
		obs.raw = raw
		obs.smoothed = smoothed
	}
	return obs
}

func (l *Loop) publishSystem(event, reason string, at time.Time) {
	if l.opts.Publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{Timestamp: at, Event: event, Reason: reason}
	if t := l.opts.Tracker; t != nil {
		if l.opts.MQTTStatus != nil {
			t.SetMQTTConnected(l.opts.MQTTStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(t.Snapshot(), event, reason)
	}
	if err := l.opts.Publisher.PublishSystem(ev); err != nil {
		l.logger.Warn("failed to publish system event", zap.String("event", event), zap.Error(err))
	}
}
