// Package app wires a capture session from configuration: camera, landmark
// service, input device, session log and the optional MQTT, Redis, HTTP and
// GPIO extras.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/camera"
	"github.com/sweeney/blink-logger/internal/config"
	"github.com/sweeney/blink-logger/internal/face"
	"github.com/sweeney/blink-logger/internal/gpio"
	"github.com/sweeney/blink-logger/internal/input"
	"github.com/sweeney/blink-logger/internal/mqtt"
	"github.com/sweeney/blink-logger/internal/record"
	"github.com/sweeney/blink-logger/internal/session"
	"github.com/sweeney/blink-logger/internal/status"
	"github.com/sweeney/blink-logger/internal/web"
)

// Devices opens the hardware a session needs. Tests replace it with fakes.
type Devices struct {
	OpenCamera   func(cfg camera.Config, logger *zap.Logger) (camera.Source, error)
	OpenAnalyzer func(addr string, timeout time.Duration) (face.Analyzer, error)
	// OpenSampler returns the input sampler and, where the device has one,
	// a quit key.
	OpenSampler func(variant input.Variant, padIndex int) (input.Sampler, session.QuitSignal, error)
	// OpenButton opens the GPIO quit button.
	OpenButton func(chip string, pin int) (gpio.Button, error)

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// RealDevices returns the production device openers.
func RealDevices() Devices {
	return Devices{
		OpenCamera: func(cfg camera.Config, logger *zap.Logger) (camera.Source, error) {
			src, err := camera.NewGstSource(cfg, logger)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		OpenAnalyzer: func(addr string, timeout time.Duration) (face.Analyzer, error) {
			c, err := face.NewGRPCClient(addr, timeout)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		OpenSampler: openSampler,
		OpenButton: func(chip string, pin int) (gpio.Button, error) {
			b, err := gpio.NewRealButton(chip, pin)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		Now: time.Now,
	}
}

func openSampler(variant input.Variant, padIndex int) (input.Sampler, session.QuitSignal, error) {
	switch variant {
	case input.VariantPointer:
		desktop, err := input.NewDesktop()
		if err != nil {
			return nil, nil, err
		}
		return input.NewPointerSampler(desktop, nil), input.QuitKey{Desktop: desktop}, nil
	case input.VariantGamepad:
		pad, err := input.OpenPad(padIndex)
		if err != nil {
			return nil, nil, err
		}
		return input.NewGamepadSampler(pad, nil), quitChord(input.NewDesktop()), nil
	default:
		return nil, nil, fmt.Errorf("unknown input variant %q", variant)
	}
}

// quitChord returns the keyboard quit trigger, or nil where the desktop
// cannot be read.
func quitChord(desktop input.Desktop, err error) session.QuitSignal {
	if err != nil {
		return nil
	}
	return input.QuitKey{Desktop: desktop}
}

// Run captures one session with the real devices until ctx is cancelled, a
// quit trigger fires or an iteration fails.
func Run(ctx context.Context, cfg *config.Config, variant input.Variant, logger *zap.Logger) error {
	return RunWith(ctx, cfg, variant, logger, RealDevices())
}

// RunWith is Run with injectable devices.
func RunWith(ctx context.Context, cfg *config.Config, variant input.Variant, logger *zap.Logger, dev Devices) error {
	if dev.Now == nil {
		dev.Now = time.Now
	}
	id := uuid.NewString()
	logger = logger.With(zap.String("session", id))
	start := dev.Now()

	sampler, keyQuit, err := dev.OpenSampler(variant, cfg.PadIndex)
	if err != nil {
		return fmt.Errorf("open %s input: %w", variant, err)
	}
	defer sampler.Close()

	src, err := dev.OpenCamera(camera.Config{
		Device: cfg.CameraDevice,
		Width:  cfg.CameraWidth,
		Height: cfg.CameraHeight,
	}, logger)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer src.Close()

	analyzer, err := dev.OpenAnalyzer(cfg.LandmarkAddr, cfg.LandmarkTimeout)
	if err != nil {
		return fmt.Errorf("open landmark service: %w", err)
	}
	defer analyzer.Close()

	quit := session.AnyQuit{keyQuit}
	if cfg.QuitPin >= 0 {
		button, err := dev.OpenButton(cfg.GPIOChip, cfg.QuitPin)
		if err != nil {
			return fmt.Errorf("open quit button: %w", err)
		}
		defer button.Close()
		quit = append(quit, gpio.Trigger{Button: button, Logger: logger})
	}

	logPath := LogPath(cfg, variant, start)
	sink, err := openSink(ctx, cfg, logPath, id, logger)
	if err != nil {
		return err
	}
	logger.Info("writing session log", zap.String("path", logPath))

	tracker := status.NewTracker(id, start, StatusConfig(cfg, variant, logPath))

	opts := session.Options{
		Source:    src,
		Analyzer:  analyzer,
		Sampler:   sampler,
		Sink:      sink,
		Tracker:   tracker,
		Quit:      quit,
		Detector:  cfg.DetectorConfig(),
		Window:    cfg.Window,
		Pace:      cfg.Pace,
		Heartbeat: cfg.Heartbeat,
		Logger:    logger,
		Now:       dev.Now,
		Sleep:     dev.Sleep,
	}

	if cfg.Broker != "" {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:  cfg.Broker,
			Session: id,
			Logger:  logger,
		})
		if err != nil {
			sink.Close()
			return fmt.Errorf("mqtt: %w", err)
		}
		defer pub.Close()
		opts.Publisher = pub
		opts.MQTTStatus = pub
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()
		logger.Info("http status server listening", zap.String("addr", cfg.HTTPAddr))
	}

	return session.New(opts).Run(ctx)
}

// LogPath returns the configured log path, or the default name derived from
// the session start time.
func LogPath(cfg *config.Config, variant input.Variant, start time.Time) string {
	if cfg.LogPath != "" {
		return cfg.LogPath
	}
	return record.DefaultFileName(start, variant)
}

// StatusConfig describes cfg for the status page.
func StatusConfig(cfg *config.Config, variant input.Variant, logPath string) status.Config {
	return status.Config{
		Variant:     string(variant),
		PaceMs:      cfg.Pace.Milliseconds(),
		Threshold:   cfg.Threshold,
		MinCloseMs:  cfg.MinClose.Milliseconds(),
		Window:      cfg.Window,
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		LogPath:     logPath,
		Landmarks:   cfg.LandmarkAddr,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	}
}

func openSink(ctx context.Context, cfg *config.Config, path, id string, logger *zap.Logger) (record.Sink, error) {
	file, err := record.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	if cfg.RedisAddr == "" {
		return file, nil
	}

	mirror, err := record.NewRedisSink(ctx, record.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Stream:   cfg.RedisStream,
	}, id)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("redis mirror: %w", err)
	}
	return record.NewTee(file, logger, record.NewAsync(mirror, 0, logger)), nil
}
