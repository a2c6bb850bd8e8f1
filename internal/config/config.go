// Package config loads session settings from an optional .env file and
// BLINK_* environment variables. The values become defaults for the
// command-line flags of each command.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/blink-logger/internal/logic"
)

// Config holds every setting of a capture session.
type Config struct {
	Threshold float64
	MinClose  time.Duration
	Window    int
	Pace      time.Duration
	Heartbeat time.Duration

	// LogPath is the session log; empty derives it from the start time.
	LogPath string

	CameraDevice string
	CameraWidth  int
	CameraHeight int

	LandmarkAddr    string
	LandmarkTimeout time.Duration

	// PadIndex selects the controller for the gamepad variant.
	PadIndex int

	// Broker is the MQTT broker URL; empty disables publishing.
	Broker string
	// HTTPAddr serves the status page; empty disables it.
	HTTPAddr string

	RedisAddr     string
	RedisPassword string
	RedisStream   string

	GPIOChip string
	// QuitPin is the BCM pin of the quit button; negative disables it.
	QuitPin int

	LogLevel    string
	Environment string
}

// IsDev reports whether development logging is wanted.
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// DetectorConfig returns the blink detector parameters.
func (c *Config) DetectorConfig() logic.DetectorConfig {
	return logic.DetectorConfig{Threshold: c.Threshold, MinClose: c.MinClose}
}

// Load reads .env (if present) and the environment. It reports whether a
// .env file was found.
func Load() (*Config, bool) {
	found := godotenv.Load() == nil

	cfg := &Config{
		Threshold:       getEnvFloat("BLINK_THRESHOLD", logic.DefaultThreshold),
		MinClose:        getEnvDuration("BLINK_MIN_CLOSE", logic.DefaultMinClose),
		Window:          getEnvInt("BLINK_WINDOW", logic.DefaultWindow),
		Pace:            getEnvDuration("BLINK_PACE", 50*time.Millisecond),
		Heartbeat:       getEnvDuration("BLINK_HEARTBEAT", 15*time.Minute),
		LogPath:         getEnv("BLINK_LOG_PATH", ""),
		CameraDevice:    getEnv("BLINK_CAMERA_DEVICE", ""),
		CameraWidth:     getEnvInt("BLINK_CAMERA_WIDTH", 640),
		CameraHeight:    getEnvInt("BLINK_CAMERA_HEIGHT", 480),
		LandmarkAddr:    getEnv("BLINK_LANDMARK_ADDR", "localhost:50051"),
		LandmarkTimeout: getEnvDuration("BLINK_LANDMARK_TIMEOUT", 500*time.Millisecond),
		PadIndex:        getEnvInt("BLINK_PAD_INDEX", 0),
		Broker:          getEnv("BLINK_MQTT_BROKER", ""),
		HTTPAddr:        getEnv("BLINK_HTTP_ADDR", ""),
		RedisAddr:       getEnv("BLINK_REDIS_ADDR", ""),
		RedisPassword:   getEnv("BLINK_REDIS_PASSWORD", ""),
		RedisStream:     getEnv("BLINK_REDIS_STREAM", "blinklogger:records"),
		GPIOChip:        getEnv("BLINK_GPIO_CHIP", "gpiochip0"),
		QuitPin:         getEnvInt("BLINK_QUIT_PIN", -1),
		LogLevel:        getEnv("BLINK_LOG_LEVEL", "info"),
		Environment:     getEnv("BLINK_ENV", "production"),
	}
	return cfg, found
}

// RegisterFlags binds capture flags to c, using the loaded values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "Eye ratio below which eyes count as closed")
	fs.DurationVar(&c.MinClose, "min-close", c.MinClose, "Shortest closure counted as a blink (0 to disable)")
	fs.IntVar(&c.Window, "window", c.Window, "Smoothing window in frames")
	fs.DurationVar(&c.Pace, "pace", c.Pace, "Delay between iterations")
	fs.DurationVar(&c.Heartbeat, "heartbeat", c.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "Session log path (empty derives HH-MM_DD-MM name)")
	fs.StringVar(&c.CameraDevice, "camera", c.CameraDevice, "Camera device (empty for default)")
	fs.IntVar(&c.CameraWidth, "width", c.CameraWidth, "Capture width")
	fs.IntVar(&c.CameraHeight, "height", c.CameraHeight, "Capture height")
	fs.StringVar(&c.LandmarkAddr, "landmarks", c.LandmarkAddr, "Landmark service address")
	fs.DurationVar(&c.LandmarkTimeout, "landmark-timeout", c.LandmarkTimeout, "Per-call landmark service timeout")
	fs.StringVar(&c.Broker, "broker", c.Broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "HTTP status address (empty to disable)")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Redis address for the record mirror (empty to disable)")
	fs.StringVar(&c.RedisStream, "redis-stream", c.RedisStream, "Redis stream key")
	fs.IntVar(&c.QuitPin, "quit-pin", c.QuitPin, "BCM pin of a quit button (-1 to disable)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
}

// Validate rejects settings the loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Threshold <= 0 || c.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("threshold %v out of range (0, 1)", c.Threshold))
	}
	if c.MinClose < 0 {
		errs = append(errs, fmt.Errorf("min-close %v is negative", c.MinClose))
	}
	if c.Window < 1 {
		errs = append(errs, fmt.Errorf("window %d must be at least 1", c.Window))
	}
	if c.Pace <= 0 {
		errs = append(errs, fmt.Errorf("pace %v must be positive", c.Pace))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat %v is negative", c.Heartbeat))
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		errs = append(errs, fmt.Errorf("camera size %dx%d invalid", c.CameraWidth, c.CameraHeight))
	}
	if c.LandmarkAddr == "" {
		errs = append(errs, errors.New("landmark service address is required"))
	}
	if c.LandmarkTimeout <= 0 {
		errs = append(errs, fmt.Errorf("landmark-timeout %v must be positive", c.LandmarkTimeout))
	}
	if c.PadIndex < 0 {
		errs = append(errs, fmt.Errorf("pad index %d is negative", c.PadIndex))
	}
	return errors.Join(errs...)
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
