package record

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweeney/blink-logger/internal/input"
)

// RedisConfig addresses the stream mirror.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	// MaxLen caps the stream approximately; 0 leaves it unbounded.
	MaxLen  int64
	Timeout time.Duration
}

// RedisSink mirrors records to a Redis stream with XADD.
type RedisSink struct {
	client  *redis.Client
	stream  string
	maxLen  int64
	timeout time.Duration
	session string
}

// NewRedisSink connects and pings the server.
func NewRedisSink(ctx context.Context, cfg RedisConfig, session string) (*RedisSink, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Addr, err)
	}

	return &RedisSink{
		client:  client,
		stream:  cfg.Stream,
		maxLen:  cfg.MaxLen,
		timeout: cfg.Timeout,
		session: session,
	}, nil
}

// Write appends r to the stream.
func (s *RedisSink) Write(r Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: recordFields(r, s.session),
	}).Err()
}

// Close closes the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

func recordFields(r Record, session string) map[string]any {
	fields := map[string]any{
		"session": session,
		"time":    r.Time.UTC().Format(time.RFC3339Nano),
		"variant": string(r.Variant),
		"action":  r.Action,
		"blinks":  strconv.Itoa(r.Blinks),
		"line":    r.Format(),
	}
	if r.Variant == input.VariantGamepad {
		fields["left"] = fmt.Sprintf("%.2f,%.2f", r.LeftStick.X, r.LeftStick.Y)
		fields["right"] = fmt.Sprintf("%.2f,%.2f", r.RightStick.X, r.RightStick.Y)
	} else {
		fields["cursor"] = fmt.Sprintf("%d,%d", r.Cursor.X, r.Cursor.Y)
	}
	return fields
}
