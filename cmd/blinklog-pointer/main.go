// Command blinklog-pointer records blinks from a webcam alongside the mouse
// position and the held mouse button or key. Hold Ctrl+Shift+Q or press
// Ctrl+C in the console to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/app"
	"github.com/sweeney/blink-logger/internal/config"
	"github.com/sweeney/blink-logger/internal/input"
	"github.com/sweeney/blink-logger/internal/logging"
)

func main() {
	cfg, envFound := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	if !envFound {
		logger.Debug("no .env file found, using environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, input.VariantPointer, logger); err != nil {
		logger.Fatal("session failed", zap.Error(err))
	}
}
