package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/saviobatista/telemetry-map/internal/capture"
	"github.com/saviobatista/telemetry-map/internal/config"
	"github.com/saviobatista/telemetry-map/internal/logging"
	"github.com/saviobatista/telemetry-map/internal/nats"
	"github.com/saviobatista/telemetry-map/internal/parser"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// NATSClient interface for testability
type NATSClient interface {
	PublishTelemetry(v *types.TelemetryValue) error
	Close()
}

// counters for the shutdown summary
type counters struct {
	lines     atomic.Uint64
	invalid   atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
}

// forward parses every captured line and publishes the value until lines is closed or ctx
// is done. Bad lines and publish failures are logged and skipped.
func forward(ctx context.Context, lines <-chan capture.Line, client NATSClient, c *counters) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			c.lines.Add(1)

			v, err := parser.ParseLine(line.Text, line.Timestamp)
			if err != nil {
				c.invalid.Add(1)
				slog.Debug("Skipping line", "source", line.Source, "error", err)
				continue
			}
			v.Source = line.Source

			if err := client.PublishTelemetry(v); err != nil {
				c.failed.Add(1)
				slog.Warn("Failed to publish value", "source", line.Source, "item", v.Item, "error", err)
				continue
			}
			c.published.Add(1)
		}
	}
}

func main() {
	cfg, err := config.LoadIngestor()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Setup("ingestor", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	client, err := nats.New(cfg.NATSURL)
	if err != nil {
		logger.Error("Failed to create NATS client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capt := capture.New(cfg.Sources, capture.WithLogger(logger))
	if err := capt.Start(); err != nil {
		logger.Error("Failed to start capture", "error", err)
		os.Exit(1)
	}

	var c counters
	done := make(chan struct{})
	go func() {
		forward(ctx, capt.Lines(), client, &c)
		close(done)
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	capt.Stop()
	<-done

	logger.Info("Ingest summary",
		"lines", c.lines.Load(),
		"invalid", c.invalid.Load(),
		"published", c.published.Load(),
		"failed", c.failed.Load())
}
