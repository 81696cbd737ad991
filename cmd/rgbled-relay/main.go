// Command rgbled-relay forwards device telemetry to the home automation
// backend.
//
// Telemetry messages exported by the hub are read from stdin, one JSON
// document per line. When the strip switches on or off, the newest device of
// the configured type is updated through the backend REST API. Messages that
// arrive within the debounce window of the last forwarded one are dropped.
//
// Usage:
//
//	rgbled-relay [flags] < messages.jsonl
//
// Flags:
//
//	-config string      Configuration file path
//	-backend string     Backend base URL (overrides the configuration)
//	-log-level string   Log level: debug, info, warn, error (default "info")
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rgbled/rgbled-go/pkg/config"
	"github.com/rgbled/rgbled-go/pkg/relay"
)

// maxMessageSize bounds one input line.
const maxMessageSize = 1 << 20

var (
	configPath string
	backendURL string
	logLevel   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.StringVar(&backendURL, "backend", "", "Backend base URL (overrides the configuration)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default \"info\")")
}

func main() {
	flag.Parse()
	if err := run(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "rgbled-relay: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backendURL != "" {
		cfg.Relay.BackendURL = backendURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.ApplyDefaults(cfg)
	if cfg.Relay.BackendURL == "" {
		return fmt.Errorf("backend URL required (-backend or relay.backend_url)")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := relay.New(relay.Config{
		Client:     &relay.Backend{BaseURL: cfg.Relay.BackendURL},
		DeviceType: cfg.Relay.DeviceType,
		Debounce:   cfg.Relay.Debounce,
		Logger:     logger,
	})
	logger.Info("relay started", "backend", cfg.Relay.BackendURL, "device_type", cfg.Relay.DeviceType)

	n, failed, err := forward(ctx, r, in)
	logger.Info("relay finished", "messages", n, "failed", failed)
	return err
}

// handler is the part of *relay.Relay that forward needs.
type handler interface {
	Handle(ctx context.Context, data []byte) (relay.Outcome, error)
}

// forward hands every non-blank line of in to h. Failed messages are counted
// and skipped; only a read error or cancellation stops the stream.
func forward(ctx context.Context, h handler, in io.Reader) (n, failed int, err error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for sc.Scan() {
		if ctx.Err() != nil {
			return n, failed, nil
		}
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		n++
		if _, err := h.Handle(ctx, line); err != nil {
			failed++
		}
	}
	return n, failed, sc.Err()
}
