// Command rgbled-device runs the RGB LED digital twin agent.
//
// The agent connects to a hub bridge over a websocket, reports telemetry on
// the interval the twin asks for, acknowledges writable properties and
// executes LED commands. Without a bridge URL, outbound frames are printed
// to stdout, which together with -interactive allows running the agent
// locally.
//
// Usage:
//
//	rgbled-device [flags]
//
// Flags:
//
//	-config string        Configuration file path
//	-bridge string        Hub bridge URL (overrides the configuration)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  Write a protocol capture to this file
//	-interactive          Start the interactive console
//
// Examples:
//
//	# Connect to a bridge
//	rgbled-device -config /etc/rgbled/agent.yaml
//
//	# Run locally and drive the strip from the console
//	rgbled-device -interactive -log-level debug
//
//	# Capture the protocol for rgbled-log
//	rgbled-device -config agent.yaml -protocol-log device.plog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgbled/rgbled-go/cmd/rgbled-device/interactive"
	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/command"
	"github.com/rgbled/rgbled-go/pkg/config"
	"github.com/rgbled/rgbled-go/pkg/deviceinfo"
	"github.com/rgbled/rgbled-go/pkg/engine"
	"github.com/rgbled/rgbled-go/pkg/log"
	"github.com/rgbled/rgbled-go/pkg/persistence"
	"github.com/rgbled/rgbled-go/pkg/transport"
)

// dialTimeout bounds the bridge handshake.
const dialTimeout = 15 * time.Second

var (
	configPath      string
	bridgeURL       string
	logLevel        string
	protocolLogPath string
	interactiveMode bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.StringVar(&bridgeURL, "bridge", "", "Hub bridge URL (overrides the configuration)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default \"info\")")
	flag.StringVar(&protocolLogPath, "protocol-log", "", "Write a protocol capture to this file")
	flag.BoolVar(&interactiveMode, "interactive", false, "Start the interactive console")
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rgbled-device: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var console *interactive.Console
	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if interactiveMode {
		console, err = interactive.New()
		if err != nil {
			return err
		}
		stdout, stderr = console.Stdout(), console.Stderr()
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))
	logger.Info("RGB LED device agent", "device_id", cfg.Device.ID, "model", engine.ModelID)

	// Protocol events go to the capture file and, at debug level, to the
	// operational log as well.
	var sinks []log.Logger
	if cfg.Logging.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.Logging.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer func() {
			written, failed := fl.Stats()
			logger.Info("protocol capture closed", "path", cfg.Logging.ProtocolLog, "events", written, "failed", failed)
			fl.Close()
		}()
		sinks = append(sinks, fl)
		logger.Info("protocol capture enabled", "path", cfg.Logging.ProtocolLog)
	}
	if cfg.Logging.SlogLevel() <= slog.LevelDebug {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}
	var plog log.Logger
	if len(sinks) > 0 {
		plog = log.NewMultiLogger(sinks...)
	}

	codes, _ := command.CodeTableByName(cfg.Device.DisplayCodes)

	var bridge *transport.Bridge
	var out engine.Transport
	if cfg.Hub.BridgeURL != "" {
		dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
		bridge, err = transport.Dial(dialCtx, transport.BridgeConfig{
			URL:      cfg.Hub.BridgeURL,
			Token:    cfg.Hub.Token,
			DeviceID: cfg.Device.ID,
			Logger:   logger,
		})
		dialCancel()
		if err != nil {
			return err
		}
		defer bridge.Close()
		out = bridge
		logger.Info("connected to bridge", "url", cfg.Hub.BridgeURL)
	} else {
		out = transport.NewConsole(stdout)
		logger.Info("no bridge configured, writing frames to stdout")
	}

	engCfg := engine.Config{
		Transport:          out,
		Driver:             actuator.NewLogDriver(logger, cfg.Device.Pixels),
		DisplayCodes:       codes,
		DeviceInfo:         deviceinfo.Default(),
		TelemetryFrequency: cfg.Device.TelemetryFrequency,
		BufferSize:         cfg.Device.BufferSize,
		Components:         cfg.Device.Components,
		DeviceID:           cfg.Device.ID,
		Logger:             logger,
		ProtocolLogger:     plog,
	}

	var saved *persistence.TwinState
	if cfg.State.Path != "" {
		store := persistence.NewTwinStateStore(cfg.State.Path)
		saved, err = store.Load()
		if err != nil {
			logger.Warn("ignoring unreadable twin state", "path", store.Path(), "error", err)
			saved = nil
		}
		engCfg.Store = store
	}

	eng, err := engine.New(engCfg)
	if err != nil {
		return err
	}
	eng.Restore(saved)

	a := newAgent(eng, logger)

	// lost receives the bridge read failure that ends the run.
	lost := make(chan error, 1)
	if bridge != nil {
		eng.SetConnected(true, cfg.Hub.BridgeURL)
		go func() {
			if err := a.pump(ctx, bridge); err != nil {
				lost <- err
				cancel()
			}
		}()
	}

	a.Submit(ctx, func(e *engine.Engine) {
		if err := e.SendDeviceInfo(0); err != nil {
			logger.Warn("device info not sent", "error", err)
		}
	})

	if console != nil {
		go console.Run(ctx, cancel, a)
	}

	a.run(ctx)

	// The loop has stopped, so the engine may be used directly again.
	var runErr error
	select {
	case runErr = <-lost:
		logger.Error("bridge connection lost", "error", runErr)
		eng.SetConnected(false, runErr.Error())
		runErr = fmt.Errorf("bridge connection lost: %w", runErr)
	default:
		if bridge != nil {
			eng.SetConnected(false, "shutdown")
		}
	}

	if bridge != nil {
		st := bridge.KeepAliveStats()
		logger.Info("shutting down", "last_pong", st.LastPongTime, "latency", st.LastLatency)
	} else {
		logger.Info("shutting down")
	}
	return runErr
}

// loadConfig merges the configuration file, environment and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if bridgeURL != "" {
		cfg.Hub.BridgeURL = bridgeURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if protocolLogPath != "" {
		cfg.Logging.ProtocolLog = protocolLogPath
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.ApplyDefaults(cfg)
	return cfg, nil
}
