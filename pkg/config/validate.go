package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration without changing it.
func Validate(cfg *Config) error {
	if cfg.Device.TelemetryFrequency < 0 {
		return fmt.Errorf("device.telemetry_frequency must be positive, got %s", cfg.Device.TelemetryFrequency)
	}
	if cfg.Device.BufferSize != 0 && cfg.Device.BufferSize < minBufferSize {
		return fmt.Errorf("device.buffer_size must be at least %d, got %d", minBufferSize, cfg.Device.BufferSize)
	}
	if cfg.Device.Pixels < 0 {
		return fmt.Errorf("device.pixels must not be negative, got %d", cfg.Device.Pixels)
	}
	switch cfg.Device.DisplayCodes {
	case "", "legacy", "corrected":
	default:
		return fmt.Errorf("device.display_codes must be legacy or corrected, got %q", cfg.Device.DisplayCodes)
	}
	seen := make(map[string]bool)
	for _, c := range cfg.Device.Components {
		if c == "" {
			return fmt.Errorf("device.components: empty component name")
		}
		if seen[c] {
			return fmt.Errorf("device.components: duplicate component %q", c)
		}
		seen[c] = true
	}

	if cfg.Hub.BridgeURL != "" {
		if err := checkURL(cfg.Hub.BridgeURL, "ws", "wss"); err != nil {
			return fmt.Errorf("hub.bridge_url: %w", err)
		}
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}

	if cfg.Relay.BackendURL != "" {
		if err := checkURL(cfg.Relay.BackendURL, "http", "https"); err != nil {
			return fmt.Errorf("relay.backend_url: %w", err)
		}
	}
	if cfg.Relay.Debounce < 0 {
		return fmt.Errorf("relay.debounce must not be negative, got %s", cfg.Relay.Debounce)
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("missing host in %q", raw)
			}
			return nil
		}
	}
	return fmt.Errorf("scheme %q not one of %s", u.Scheme, strings.Join(schemes, ", "))
}
