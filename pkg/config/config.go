// Package config loads the agent configuration from YAML with environment
// overrides.
//
// Loading happens in three steps: Load parses the file and applies
// environment overrides, Validate checks it without mutating anything, and
// ApplyDefaults fills in what was left out.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvBridgeURL    = "RGBLED_BRIDGE_URL"
	EnvDeviceID     = "RGBLED_DEVICE_ID"
	EnvLogLevel     = "RGBLED_LOG_LEVEL"
	EnvDisplayCodes = "RGBLED_DISPLAY_CODES"
)

// Defaults.
const (
	DefaultTelemetryFrequency = 10 * time.Second
	DefaultBufferSize         = 1024
	DefaultPixels             = 16
	DefaultLogLevel           = "info"
	DefaultDisplayCodes       = "legacy"
	DefaultRelayDebounce      = time.Second
	DefaultRelayDeviceType    = "Lamp"
)

// minBufferSize fits the device info report.
const minBufferSize = 256

// Config is the agent configuration.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Hub     HubConfig     `yaml:"hub"`
	Logging LoggingConfig `yaml:"logging"`
	State   StateConfig   `yaml:"state"`
	Relay   RelayConfig   `yaml:"relay"`
}

// DeviceConfig describes the agent itself.
type DeviceConfig struct {
	ID                 string        `yaml:"id"`
	TelemetryFrequency time.Duration `yaml:"telemetry_frequency"`
	BufferSize         int           `yaml:"buffer_size"`
	Pixels             int           `yaml:"pixels"`

	// DisplayCodes selects the DisplayText table: legacy or corrected.
	DisplayCodes string `yaml:"display_codes"`

	// Components lists twin components walked for writable properties.
	Components []string `yaml:"components"`
}

// HubConfig points at the hub bridge.
type HubConfig struct {
	BridgeURL string `yaml:"bridge_url"`

	// Token is sent as a bearer token when set.
	Token string `yaml:"token"`
}

// LoggingConfig controls operational and protocol logging.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	ProtocolLog string `yaml:"protocol_log"`
}

// SlogLevel maps Level to a slog level. Unknown names map to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StateConfig controls persistence.
type StateConfig struct {
	// Path of the twin state file. Empty disables persistence.
	Path string `yaml:"path"`
}

// RelayConfig configures the cloud relay.
type RelayConfig struct {
	BackendURL string        `yaml:"backend_url"`
	DeviceType string        `yaml:"device_type"`
	Debounce   time.Duration `yaml:"debounce"`
}

// Load reads the YAML file at path, then applies a .env file next to the
// working directory and the process environment on top. An empty path starts
// from an empty configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are ignored
// and variables already set win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBridgeURL); v != "" {
		c.Hub.BridgeURL = v
	}
	if v := os.Getenv(EnvDeviceID); v != "" {
		c.Device.ID = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvDisplayCodes); v != "" {
		c.Device.DisplayCodes = v
	}
}
