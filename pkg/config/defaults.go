package config

// ApplyDefaults fills unset fields. Call it after Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Device.TelemetryFrequency == 0 {
		cfg.Device.TelemetryFrequency = DefaultTelemetryFrequency
	}
	if cfg.Device.BufferSize == 0 {
		cfg.Device.BufferSize = DefaultBufferSize
	}
	if cfg.Device.Pixels == 0 {
		cfg.Device.Pixels = DefaultPixels
	}
	if cfg.Device.DisplayCodes == "" {
		cfg.Device.DisplayCodes = DefaultDisplayCodes
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Relay.Debounce == 0 {
		cfg.Relay.Debounce = DefaultRelayDebounce
	}
	if cfg.Relay.DeviceType == "" {
		cfg.Relay.DeviceType = DefaultRelayDeviceType
	}
}
