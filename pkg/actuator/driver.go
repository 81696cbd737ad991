package actuator

import (
	"log/slog"
)

// Driver shows a color on every pixel of the strip.
type Driver interface {
	Show(c RGB) error
}

// NopDriver accepts every color and does nothing.
type NopDriver struct{}

// Show implements Driver.
func (NopDriver) Show(RGB) error { return nil }

// LogDriver logs every color it is asked to show.
type LogDriver struct {
	Logger *slog.Logger
	Pixels int
}

// NewLogDriver returns a LogDriver. A nil logger uses slog.Default.
func NewLogDriver(logger *slog.Logger, pixels int) *LogDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDriver{Logger: logger, Pixels: pixels}
}

// Show implements Driver.
func (d *LogDriver) Show(c RGB) error {
	d.Logger.Info("led strip updated", "color", c.String(), "pixels", d.Pixels)
	return nil
}
