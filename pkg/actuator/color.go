package actuator

import "fmt"

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Named colors.
var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
	Red   = RGB{255, 0, 0}
	Green = RGB{0, 255, 0}
	Blue  = RGB{0, 0, 255}
)

// String returns the color as #rrggbb.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// LEDStatus is the telemetry classification of the strip.
type LEDStatus int32

const (
	StatusOff     LEDStatus = 0
	StatusOnOther LEDStatus = 1
	StatusGreen   LEDStatus = 2
	StatusBlue    LEDStatus = 3
	StatusRed     LEDStatus = 4
)

// String returns the status name.
func (s LEDStatus) String() string {
	switch s {
	case StatusOff:
		return "OFF"
	case StatusOnOther:
		return "ON_OTHER"
	case StatusGreen:
		return "GREEN"
	case StatusBlue:
		return "BLUE"
	case StatusRed:
		return "RED"
	default:
		return fmt.Sprintf("LED_STATUS_%d", int32(s))
	}
}
