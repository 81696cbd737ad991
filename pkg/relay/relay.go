package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Defaults.
const (
	DefaultDebounce   = time.Second
	DefaultDeviceType = "Lamp"
)

// ErrNoLamp indicates no backend device of the configured type exists.
var ErrNoLamp = errors.New("relay: no lamp device found")

// Outcome describes what Handle did with a message.
type Outcome int

const (
	// OutcomeDebounced means the status was unchanged within the window.
	OutcomeDebounced Outcome = iota

	// OutcomeUpdated means the backend device was updated.
	OutcomeUpdated
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeDebounced:
		return "DEBOUNCED"
	case OutcomeUpdated:
		return "UPDATED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Relay.
type Config struct {
	// Client is the backend API (required).
	Client DeviceClient

	// DeviceType selects the backend device to update. Empty uses DefaultDeviceType.
	DeviceType string

	// Debounce is the window in which an unchanged status is dropped. Zero
	// uses DefaultDebounce.
	Debounce time.Duration

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time

	// Logger for operational output (optional).
	Logger *slog.Logger
}

// Relay forwards lamp status changes to the backend.
type Relay struct {
	cfg Config

	mu       sync.Mutex
	previous *bool
	lastSeen time.Time
}

// New returns a Relay.
func New(cfg Config) *Relay {
	if cfg.DeviceType == "" {
		cfg.DeviceType = DefaultDeviceType
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Relay{cfg: cfg}
}

// Handle processes one export message.
func (r *Relay) Handle(ctx context.Context, data []byte) (Outcome, error) {
	msg, err := DecodeMessage(data)
	if err != nil {
		r.logErr("dropping message", "error", err)
		return OutcomeDebounced, err
	}
	on := msg.Telemetry.LampOn()

	if !r.admit(on) {
		r.info("lamp status unchanged within debounce window", "device_id", msg.DeviceID, "status", on)
		return OutcomeDebounced, nil
	}

	devices, err := r.cfg.Client.ListDevices(ctx)
	if err != nil {
		r.logErr("failed to fetch devices", "error", err)
		return OutcomeDebounced, err
	}
	lamp, ok := LatestOfType(devices, r.cfg.DeviceType)
	if !ok {
		r.logErr("no device of type found", "type", r.cfg.DeviceType)
		return OutcomeDebounced, fmt.Errorf("%w: type %q", ErrNoLamp, r.cfg.DeviceType)
	}

	cmd := UpdateDevice{ID: lamp.ID, Name: lamp.Name, Status: on}
	if err := r.cfg.Client.UpdateDevice(ctx, cmd); err != nil {
		r.logErr("failed to update device", "id", lamp.ID, "error", err)
		return OutcomeDebounced, err
	}
	r.info("lamp updated", "id", lamp.ID, "name", lamp.Name, "status", on, "source", msg.DeviceID)
	return OutcomeUpdated, nil
}

// admit records status and reports whether it should be forwarded. The
// debounce clock restarts on every forwarded message.
func (r *Relay) admit(on bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.cfg.Now()
	if r.previous != nil && *r.previous == on && now.Sub(r.lastSeen) < r.cfg.Debounce {
		return false
	}
	r.previous = &on
	r.lastSeen = now
	return true
}

func (r *Relay) info(msg string, args ...any) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Info(msg, args...)
	}
}

func (r *Relay) logErr(msg string, args ...any) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Error(msg, args...)
	}
}
