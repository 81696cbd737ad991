package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/command"
	"github.com/rgbled/rgbled-go/pkg/deviceinfo"
	"github.com/rgbled/rgbled-go/pkg/log"
	"github.com/rgbled/rgbled-go/pkg/persistence"
	"github.com/rgbled/rgbled-go/pkg/pnp"
	"github.com/rgbled/rgbled-go/pkg/telemetry"
	"github.com/rgbled/rgbled-go/pkg/twin"
)

// ModelID is the digital twin model the agent implements.
const ModelID = "dtmi:azureiot:devkit:freertos:Esp32AzureIotKit;1"

// Defaults.
const (
	DefaultBufferSize         = 1024
	DefaultTelemetryFrequency = 10 * time.Second
)

var (
	// ErrNoTransport is returned by New without a transport.
	ErrNoTransport = errors.New("engine: transport required")

	// ErrTransport wraps transport send failures.
	ErrTransport = errors.New("engine: transport send failed")
)

// Config configures an Engine.
type Config struct {
	// Transport carries output to the hub (required).
	Transport Transport

	// Driver shows colors on the strip. Nil uses actuator.NopDriver.
	Driver actuator.Driver

	// DisplayCodes resolves DisplayText payloads. Nil uses command.LegacyCodes.
	DisplayCodes command.CodeTable

	// DeviceInfo is reported on request. The zero value uses deviceinfo.Default.
	DeviceInfo deviceinfo.Report

	// TelemetryFrequency is the initial telemetry interval.
	TelemetryFrequency time.Duration

	// BufferSize is the scratch buffer size for every encode.
	BufferSize int

	// Components are the twin components walked for writable properties.
	Components []string

	// Store persists accepted twin state (optional).
	Store StateStore

	// DeviceID and SessionID tag protocol events. An empty SessionID is
	// generated.
	DeviceID  string
	SessionID string

	// Logger for operational output (optional).
	Logger *slog.Logger

	// ProtocolLogger captures protocol events (optional).
	ProtocolLogger log.Logger
}

func (c *Config) applyDefaults() {
	if c.Driver == nil {
		c.Driver = actuator.NopDriver{}
	}
	if c.DisplayCodes == nil {
		c.DisplayCodes = command.LegacyCodes
	}
	if c.DeviceInfo == (deviceinfo.Report{}) {
		c.DeviceInfo = deviceinfo.Default()
	}
	if c.TelemetryFrequency <= 0 {
		c.TelemetryFrequency = DefaultTelemetryFrequency
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.SessionID == "" {
		c.SessionID = log.NewSessionID()
	}
}

// Engine is the device agent. See the package doc for the calling contract.
type Engine struct {
	cfg        Config
	buf        []byte
	state      State
	gate       *telemetry.Gate
	dispatcher *command.Dispatcher
	reconciler *twin.Reconciler
	transport  Transport
	logger     *slog.Logger
	plog       log.Logger

	// desiredVersion is the last reconciled $version.
	desiredVersion int32
}

// New returns an engine in the initial state: strip off and black.
func New(cfg Config) (*Engine, error) {
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}
	cfg.applyDefaults()

	e := &Engine{
		cfg:       cfg,
		buf:       make([]byte, cfg.BufferSize),
		state:     State{TelemetryFrequency: cfg.TelemetryFrequency},
		gate:      telemetry.NewGate(cfg.TelemetryFrequency),
		transport: cfg.Transport,
		logger:    cfg.Logger,
		plog:      cfg.ProtocolLogger,
		dispatcher: &command.Dispatcher{
			Driver: cfg.Driver,
			Codes:  cfg.DisplayCodes,
			Logger: cfg.Logger,
		},
		reconciler: &twin.Reconciler{
			Components: cfg.Components,
			Logger:     cfg.Logger,
		},
	}
	return e, nil
}

// State returns a copy of the agent state.
func (e *Engine) State() State {
	return e.state
}

// SessionID returns the protocol capture session.
func (e *Engine) SessionID() string {
	return e.cfg.SessionID
}

// DesiredVersion returns the last reconciled desired document version.
func (e *Engine) DesiredVersion() int32 {
	return e.desiredVersion
}

// SetTelemetryFrequency changes the telemetry interval. Non-positive values
// are ignored.
func (e *Engine) SetTelemetryFrequency(d time.Duration) {
	if d <= 0 {
		return
	}
	old := e.state.TelemetryFrequency
	e.state.SetTelemetryFrequency(d)
	e.gate.SetFrequency(d)
	e.info("telemetry frequency set", "frequency", d)
	e.logState(log.StateEntityTelemetryFrequency, old.String(), d.String(), "")
}

// Restore applies persisted twin state, typically loaded at startup before
// the hub sends its twin document. A nil state is ignored.
func (e *Engine) Restore(st *persistence.TwinState) {
	if st == nil {
		return
	}
	if st.TelemetryFrequency > 0 {
		e.SetTelemetryFrequency(st.TelemetryFrequency)
	}
	e.desiredVersion = st.DesiredVersion
	e.debug("restored twin state", "frequency", st.TelemetryFrequency, "version", st.DesiredVersion)
}

// SetConnected records a hub connection change in the protocol log.
func (e *Engine) SetConnected(connected bool, reason string) {
	old, next := "disconnected", "connected"
	if !connected {
		old, next = next, old
	}
	e.info("hub "+next, "reason", reason)
	e.logState(log.StateEntityConnection, old, next, reason)
}

// SendTelemetry sends a telemetry frame if one is due at now. It reports
// whether a frame was attempted.
func (e *Engine) SendTelemetry(now time.Time) (bool, error) {
	if !e.gate.Due(now) {
		return false, nil
	}
	// The slot is used even if the send fails, so a broken link is retried
	// at the normal rate.
	e.gate.MarkSent(now)

	n, err := telemetry.Generate(e.state.Actuator, e.buf)
	if err != nil {
		e.logError(log.LayerCodec, "generate telemetry", err)
		return true, err
	}
	payload := e.buf[:n]
	e.logMessage(log.DirectionOut, log.CategoryTelemetry, &log.MessageEvent{Kind: log.MessageKindTelemetry}, payload)
	if err := e.transport.SendTelemetry(payload); err != nil {
		e.logError(log.LayerTransport, "send telemetry", err)
		return true, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return true, nil
}

// SendDeviceInfo reports the device information component.
func (e *Engine) SendDeviceInfo(requestID uint32) error {
	n, err := deviceinfo.Generate(e.cfg.DeviceInfo, e.buf)
	if err != nil {
		e.logError(log.LayerCodec, "generate device info", err)
		return err
	}
	payload := e.buf[:n]
	e.logMessage(log.DirectionOut, log.CategoryProperties, &log.MessageEvent{
		Kind:      log.MessageKindDeviceInfo,
		RequestID: &requestID,
	}, payload)
	if err := e.transport.SendPropertiesUpdate(requestID, payload); err != nil {
		e.logError(log.LayerTransport, "send device info", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// HandleCommand dispatches req and sends the response.
func (e *Engine) HandleCommand(req command.Request) error {
	start := time.Now()
	e.logMessage(log.DirectionIn, log.CategoryCommand, &log.MessageEvent{
		Kind:      log.MessageKindCommandRequest,
		RequestID: &req.RequestID,
		Name:      req.Name,
	}, req.Payload)

	before := e.state.Actuator
	resp := e.dispatcher.Dispatch(&e.state.Actuator, req)
	if after := e.state.Actuator; after != before {
		e.logState(log.StateEntityActuator, describe(before), describe(after), req.Name)
	}

	status := uint16(resp.Status)
	elapsed := time.Since(start)
	e.logMessage(log.DirectionOut, log.CategoryCommand, &log.MessageEvent{
		Kind:           log.MessageKindCommandResponse,
		RequestID:      &resp.RequestID,
		Name:           req.Name,
		Status:         &status,
		ProcessingTime: &elapsed,
	}, resp.Payload)

	if err := e.transport.SendCommandResponse(resp.RequestID, resp.Status, resp.Payload); err != nil {
		e.logError(log.LayerTransport, "send command response", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// HandlePropertiesUpdate reconciles a desired properties patch and sends the
// acks, if any.
func (e *Engine) HandlePropertiesUpdate(payload []byte, requestID uint32) error {
	return e.reconcile(payload, requestID, pnp.MessageTypeWritableUpdated, log.MessageKindPropertiesPatch)
}

// HandleTwinDocument reconciles the desired section of a full twin document,
// as received after connecting, and sends the acks, if any.
func (e *Engine) HandleTwinDocument(payload []byte, requestID uint32) error {
	return e.reconcile(payload, requestID, pnp.MessageTypeGetResponse, log.MessageKindTwinDocument)
}

func (e *Engine) reconcile(payload []byte, requestID uint32, msgType pnp.MessageType, kind log.MessageKind) error {
	e.logMessage(log.DirectionIn, log.CategoryProperties, &log.MessageEvent{
		Kind:      kind,
		RequestID: &requestID,
	}, payload)

	res, err := e.reconciler.Reconcile(e, payload, msgType, e.buf)
	if err != nil {
		e.logError(log.LayerEngine, "reconcile "+msgType.String(), err)
		return err
	}
	e.desiredVersion = res.Version
	if res.Applied > 0 {
		e.persist()
	}
	if res.Length == 0 {
		e.debug("no properties to acknowledge", "version", res.Version, "skipped", res.Skipped)
		return nil
	}

	ack := e.buf[:res.Length]
	status := uint16(pnp.StatusOK)
	e.logMessage(log.DirectionOut, log.CategoryProperties, &log.MessageEvent{
		Kind:      log.MessageKindPropertiesAck,
		RequestID: &requestID,
		Status:    &status,
		Version:   &res.Version,
	}, ack)
	if err := e.transport.SendPropertiesUpdate(requestID, ack); err != nil {
		e.logError(log.LayerTransport, "send properties ack", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

func (e *Engine) persist() {
	if e.cfg.Store == nil {
		return
	}
	err := e.cfg.Store.Save(&persistence.TwinState{
		TelemetryFrequency: e.state.TelemetryFrequency,
		DesiredVersion:     e.desiredVersion,
	})
	if err != nil && e.logger != nil {
		e.logger.Error("failed to persist twin state", "error", err)
	}
}

func describe(s actuator.State) string {
	if !s.Power {
		return "off " + s.Color.String()
	}
	return "on " + s.Color.String()
}
