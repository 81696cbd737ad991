package engine

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/actuator/mocks"
	"github.com/rgbled/rgbled-go/pkg/command"
	"github.com/rgbled/rgbled-go/pkg/deviceinfo"
	"github.com/rgbled/rgbled-go/pkg/log"
	"github.com/rgbled/rgbled-go/pkg/persistence"
	"github.com/rgbled/rgbled-go/pkg/pnp"
	"github.com/rgbled/rgbled-go/pkg/transport"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

var (
	_ transport.Handler = (*Engine)(nil)
	_ Transport         = (*transport.Bridge)(nil)
	_ Transport         = (*transport.Console)(nil)
	_ StateStore        = (*persistence.TwinStateStore)(nil)
)

type sentFrame struct {
	kind      string
	requestID uint32
	status    pnp.Status
	payload   string
}

// recordingTransport copies every payload, since engine buffers are reused.
type recordingTransport struct {
	frames []sentFrame
	err    error
}

func (r *recordingTransport) SendTelemetry(payload []byte) error {
	r.frames = append(r.frames, sentFrame{kind: "telemetry", payload: string(payload)})
	return r.err
}

func (r *recordingTransport) SendPropertiesUpdate(requestID uint32, payload []byte) error {
	r.frames = append(r.frames, sentFrame{kind: "properties", requestID: requestID, payload: string(payload)})
	return r.err
}

func (r *recordingTransport) SendCommandResponse(requestID uint32, status pnp.Status, payload []byte) error {
	r.frames = append(r.frames, sentFrame{kind: "command", requestID: requestID, status: status, payload: string(payload)})
	return r.err
}

type capture struct {
	events []log.Event
}

func (c *capture) Log(e log.Event) { c.events = append(c.events, e) }

func (c *capture) count(cat log.Category) int {
	n := 0
	for _, e := range c.events {
		if e.Category == cat {
			n++
		}
	}
	return n
}

func newEngine(t *testing.T, cfg Config) (*Engine, *recordingTransport) {
	t.Helper()
	tr := &recordingTransport{}
	cfg.Transport = tr
	e, err := New(cfg)
	require.NoError(t, err)
	return e, tr
}

func TestNewRequiresTransport(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestNewDefaults(t *testing.T) {
	e, _ := newEngine(t, Config{})
	assert.Equal(t, State{TelemetryFrequency: DefaultTelemetryFrequency}, e.State())
	assert.Len(t, e.buf, DefaultBufferSize)
	assert.NotEmpty(t, e.SessionID())
}

func TestSendTelemetryThrottles(t *testing.T) {
	e, tr := newEngine(t, Config{TelemetryFrequency: 10 * time.Second})
	start := time.Unix(5000, 0)

	for _, s := range []int{0, 5, 10, 11} {
		_, err := e.SendTelemetry(start.Add(time.Duration(s) * time.Second))
		require.NoError(t, err)
	}
	require.Len(t, tr.frames, 2)
	assert.Equal(t, `{"led_status":0}`, tr.frames[0].payload)
}

func TestSendTelemetryReflectsCommands(t *testing.T) {
	driver := mocks.NewMockDriver(t)
	driver.EXPECT().Show(actuator.White).Return(nil).Once()
	driver.EXPECT().Show(actuator.Red).Return(nil).Once()
	e, tr := newEngine(t, Config{Driver: driver, TelemetryFrequency: time.Second})

	require.NoError(t, e.HandleCommand(command.Request{Name: command.NameToggleMain, RequestID: 1}))
	require.NoError(t, e.HandleCommand(command.Request{Name: command.NameToggleRed, RequestID: 2}))

	sent, err := e.SendTelemetry(time.Unix(0, 0))
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, tr.frames, 3)
	assert.Equal(t, sentFrame{kind: "command", requestID: 1, status: pnp.StatusAccepted}, tr.frames[0])
	assert.Equal(t, sentFrame{kind: "command", requestID: 2, status: pnp.StatusAccepted}, tr.frames[1])
	assert.Equal(t, `{"led_status":4}`, tr.frames[2].payload)
}

func TestHandleCommandRejected(t *testing.T) {
	e, tr := newEngine(t, Config{})

	require.NoError(t, e.HandleCommand(command.Request{Name: command.NameToggleBlue, RequestID: 4}))
	require.NoError(t, e.HandleCommand(command.Request{Name: "selfDestruct", RequestID: 5}))

	require.Len(t, tr.frames, 2)
	assert.Equal(t, pnp.StatusRejected, tr.frames[0].status)
	assert.Equal(t, pnp.StatusRejected, tr.frames[1].status)
	assert.Equal(t, actuator.State{}, e.State().Actuator)
}

func TestSendDeviceInfo(t *testing.T) {
	e, tr := newEngine(t, Config{})
	require.NoError(t, e.SendDeviceInfo(3))
	require.Len(t, tr.frames, 1)
	assert.Equal(t, uint32(3), tr.frames[0].requestID)

	rep, err := deviceinfo.Decode([]byte(tr.frames[0].payload))
	require.NoError(t, err)
	assert.Equal(t, deviceinfo.Default(), rep)
}

func TestHandlePropertiesUpdate(t *testing.T) {
	plog := &capture{}
	e, tr := newEngine(t, Config{ProtocolLogger: plog})

	err := e.HandlePropertiesUpdate([]byte(`{"telemetryFrequencySecs":30,"unknown":1,"$version":7}`), 11)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, e.State().TelemetryFrequency)
	assert.Equal(t, int32(7), e.DesiredVersion())
	require.Len(t, tr.frames, 1)
	assert.Equal(t, sentFrame{
		kind:      "properties",
		requestID: 11,
		payload:   `{"telemetryFrequencySecs":{"ac":200,"av":7,"ad":"success","value":30}}`,
	}, tr.frames[0])

	assert.Equal(t, 2, plog.count(log.CategoryProperties), "patch in and ack out")
	assert.Equal(t, 1, plog.count(log.CategoryState), "frequency change")
}

func TestHandlePropertiesUpdateAppliesToGate(t *testing.T) {
	e, tr := newEngine(t, Config{TelemetryFrequency: 10 * time.Second})
	start := time.Unix(0, 0)
	_, _ = e.SendTelemetry(start)

	require.NoError(t, e.HandlePropertiesUpdate([]byte(`{"$version":2,"telemetryFrequencySecs":2}`), 1))
	sent, err := e.SendTelemetry(start.Add(2 * time.Second))
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Len(t, tr.frames, 3)
}

func TestHandlePropertiesUpdateNothingToAck(t *testing.T) {
	e, tr := newEngine(t, Config{})
	require.NoError(t, e.HandlePropertiesUpdate([]byte(`{"telemetryFrequencySecs":0,"$version":3}`), 1))
	assert.Empty(t, tr.frames)
	assert.Equal(t, DefaultTelemetryFrequency, e.State().TelemetryFrequency)
}

func TestHandlePropertiesUpdateErrors(t *testing.T) {
	plog := &capture{}
	e, tr := newEngine(t, Config{ProtocolLogger: plog})

	err := e.HandlePropertiesUpdate([]byte(`{"telemetryFrequencySecs":30}`), 1)
	assert.ErrorIs(t, err, pnp.ErrMissingVersion)

	err = e.HandlePropertiesUpdate([]byte(`{"$version":1,"telemetryFrequencySecs":`), 2)
	assert.ErrorIs(t, err, wire.ErrMalformedDocument)

	assert.Empty(t, tr.frames)
	assert.Equal(t, DefaultTelemetryFrequency, e.State().TelemetryFrequency)
	require.Equal(t, 2, plog.count(log.CategoryError))

	var last log.Event
	for _, ev := range plog.events {
		if ev.Category == log.CategoryError {
			last = ev
		}
	}
	require.NotNil(t, last.Error.Offset, "codec errors carry an offset")
}

func TestHandleTwinDocument(t *testing.T) {
	e, tr := newEngine(t, Config{})
	doc := `{"desired":{"telemetryFrequencySecs":60,"$version":5},"reported":{"telemetryFrequencySecs":{"ac":200,"av":4,"value":10}}}`
	require.NoError(t, e.HandleTwinDocument([]byte(doc), 9))

	assert.Equal(t, time.Minute, e.State().TelemetryFrequency)
	require.Len(t, tr.frames, 1)
	assert.Contains(t, tr.frames[0].payload, `"av":5`)
}

func TestPersistsAcceptedFrequency(t *testing.T) {
	store := persistence.NewTwinStateStore(filepath.Join(t.TempDir(), "twin.json"))
	e, _ := newEngine(t, Config{Store: store})

	require.NoError(t, e.HandlePropertiesUpdate([]byte(`{"$version":8,"telemetryFrequencySecs":45}`), 1))

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 45*time.Second, got.TelemetryFrequency)
	assert.Equal(t, int32(8), got.DesiredVersion)
}

func TestTransportFailure(t *testing.T) {
	e, tr := newEngine(t, Config{})
	tr.err = errors.New("link down")

	_, err := e.SendTelemetry(time.Unix(0, 0))
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, e.SendDeviceInfo(1), ErrTransport)
	assert.ErrorIs(t, e.HandleCommand(command.Request{Name: command.NameToggleMain}), ErrTransport)

	// The failed telemetry slot still counts.
	sent, _ := e.SendTelemetry(time.Unix(1, 0))
	assert.False(t, sent)
}

func TestSmallBufferOverflows(t *testing.T) {
	e, tr := newEngine(t, Config{BufferSize: 32})
	assert.ErrorIs(t, e.SendDeviceInfo(1), deviceinfo.ErrEncodeOverflow)
	assert.Empty(t, tr.frames)

	_, err := e.SendTelemetry(time.Unix(0, 0))
	assert.NoError(t, err, "telemetry fits 32 bytes")
}

func TestProtocolEventsDoNotAliasBuffer(t *testing.T) {
	plog := &capture{}
	e, _ := newEngine(t, Config{ProtocolLogger: plog, TelemetryFrequency: time.Second})

	_, _ = e.SendTelemetry(time.Unix(0, 0))
	require.NoError(t, e.SendDeviceInfo(1))

	require.NotNil(t, plog.events[0].Message)
	assert.Equal(t, `{"led_status":0}`, string(plog.events[0].Message.Payload))
}

func TestRestore(t *testing.T) {
	e, tr := newEngine(t, Config{})
	e.Restore(nil)
	e.Restore(&persistence.TwinState{TelemetryFrequency: 3 * time.Second, DesiredVersion: 12})

	assert.Equal(t, 3*time.Second, e.State().TelemetryFrequency)
	assert.Equal(t, int32(12), e.DesiredVersion())

	sent, _ := e.SendTelemetry(time.Unix(0, 0))
	assert.True(t, sent)
	sent, _ = e.SendTelemetry(time.Unix(3, 0))
	assert.True(t, sent, "restored frequency drives the gate")
	assert.Len(t, tr.frames, 2)

	// A zero frequency keeps the current one.
	e.Restore(&persistence.TwinState{DesiredVersion: 13})
	assert.Equal(t, 3*time.Second, e.State().TelemetryFrequency)
}

func TestDispatchFramesThroughTransport(t *testing.T) {
	e, tr := newEngine(t, Config{})
	require.NoError(t, transport.Dispatch(e, transport.Frame{
		Type:      transport.FrameCommand,
		Name:      command.NameToggleMain,
		RequestID: 21,
	}))
	require.Len(t, tr.frames, 1)
	assert.Equal(t, pnp.StatusAccepted, tr.frames[0].status)
	assert.Equal(t, uint32(21), tr.frames[0].requestID)
}

func TestSetConnectedLogsState(t *testing.T) {
	plog := &capture{}
	e, _ := newEngine(t, Config{ProtocolLogger: plog})

	e.SetConnected(true, "dialed")
	e.SetConnected(false, "read failed")

	require.Equal(t, 2, plog.count(log.CategoryState))
	first := plog.events[0].StateChange
	require.NotNil(t, first)
	assert.Equal(t, log.StateEntityConnection, first.Entity)
	assert.Equal(t, "connected", first.NewState)
	assert.Equal(t, "disconnected", plog.events[1].StateChange.NewState)
	assert.Equal(t, "read failed", plog.events[1].StateChange.Reason)
}
