package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// Bridge defaults.
const (
	DefaultWriteTimeout = 10 * time.Second
	DefaultReadLimit    = 64 * 1024
)

// ErrBridgeClosed is returned by operations on a closed bridge.
var ErrBridgeClosed = errors.New("transport: bridge closed")

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	// URL is the ws:// or wss:// bridge endpoint.
	URL string

	// Token is sent as a bearer token when set.
	Token string

	// DeviceID is sent in the X-Device-Id header when set.
	DeviceID string

	// HTTPClient is used for the handshake (optional).
	HTTPClient *http.Client

	// WriteTimeout bounds each send.
	WriteTimeout time.Duration

	// ReadLimit bounds inbound frame size.
	ReadLimit int64

	// KeepAlive configures pings. A zero PingInterval uses the defaults.
	KeepAlive KeepAliveConfig

	// DisableKeepAlive turns pinging off.
	DisableKeepAlive bool

	// Logger for operational output (optional).
	Logger *slog.Logger
}

// Bridge is a websocket connection to the hub bridge. It implements
// engine.Transport.
type Bridge struct {
	conn   *websocket.Conn
	cfg    BridgeConfig
	logger *slog.Logger
	ka     *KeepAlive

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// Dial connects to the bridge.
func Dial(ctx context.Context, cfg BridgeConfig) (*Bridge, error) {
	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	if cfg.DeviceID != "" {
		header.Set("X-Device-Id", cfg.DeviceID)
	}

	conn, _, err := websocket.Dial(ctx, cfg.URL, &websocket.DialOptions{
		HTTPClient: cfg.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return newBridge(conn, cfg), nil
}

func newBridge(conn *websocket.Conn, cfg BridgeConfig) *Bridge {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = DefaultReadLimit
	}
	conn.SetReadLimit(cfg.ReadLimit)

	b := &Bridge{
		conn:   conn,
		cfg:    cfg,
		logger: cfg.Logger,
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())

	if !cfg.DisableKeepAlive {
		b.ka = NewKeepAlive(cfg.KeepAlive, conn.Ping, func() {
			b.warn("bridge peer stopped answering pings, closing")
			b.conn.Close(websocket.StatusPolicyViolation, "keep-alive timeout")
		})
		b.ka.Start(b.ctx)
	}
	return b
}

// SendTelemetry sends a telemetry frame.
func (b *Bridge) SendTelemetry(payload []byte) error {
	return b.Send(newFrame(FrameTelemetry, 0, payload))
}

// SendPropertiesUpdate sends a reported properties frame.
func (b *Bridge) SendPropertiesUpdate(requestID uint32, payload []byte) error {
	return b.Send(newFrame(FramePropertiesUpdate, requestID, payload))
}

// SendCommandResponse sends a command response frame.
func (b *Bridge) SendCommandResponse(requestID uint32, status pnp.Status, payload []byte) error {
	f := newFrame(FrameCommandResponse, requestID, payload)
	f.Status = status
	return b.Send(f)
}

// Send writes f as a text message.
func (b *Bridge) Send(f Frame) error {
	if b.ctx.Err() != nil {
		return ErrBridgeClosed
	}
	data, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.cfg.WriteTimeout)
	defer cancel()
	if err := b.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Type, err)
	}
	b.debug("frame sent", "type", f.Type, "id", f.ID, "request_id", f.RequestID)
	return nil
}

// Receive blocks until the next inbound frame arrives. Frames that fail to
// decode or are not inbound types are logged and skipped. It must be called
// continuously so pongs are processed.
func (b *Bridge) Receive(ctx context.Context) (Frame, error) {
	for {
		typ, data, err := b.conn.Read(ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return Frame{}, ErrBridgeClosed
			}
			return Frame{}, fmt.Errorf("read frame: %w", err)
		}
		if typ != websocket.MessageText {
			b.warn("ignoring binary message", "size", len(data))
			continue
		}
		f, err := DecodeFrame(data)
		if err != nil {
			b.warn("ignoring undecodable frame", "error", err)
			continue
		}
		if !f.Type.Inbound() {
			b.warn("ignoring frame", "type", f.Type, "id", f.ID)
			continue
		}
		b.debug("frame received", "type", f.Type, "id", f.ID, "request_id", f.RequestID)
		return f, nil
	}
}

// KeepAliveStats returns ping statistics. The zero value is returned when
// keep-alive is disabled.
func (b *Bridge) KeepAliveStats() KeepAliveStats {
	if b.ka == nil {
		return KeepAliveStats{}
	}
	return b.ka.Stats()
}

// Close stops the keep-alive and closes the connection.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.cancel()
		if b.ka != nil {
			b.ka.Stop()
		}
		err = b.conn.Close(websocket.StatusNormalClosure, "")
	})
	return err
}

func (b *Bridge) debug(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Bridge) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
