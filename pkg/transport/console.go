package transport

import (
	"bufio"
	"io"
	"sync"

	"github.com/rgbled/rgbled-go/pkg/pnp"
)

// Console writes outbound frames to w, one JSON document per line. It
// implements engine.Transport.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// SendTelemetry writes a telemetry frame.
func (c *Console) SendTelemetry(payload []byte) error {
	return c.Send(newFrame(FrameTelemetry, 0, payload))
}

// SendPropertiesUpdate writes a reported properties frame.
func (c *Console) SendPropertiesUpdate(requestID uint32, payload []byte) error {
	return c.Send(newFrame(FramePropertiesUpdate, requestID, payload))
}

// SendCommandResponse writes a command response frame.
func (c *Console) SendCommandResponse(requestID uint32, status pnp.Status, payload []byte) error {
	f := newFrame(FrameCommandResponse, requestID, payload)
	f.Status = status
	return c.Send(f)
}

// Send writes f followed by a newline.
func (c *Console) Send(f Frame) error {
	data, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// FrameScanner reads newline-delimited frames, the format Console writes.
type FrameScanner struct {
	s   *bufio.Scanner
	err error
	f   Frame
}

// NewFrameScanner returns a scanner over r.
func NewFrameScanner(r io.Reader) *FrameScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), DefaultReadLimit)
	return &FrameScanner{s: s}
}

// Scan advances to the next frame. Blank lines are skipped. It returns false
// at the end of input or on the first error.
func (fs *FrameScanner) Scan() bool {
	for fs.s.Scan() {
		line := fs.s.Bytes()
		if len(line) == 0 {
			continue
		}
		f, err := DecodeFrame(line)
		if err != nil {
			fs.err = err
			return false
		}
		fs.f = f
		return true
	}
	fs.err = fs.s.Err()
	return false
}

// Frame returns the frame read by the last Scan.
func (fs *FrameScanner) Frame() Frame {
	return fs.f
}

// Err returns the first error, if any.
func (fs *FrameScanner) Err() error {
	return fs.err
}
