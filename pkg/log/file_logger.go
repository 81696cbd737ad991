package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a capture file. It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	out     io.WriteCloser
	encoder *cbor.Encoder
	written int
	failed  int
	closed  bool
}

// NewFileLogger opens path for appending, creating it with mode 0644.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewStreamLogger(f), nil
}

// NewStreamLogger writes events to w and closes it on Close.
func NewStreamLogger(w io.WriteCloser) *FileLogger {
	return &FileLogger{out: w, encoder: NewEncoder(w)}
}

// Log appends the event. Encoding failures are counted, never returned.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.failed++
		return
	}
	l.written++
}

// Stats returns the number of events written and the number that failed.
func (l *FileLogger) Stats() (written, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.failed
}

// Close closes the capture. Later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.out.Close()
}

var _ Logger = (*FileLogger)(nil)
