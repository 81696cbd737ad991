package transport

import (
	"context"
	"sync"
	"time"
)

// Keep-alive constants.
const (
	// DefaultPingInterval is the default interval between pings.
	DefaultPingInterval = 30 * time.Second

	// DefaultPongTimeout is the default timeout waiting for a pong response.
	DefaultPongTimeout = 5 * time.Second

	// DefaultMaxMissedPongs is the default number of missed pongs before disconnect.
	DefaultMaxMissedPongs = 3
)

// KeepAliveConfig configures keep-alive behavior.
type KeepAliveConfig struct {
	// PingInterval is the interval between pings.
	PingInterval time.Duration

	// PongTimeout is the timeout waiting for a pong response.
	PongTimeout time.Duration

	// MaxMissedPongs is the number of missed pongs before disconnect.
	MaxMissedPongs int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		PingInterval:   DefaultPingInterval,
		PongTimeout:    DefaultPongTimeout,
		MaxMissedPongs: DefaultMaxMissedPongs,
	}
}

// DetectionDelay calculates the maximum detection delay for this configuration.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.PingInterval*time.Duration(c.MaxMissedPongs) + c.PongTimeout
}

// PingFunc sends a ping and blocks until the pong arrives or ctx is done.
type PingFunc func(ctx context.Context) error

// KeepAlive pings a peer and reports when it stops answering.
type KeepAlive struct {
	config    KeepAliveConfig
	ping      PingFunc
	onTimeout func()

	mu           sync.Mutex
	missedPongs  int
	lastPongTime time.Time
	lastLatency  time.Duration
	running      bool
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewKeepAlive creates a keep-alive manager. onTimeout is called once, from
// the keep-alive goroutine, when MaxMissedPongs pings in a row went
// unanswered.
func NewKeepAlive(config KeepAliveConfig, ping PingFunc, onTimeout func()) *KeepAlive {
	if config.PingInterval == 0 {
		config.PingInterval = DefaultPingInterval
	}
	if config.PongTimeout == 0 {
		config.PongTimeout = DefaultPongTimeout
	}
	if config.MaxMissedPongs == 0 {
		config.MaxMissedPongs = DefaultMaxMissedPongs
	}
	return &KeepAlive{
		config:    config,
		ping:      ping,
		onTimeout: onTimeout,
	}
}

// Start begins pinging until ctx is done, Stop is called or the peer times out.
func (ka *KeepAlive) Start(ctx context.Context) {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	if ka.running {
		return
	}
	ctx, ka.cancel = context.WithCancel(ctx)
	ka.done = make(chan struct{})
	ka.running = true
	go ka.loop(ctx, ka.done)
}

// Stop stops pinging and waits for the loop to exit.
func (ka *KeepAlive) Stop() {
	ka.mu.Lock()
	if !ka.running {
		ka.mu.Unlock()
		return
	}
	cancel, done := ka.cancel, ka.done
	ka.mu.Unlock()

	cancel()
	<-done
}

// IsRunning returns true if keep-alive monitoring is active.
func (ka *KeepAlive) IsRunning() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.running
}

// KeepAliveStats contains keep-alive statistics.
type KeepAliveStats struct {
	LastPongTime time.Time
	LastLatency  time.Duration
	MissedPongs  int
}

// Stats returns current keep-alive statistics.
func (ka *KeepAlive) Stats() KeepAliveStats {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return KeepAliveStats{
		LastPongTime: ka.lastPongTime,
		LastLatency:  ka.lastLatency,
		MissedPongs:  ka.missedPongs,
	}
}

func (ka *KeepAlive) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		ka.mu.Lock()
		ka.running = false
		ka.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(ka.config.PingInterval)
	defer ticker.Stop()

	for {
		if ka.pingOnce(ctx) {
			if ka.onTimeout != nil {
				ka.onTimeout()
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pingOnce sends one ping and reports whether the peer is considered dead.
func (ka *KeepAlive) pingOnce(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, ka.config.PongTimeout)
	defer cancel()

	start := time.Now()
	err := ka.ping(pingCtx)
	if ctx.Err() != nil {
		return false
	}

	ka.mu.Lock()
	defer ka.mu.Unlock()
	if err != nil {
		ka.missedPongs++
		return ka.missedPongs >= ka.config.MaxMissedPongs
	}
	ka.missedPongs = 0
	ka.lastPongTime = time.Now()
	ka.lastLatency = ka.lastPongTime.Sub(start)
	return false
}
