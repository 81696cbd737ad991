package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rgbled/rgbled-go/pkg/engine"
	"github.com/rgbled/rgbled-go/pkg/transport"
)

// tickInterval is how often the loop asks the engine whether telemetry is due.
const tickInterval = time.Second

// frameSource yields inbound frames. *transport.Bridge implements it.
type frameSource interface {
	Receive(ctx context.Context) (transport.Frame, error)
}

// agent owns the engine. Everything that touches it runs on the run
// goroutine, submitted as closures.
type agent struct {
	eng    *engine.Engine
	logger *slog.Logger
	tick   time.Duration
	work   chan func(*engine.Engine)
	now    func() time.Time
}

func newAgent(eng *engine.Engine, logger *slog.Logger) *agent {
	return &agent{
		eng:    eng,
		logger: logger,
		tick:   tickInterval,
		work:   make(chan func(*engine.Engine), 16),
		now:    time.Now,
	}
}

// Submit queues fn for the loop. It returns false if ctx ends first.
func (a *agent) Submit(ctx context.Context, fn func(*engine.Engine)) bool {
	select {
	case a.work <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// run serializes the telemetry tick and submitted work until ctx is done.
func (a *agent) run(ctx context.Context) {
	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	a.sendTelemetry()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sendTelemetry()
		case fn := <-a.work:
			fn(a.eng)
		}
	}
}

func (a *agent) sendTelemetry() {
	if _, err := a.eng.SendTelemetry(a.now()); err != nil {
		a.logger.Warn("telemetry not sent", "error", err)
	}
}

// pump feeds frames from src to the loop until src fails or ctx is done.
func (a *agent) pump(ctx context.Context, src frameSource) error {
	for {
		f, err := src.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrBridgeClosed) {
				return nil
			}
			return err
		}
		ok := a.Submit(ctx, func(e *engine.Engine) {
			if err := transport.Dispatch(e, f); err != nil {
				a.logger.Warn("frame not handled", "type", f.Type, "id", f.ID, "error", err)
			}
		})
		if !ok {
			return nil
		}
	}
}
