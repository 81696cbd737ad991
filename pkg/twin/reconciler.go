package twin

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rgbled/rgbled-go/pkg/pnp"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

// TelemetryFrequencyName is the writable telemetry interval, in seconds.
const TelemetryFrequencyName = "telemetryFrequencySecs"

// AckSuccess is the ack description of an applied property.
const AckSuccess = "success"

// ErrEncodeOverflow is returned when the ack document does not fit the buffer.
var ErrEncodeOverflow = errors.New("twin: encode overflow")

// Settings receives accepted writable properties.
type Settings interface {
	SetTelemetryFrequency(d time.Duration)
}

// Result summarizes one reconciliation pass.
type Result struct {
	// Version is the desired document version.
	Version int32

	// Length is the ack document length in the output buffer, excluding the
	// 0x00 sentinel. Zero means there is nothing to report.
	Length int

	// Applied counts properties applied and acknowledged.
	Applied int

	// Skipped counts properties logged and ignored.
	Skipped int
}

// Reconciler applies writable property documents.
type Reconciler struct {
	// Components lists the component names whose members are walked as
	// properties. Other objects are treated as property values.
	Components []string

	// Logger receives skipped-property diagnostics (optional).
	Logger *slog.Logger
}

// Reconcile applies the writable properties in payload to settings and writes
// the ack document into out.
//
// A missing $version aborts before anything is applied. A malformed document
// aborts the walk; properties applied before the error stay applied, and no
// ack is returned.
func (rc *Reconciler) Reconcile(settings Settings, payload []byte, msgType pnp.MessageType, out []byte) (Result, error) {
	var r wire.Reader
	r.Reset(payload)
	version, err := pnp.PropertiesVersion(&r, msgType)
	if err != nil {
		return Result{}, fmt.Errorf("twin: properties version: %w", err)
	}

	res := Result{Version: version}
	acks := ackWriter{version: version}
	acks.w.Reset(out)

	r.Reset(payload)
	var it pnp.PropertyIterator
	it.Reset(&r, msgType, rc.Components)
	for {
		ok, err := it.Next()
		if err != nil {
			return rc.abort(res, err)
		}
		if !ok {
			break
		}

		name := it.Name()
		if !name.TextEqual(TelemetryFrequencyName) {
			rc.warn("unexpected property received",
				"component", it.Component(),
				"property", string(name.Slice),
				"offset", name.Offset)
			res.Skipped++
			if err := it.SkipValue(); err != nil {
				return rc.abort(res, err)
			}
			continue
		}

		tok, err := it.Value()
		if err != nil {
			return rc.abort(res, err)
		}
		secs, err := tok.Int32()
		if err != nil {
			return rc.abort(res, &wire.SyntaxError{Offset: tok.Offset, Reason: TelemetryFrequencyName + " is not an int32"})
		}
		if secs <= 0 {
			rc.warn("rejected non-positive telemetry frequency",
				"component", it.Component(),
				"value", secs,
				"offset", tok.Offset)
			res.Skipped++
			continue
		}

		settings.SetTelemetryFrequency(time.Duration(secs) * time.Second)
		res.Applied++
		acks.add(it.Component(), TelemetryFrequencyName, secs)
	}

	if res.Applied == 0 {
		return res, nil
	}
	n, err := acks.finish()
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrEncodeOverflow, err)
	}
	res.Length = n
	return res, nil
}

func (rc *Reconciler) abort(res Result, err error) (Result, error) {
	res.Length = 0
	return res, fmt.Errorf("twin: walk properties: %w", err)
}

func (rc *Reconciler) warn(msg string, args ...any) {
	if rc.Logger != nil {
		rc.Logger.Warn(msg, args...)
	}
}

// ackWriter groups acks by component inside a single document.
type ackWriter struct {
	w         wire.Writer
	version   int32
	open      bool
	component string
}

func (a *ackWriter) add(component, name string, value int32) {
	if !a.open {
		a.w.BeginObject()
		a.open = true
	}
	if component != a.component {
		if a.component != "" {
			pnp.EndComponent(&a.w)
		}
		if component != "" {
			pnp.BeginComponent(&a.w, component)
		}
		a.component = component
	}
	pnp.BeginResponseStatus(&a.w, name, pnp.StatusOK, a.version, AckSuccess)
	a.w.Int32(value)
	pnp.EndResponseStatus(&a.w)
}

func (a *ackWriter) finish() (int, error) {
	if a.component != "" {
		pnp.EndComponent(&a.w)
	}
	a.w.EndObject()
	return a.w.Terminate()
}
