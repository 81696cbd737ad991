package twin

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rgbled/rgbled-go/pkg/pnp"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

type recordingSettings struct {
	frequencies []time.Duration
}

func (s *recordingSettings) SetTelemetryFrequency(d time.Duration) {
	s.frequencies = append(s.frequencies, d)
}

func reconcile(t *testing.T, rc *Reconciler, doc string, msgType pnp.MessageType) (*recordingSettings, Result, string, error) {
	t.Helper()
	settings := &recordingSettings{}
	out := make([]byte, 1024)
	res, err := rc.Reconcile(settings, []byte(doc), msgType, out)
	return settings, res, string(out[:res.Length]), err
}

func TestReconcileVersionInAck(t *testing.T) {
	settings, res, ack, err := reconcile(t, &Reconciler{}, `{"telemetryFrequencySecs":30,"$version":7}`, pnp.MessageTypeWritableUpdated)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want := `{"telemetryFrequencySecs":{"ac":200,"av":7,"ad":"success","value":30}}`
	if ack != want {
		t.Errorf("ack: got %s, want %s", ack, want)
	}
	if res.Version != 7 || res.Applied != 1 || res.Skipped != 0 {
		t.Errorf("result: %+v", res)
	}
	if len(settings.frequencies) != 1 || settings.frequencies[0] != 30*time.Second {
		t.Errorf("frequencies: %v", settings.frequencies)
	}
}

func TestReconcileSentinel(t *testing.T) {
	out := bytes.Repeat([]byte{0xFF}, 256)
	res, err := (&Reconciler{}).Reconcile(&recordingSettings{}, []byte(`{"$version":1,"telemetryFrequencySecs":5}`), pnp.MessageTypeWritableUpdated, out)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if out[res.Length] != 0 {
		t.Errorf("missing sentinel after ack")
	}
}

func TestReconcileSkipsUnrecognized(t *testing.T) {
	var logs bytes.Buffer
	rc := &Reconciler{Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	docs := []string{
		`{"$version":3,"brightness":80,"telemetryFrequencySecs":15}`,
		`{"telemetryFrequencySecs":15,"brightness":80,"$version":3}`,
		// Container values must be skipped whole, or "telemetryFrequencySecs"
		// inside them would be picked up.
		`{"schedule":{"telemetryFrequencySecs":99,"days":[1,2,{"x":3}]},"telemetryFrequencySecs":15,"$version":3}`,
	}
	want := `{"telemetryFrequencySecs":{"ac":200,"av":3,"ad":"success","value":15}}`
	for _, doc := range docs {
		logs.Reset()
		settings, res, ack, err := reconcile(t, rc, doc, pnp.MessageTypeWritableUpdated)
		if err != nil {
			t.Fatalf("Reconcile(%s) failed: %v", doc, err)
		}
		if ack != want {
			t.Errorf("Reconcile(%s): got %s, want %s", doc, ack, want)
		}
		if res.Applied != 1 || res.Skipped != 1 {
			t.Errorf("Reconcile(%s): result %+v", doc, res)
		}
		if len(settings.frequencies) != 1 || settings.frequencies[0] != 15*time.Second {
			t.Errorf("Reconcile(%s): frequencies %v", doc, settings.frequencies)
		}
		if !strings.Contains(logs.String(), "unexpected property received") {
			t.Errorf("Reconcile(%s): skip not logged", doc)
		}
	}
}

func TestReconcileNothingRecognized(t *testing.T) {
	settings, res, _, err := reconcile(t, &Reconciler{}, `{"brightness":80,"$version":2}`, pnp.MessageTypeWritableUpdated)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Length != 0 || res.Skipped != 1 || len(settings.frequencies) != 0 {
		t.Errorf("result %+v, frequencies %v", res, settings.frequencies)
	}
}

func TestReconcileMissingVersion(t *testing.T) {
	settings, res, _, err := reconcile(t, &Reconciler{}, `{"telemetryFrequencySecs":30}`, pnp.MessageTypeWritableUpdated)
	if !errors.Is(err, pnp.ErrMissingVersion) {
		t.Fatalf("expected ErrMissingVersion, got %v", err)
	}
	if len(settings.frequencies) != 0 {
		t.Errorf("applied without a version: %v", settings.frequencies)
	}
	if res.Length != 0 {
		t.Errorf("ack emitted: %+v", res)
	}
}

func TestReconcileRejectsNonPositive(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		doc := `{"$version":4,"telemetryFrequencySecs":` + v + `}`
		settings, res, _, err := reconcile(t, &Reconciler{}, doc, pnp.MessageTypeWritableUpdated)
		if err != nil {
			t.Fatalf("Reconcile(%s) failed: %v", doc, err)
		}
		if len(settings.frequencies) != 0 {
			t.Errorf("Reconcile(%s): applied %v", doc, settings.frequencies)
		}
		if res.Length != 0 || res.Applied != 0 || res.Skipped != 1 {
			t.Errorf("Reconcile(%s): result %+v", doc, res)
		}
	}
}

func TestReconcileMalformed(t *testing.T) {
	docs := map[string]string{
		"string value":    `{"$version":1,"telemetryFrequencySecs":"30"}`,
		"fraction value":  `{"$version":1,"telemetryFrequencySecs":1.5}`,
		"truncated":       `{"$version":1,"telemetryFrequencySecs":30,"x":[`,
		"object value":    `{"$version":1,"telemetryFrequencySecs":{"v":30}}`,
		"version is text": `{"$version":"1","telemetryFrequencySecs":30}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, res, _, err := reconcile(t, &Reconciler{}, doc, pnp.MessageTypeWritableUpdated)
			if !errors.Is(err, wire.ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
			if res.Length != 0 {
				t.Errorf("partial ack emitted: %+v", res)
			}
		})
	}
}

func TestReconcileComponentAck(t *testing.T) {
	rc := &Reconciler{Components: []string{"led"}}
	doc := `{"led":{"__t":"c","telemetryFrequencySecs":20},"$version":9}`
	_, res, ack, err := reconcile(t, rc, doc, pnp.MessageTypeWritableUpdated)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want := `{"led":{"__t":"c","telemetryFrequencySecs":{"ac":200,"av":9,"ad":"success","value":20}}}`
	if ack != want {
		t.Errorf("got %s, want %s", ack, want)
	}
	if res.Applied != 1 {
		t.Errorf("result %+v", res)
	}
}

func TestReconcileMultipleAcksShareDocument(t *testing.T) {
	rc := &Reconciler{Components: []string{"led"}}
	doc := `{"telemetryFrequencySecs":10,"led":{"__t":"c","telemetryFrequencySecs":20},"$version":2}`
	settings, _, ack, err := reconcile(t, rc, doc, pnp.MessageTypeWritableUpdated)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want := `{"telemetryFrequencySecs":{"ac":200,"av":2,"ad":"success","value":10},` +
		`"led":{"__t":"c","telemetryFrequencySecs":{"ac":200,"av":2,"ad":"success","value":20}}}`
	if ack != want {
		t.Errorf("got %s, want %s", ack, want)
	}
	if len(settings.frequencies) != 2 || settings.frequencies[1] != 20*time.Second {
		t.Errorf("frequencies %v", settings.frequencies)
	}
}

func TestReconcileGetResponse(t *testing.T) {
	doc := `{"desired":{"telemetryFrequencySecs":45,"$version":12},"reported":{"telemetryFrequencySecs":{"ac":200,"av":11,"value":30}}}`
	settings, res, ack, err := reconcile(t, &Reconciler{}, doc, pnp.MessageTypeGetResponse)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Version != 12 || !strings.Contains(ack, `"av":12`) || !strings.Contains(ack, `"value":45`) {
		t.Errorf("result %+v ack %s", res, ack)
	}
	if len(settings.frequencies) != 1 || settings.frequencies[0] != 45*time.Second {
		t.Errorf("frequencies %v", settings.frequencies)
	}
}

func TestReconcileOverflow(t *testing.T) {
	settings := &recordingSettings{}
	out := bytes.Repeat([]byte{0xFF}, 1)
	_, err := (&Reconciler{}).Reconcile(settings, []byte(`{"$version":1,"telemetryFrequencySecs":5}`), pnp.MessageTypeWritableUpdated, out)
	if !errors.Is(err, ErrEncodeOverflow) || !errors.Is(err, wire.ErrBufferExhausted) {
		t.Fatalf("expected ErrEncodeOverflow wrapping ErrBufferExhausted, got %v", err)
	}
	if out[0] == 0 {
		t.Error("sentinel written on failure")
	}
}
