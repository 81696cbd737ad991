package pnp

import (
	"errors"
	"testing"

	"github.com/rgbled/rgbled-go/pkg/wire"
)

func TestBeginComponent(t *testing.T) {
	w := wire.NewWriter(make([]byte, 128))
	w.BeginObject()
	if err := BeginComponent(w, "deviceInformation"); err != nil {
		t.Fatalf("BeginComponent failed: %v", err)
	}
	w.PropertyName("model")
	w.String("kit")
	if err := EndComponent(w); err != nil {
		t.Fatalf("EndComponent failed: %v", err)
	}
	w.EndObject()

	want := `{"deviceInformation":{"__t":"c","model":"kit"}}`
	if got := string(w.Bytes()); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResponseStatus(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"with description", "success", `{"telemetryFrequencySecs":{"ac":200,"av":7,"ad":"success","value":30}}`},
		{"without description", "", `{"telemetryFrequencySecs":{"ac":200,"av":7,"value":30}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wire.NewWriter(make([]byte, 128))
			w.BeginObject()
			if err := BeginResponseStatus(w, "telemetryFrequencySecs", StatusOK, 7, tt.desc); err != nil {
				t.Fatalf("BeginResponseStatus failed: %v", err)
			}
			w.Int32(30)
			if err := EndResponseStatus(w); err != nil {
				t.Fatalf("EndResponseStatus failed: %v", err)
			}
			w.EndObject()
			if got := string(w.Bytes()); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if StatusAccepted.String() != "ACCEPTED" {
		t.Errorf("got %s", StatusAccepted)
	}
	if Status(500).String() != "STATUS_500" {
		t.Errorf("got %s", Status(500))
	}
}

func TestPropertiesVersion(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		msgType MessageType
		want    int32
		wantErr error
	}{
		{"patch", `{"telemetryFrequencySecs":30,"$version":7}`, MessageTypeWritableUpdated, 7, nil},
		{"patch after nested", `{"c":{"$version":1},"$version":9}`, MessageTypeWritableUpdated, 9, nil},
		{"get response", `{"reported":{"$version":2},"desired":{"x":1,"$version":5}}`, MessageTypeGetResponse, 5, nil},
		{"missing", `{"telemetryFrequencySecs":30}`, MessageTypeWritableUpdated, 0, ErrMissingVersion},
		{"missing in desired", `{"desired":{},"$version":3}`, MessageTypeGetResponse, 0, ErrMissingVersion},
		{"not a number", `{"$version":"7"}`, MessageTypeWritableUpdated, 0, wire.ErrMalformedDocument},
		{"no desired", `{"reported":{}}`, MessageTypeGetResponse, 0, wire.ErrMalformedDocument},
		{"not an object", `[1]`, MessageTypeWritableUpdated, 0, wire.ErrMalformedDocument},
		{"truncated", `{"a":1`, MessageTypeWritableUpdated, 0, wire.ErrMalformedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PropertiesVersion(wire.NewReader([]byte(tt.doc)), tt.msgType)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PropertiesVersion failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

type seen struct {
	component string
	name      string
}

// walk consumes every property value and records where it was found.
func walk(t *testing.T, doc string, msgType MessageType, components ...string) []seen {
	t.Helper()
	it := NewPropertyIterator(wire.NewReader([]byte(doc)), msgType, components...)
	var out []seen
	for {
		ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next failed after %v: %v", out, err)
		}
		if !ok {
			return out
		}
		out = append(out, seen{it.Component(), string(it.Name().Slice)})
		if err := it.SkipValue(); err != nil {
			t.Fatalf("SkipValue failed: %v", err)
		}
	}
}

func TestPropertyIterator(t *testing.T) {
	doc := `{"telemetryFrequencySecs":30,"led":{"__t":"c","brightness":{"x":[1,2]},"mode":"on"},"$version":4,"other":[1]}`
	got := walk(t, doc, MessageTypeWritableUpdated, "led")
	want := []seen{
		{"", "telemetryFrequencySecs"},
		{"led", "brightness"},
		{"led", "mode"},
		{"", "other"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("property %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPropertyIteratorUnknownComponentIsProperty(t *testing.T) {
	got := walk(t, `{"led":{"__t":"c","mode":1}}`, MessageTypeWritableUpdated)
	if len(got) != 1 || got[0] != (seen{"", "led"}) {
		t.Errorf("got %v", got)
	}
}

func TestPropertyIteratorGetResponse(t *testing.T) {
	doc := `{"reported":{"telemetryFrequencySecs":{"ac":200}},"desired":{"telemetryFrequencySecs":15,"$version":2}}`
	got := walk(t, doc, MessageTypeGetResponse)
	if len(got) != 1 || got[0] != (seen{"", "telemetryFrequencySecs"}) {
		t.Errorf("got %v", got)
	}
}

func TestPropertyIteratorReadsValue(t *testing.T) {
	r := wire.NewReader([]byte(`{"a":30,"b":{"c":1},"d":2}`))
	it := NewPropertyIterator(r, MessageTypeWritableUpdated)
	var sum int32
	for {
		ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		tok, err := it.Value()
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}
		if tok.Kind != wire.TokenNumber {
			if err := r.SkipChildren(); err != nil {
				t.Fatalf("SkipChildren failed: %v", err)
			}
			continue
		}
		v, _ := tok.Int32()
		sum += v
	}
	if sum != 32 {
		t.Errorf("sum: got %d, want 32", sum)
	}
}

func TestPropertyIteratorDetectsUnconsumedValue(t *testing.T) {
	it := NewPropertyIterator(wire.NewReader([]byte(`{"a":"x","b":2}`)), MessageTypeWritableUpdated)
	if ok, err := it.Next(); !ok || err != nil {
		t.Fatalf("first Next: %v %v", ok, err)
	}
	// The value of "a" is left unread.
	_, err := it.Next()
	if !errors.Is(err, wire.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestPropertyIteratorDetectsUnskippedContainer(t *testing.T) {
	it := NewPropertyIterator(wire.NewReader([]byte(`{"a":{"c":1},"d":2}`)), MessageTypeWritableUpdated)
	it.Next()
	if tok, _ := it.Value(); tok.Kind != wire.TokenBeginObject {
		t.Fatalf("expected object value, got %v", tok.Kind)
	}
	// Walking into the object instead of skipping it must not surface "c".
	if _, err := it.Next(); !errors.Is(err, wire.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestPropertyIteratorComponentNotObject(t *testing.T) {
	it := NewPropertyIterator(wire.NewReader([]byte(`{"led":5}`)), MessageTypeWritableUpdated, "led")
	if _, err := it.Next(); !errors.Is(err, wire.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}
