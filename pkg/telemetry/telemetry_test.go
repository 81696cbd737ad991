package telemetry

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rgbled/rgbled-go/pkg/actuator"
	"github.com/rgbled/rgbled-go/pkg/wire"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		state actuator.State
		want  string
	}{
		{"off", actuator.State{}, `{"led_status":0}`},
		{"white", actuator.State{Power: true, Color: actuator.White}, `{"led_status":1}`},
		{"green", actuator.State{Power: true, Color: actuator.Green}, `{"led_status":2}`},
		{"blue", actuator.State{Power: true, Color: actuator.Blue}, `{"led_status":3}`},
		{"red", actuator.State{Power: true, Color: actuator.Red}, `{"led_status":4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 64)
			n, err := Generate(tt.state, buf)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if got := string(buf[:n]); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if buf[n] != 0 {
				t.Errorf("missing sentinel: %#x", buf[n])
			}
		})
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	state := actuator.State{Power: true, Color: actuator.Red}
	a := make([]byte, 64)
	b := make([]byte, 64)
	na, _ := Generate(state, a)
	nb, _ := Generate(state, b)
	if !bytes.Equal(a[:na+1], b[:nb+1]) {
		t.Errorf("frames differ: %q vs %q", a[:na+1], b[:nb+1])
	}
}

func TestGenerateFitsMaxFrameSize(t *testing.T) {
	buf := make([]byte, MaxFrameSize)
	if _, err := Generate(actuator.State{Power: true, Color: actuator.Red}, buf); err != nil {
		t.Fatalf("Generate into MaxFrameSize failed: %v", err)
	}
}

func TestGenerateOverflow(t *testing.T) {
	for _, size := range []int{1, MaxFrameSize - 1} {
		buf := bytes.Repeat([]byte{0xFF}, size)
		_, err := Generate(actuator.State{}, buf)
		if !errors.Is(err, ErrEncodeOverflow) {
			t.Fatalf("size %d: expected ErrEncodeOverflow, got %v", size, err)
		}
		if !errors.Is(err, wire.ErrBufferExhausted) {
			t.Errorf("size %d: expected wrapped ErrBufferExhausted, got %v", size, err)
		}
		if bytes.IndexByte(buf, 0) != -1 {
			t.Errorf("size %d: sentinel written on failure", size)
		}
	}
}

func TestGateSchedule(t *testing.T) {
	g := NewGate(10 * time.Second)
	start := time.Unix(1000, 0)

	var sentAt []int
	for _, s := range []int{0, 5, 10, 11} {
		now := start.Add(time.Duration(s) * time.Second)
		if g.Due(now) {
			g.MarkSent(now)
			sentAt = append(sentAt, s)
		}
	}
	if len(sentAt) != 2 || sentAt[0] != 0 || sentAt[1] != 10 {
		t.Errorf("sent at %v, want [0 10]", sentAt)
	}
}

func TestGateSetFrequency(t *testing.T) {
	g := NewGate(10 * time.Second)
	start := time.Unix(0, 0)
	g.MarkSent(start)

	g.SetFrequency(2 * time.Second)
	if !g.Due(start.Add(2 * time.Second)) {
		t.Error("shorter frequency not applied")
	}
	g.SetFrequency(0)
	if g.Frequency() != time.Second {
		t.Errorf("non-positive frequency: got %v, want 1s", g.Frequency())
	}
}
