package actuator

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestStateStatus(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  LEDStatus
	}{
		{"zero value", State{}, StatusOff},
		{"power off keeps color", State{Power: false, Color: Red}, StatusOff},
		{"on but black", State{Power: true, Color: Black}, StatusOff},
		{"white", State{Power: true, Color: White}, StatusOnOther},
		{"red", State{Power: true, Color: Red}, StatusRed},
		{"green", State{Power: true, Color: Green}, StatusGreen},
		{"blue", State{Power: true, Color: Blue}, StatusBlue},
		{"near red", State{Power: true, Color: RGB{254, 0, 0}}, StatusOnOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLEDStatusValues(t *testing.T) {
	// Values are part of the telemetry schema.
	if StatusOff != 0 || StatusOnOther != 1 || StatusGreen != 2 || StatusBlue != 3 || StatusRed != 4 {
		t.Fatal("LED status values changed")
	}
	if StatusBlue.String() != "BLUE" {
		t.Errorf("got %s", StatusBlue)
	}
	if LEDStatus(9).String() != "LED_STATUS_9" {
		t.Errorf("got %s", LEDStatus(9))
	}
}

func TestRGBString(t *testing.T) {
	if got := (RGB{255, 0, 16}).String(); got != "#ff0010" {
		t.Errorf("got %s", got)
	}
}

func TestLogDriver(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogDriver(slog.New(slog.NewTextHandler(&buf, nil)), 16)
	if err := d.Show(Blue); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if !strings.Contains(buf.String(), "color=#0000ff") {
		t.Errorf("log line missing color: %s", buf.String())
	}
}
