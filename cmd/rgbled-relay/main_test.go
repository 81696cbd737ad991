package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rgbled/rgbled-go/pkg/relay"
)

type recorder struct {
	got  []string
	fail map[string]bool
}

func (r *recorder) Handle(_ context.Context, data []byte) (relay.Outcome, error) {
	s := string(data)
	r.got = append(r.got, s)
	if r.fail[s] {
		return relay.OutcomeDebounced, errors.New("rejected")
	}
	return relay.OutcomeUpdated, nil
}

func TestForward(t *testing.T) {
	in := strings.NewReader("{\"a\":1}\n\n  \n{\"b\":2}\nbad\n")
	rec := &recorder{fail: map[string]bool{"bad": true}}

	n, failed, err := forward(context.Background(), rec, in)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if n != 3 || failed != 1 {
		t.Errorf("counts: got n=%d failed=%d, want 3 and 1", n, failed)
	}
	if len(rec.got) != 3 || rec.got[0] != `{"a":1}` || rec.got[2] != "bad" {
		t.Errorf("lines: got %q", rec.got)
	}
}

func TestForwardStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	n, _, err := forward(ctx, rec, strings.NewReader("{}\n{}\n"))
	if err != nil || n != 0 {
		t.Errorf("got n=%d err=%v, want 0 and nil", n, err)
	}
}
