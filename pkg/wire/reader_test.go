package wire

import (
	"errors"
	"testing"
)

// collect reads every token of doc and returns the kinds.
func collect(t *testing.T, doc string) []TokenKind {
	t.Helper()
	r := NewReader([]byte(doc))
	var kinds []TokenKind
	for {
		tok, err := r.Next()
		if errors.Is(err, ErrDone) {
			return kinds
		}
		if err != nil {
			t.Fatalf("Next failed after %v: %v", kinds, err)
		}
		kinds = append(kinds, tok.Kind)
	}
}

func TestReaderTokens(t *testing.T) {
	got := collect(t, ` {"a": 1, "b": [true, false, null, "s"], "c": {}} `)
	want := []TokenKind{
		TokenBeginObject,
		TokenPropertyName, TokenNumber,
		TokenPropertyName, TokenBeginArray, TokenTrue, TokenFalse, TokenNull, TokenString, TokenEndArray,
		TokenPropertyName, TokenBeginObject, TokenEndObject,
		TokenEndObject,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReaderAcceptsSentinel(t *testing.T) {
	got := collect(t, "{\"led_status\":2}\x00")
	if len(got) != 4 {
		t.Fatalf("got %v", got)
	}
}

func TestReaderMalformed(t *testing.T) {
	docs := map[string]string{
		"truncated object":   `{"a":1`,
		"truncated string":   `{"a":"x`,
		"missing colon":      `{"a" 1}`,
		"missing comma":      `{"a":1 "b":2}`,
		"trailing comma":     `{"a":1,}`,
		"trailing array":     `[1,]`,
		"mismatched close":   `{"a":[1}`,
		"bad literal":        `{"a":tru}`,
		"leading zero":       `{"a":01}`,
		"bare fraction":      `{"a":1.}`,
		"bad escape":         `{"a":"\q"}`,
		"control char":       "{\"a\":\"x\ny\"}",
		"data after root":    `{} {}`,
		"unquoted name":      `{a:1}`,
		"empty input":        ``,
		"close without open": `}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			r := NewReader([]byte(doc))
			var err error
			for err == nil {
				_, err = r.Next()
			}
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestReaderDepthLimit(t *testing.T) {
	doc := make([]byte, 0, MaxDepth+1)
	for i := 0; i <= MaxDepth; i++ {
		doc = append(doc, '[')
	}
	r := NewReader(doc)
	var err error
	for err == nil {
		_, err = r.Next()
	}
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if se.Offset != MaxDepth {
		t.Errorf("offset: got %d, want %d", se.Offset, MaxDepth)
	}
}

func TestSkipChildren(t *testing.T) {
	t.Run("container consumes exactly one value", func(t *testing.T) {
		r := NewReader([]byte(`{"skip":{"x":[1,{"y":2}],"z":{}},"next":5}`))
		r.Next() // {
		r.Next() // "skip"
		if tok, _ := r.Next(); tok.Kind != TokenBeginObject {
			t.Fatalf("expected object start, got %v", tok.Kind)
		}
		if err := r.SkipChildren(); err != nil {
			t.Fatalf("SkipChildren failed: %v", err)
		}
		if r.Token().Kind != TokenEndObject {
			t.Errorf("expected to rest on END_OBJECT, got %v", r.Token().Kind)
		}
		tok, err := r.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if tok.Kind != TokenPropertyName || !tok.TextEqual("next") {
			t.Errorf("expected property name next, got %v %q", tok.Kind, tok.Slice)
		}
	})

	t.Run("scalar is a no-op", func(t *testing.T) {
		r := NewReader([]byte(`{"a":1,"b":2}`))
		r.Next()
		r.Next()
		r.Next() // 1
		if err := r.SkipChildren(); err != nil {
			t.Fatalf("SkipChildren failed: %v", err)
		}
		if r.Token().Kind != TokenNumber {
			t.Errorf("expected NUMBER, got %v", r.Token().Kind)
		}
		tok, _ := r.Next()
		if !tok.TextEqual("b") {
			t.Errorf("expected b, got %q", tok.Slice)
		}
	})

	t.Run("property name advances to value", func(t *testing.T) {
		r := NewReader([]byte(`{"a":[1,2],"b":2}`))
		r.Next()
		r.Next() // "a"
		if err := r.SkipChildren(); err != nil {
			t.Fatalf("SkipChildren failed: %v", err)
		}
		if r.Token().Kind != TokenEndArray {
			t.Errorf("expected END_ARRAY, got %v", r.Token().Kind)
		}
	})

	t.Run("truncated container", func(t *testing.T) {
		r := NewReader([]byte(`{"a":[1,2`))
		r.Next()
		r.Next()
		r.Next()
		if err := r.SkipChildren(); !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("expected ErrMalformedDocument, got %v", err)
		}
	})
}

func TestTokenInt32(t *testing.T) {
	tests := []struct {
		doc     string
		want    int32
		wantErr bool
	}{
		{"7", 7, false},
		{"-42", -42, false},
		{"0", 0, false},
		{"2147483647", 2147483647, false},
		{"-2147483648", -2147483648, false},
		{"2147483648", 0, true},
		{"99999999999999999999", 0, true},
		{"1.5", 0, true},
		{"1e3", 0, true},
		{`"7"`, 0, true},
	}
	for _, tt := range tests {
		r := NewReader([]byte(tt.doc))
		tok, err := r.Next()
		if err != nil {
			t.Fatalf("Next(%s) failed: %v", tt.doc, err)
		}
		got, err := tok.Int32()
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidNumber) {
				t.Errorf("Int32(%s): expected ErrInvalidNumber, got %v (%d)", tt.doc, err, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Int32(%s) failed: %v", tt.doc, err)
		}
		if got != tt.want {
			t.Errorf("Int32(%s): got %d, want %d", tt.doc, got, tt.want)
		}
	}
}

func TestTokenDouble(t *testing.T) {
	r := NewReader([]byte(`[4096, -0.5, 1e2]`))
	r.Next()
	for _, want := range []float64{4096, -0.5, 100} {
		tok, err := r.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got, err := tok.Double()
		if err != nil {
			t.Fatalf("Double failed: %v", err)
		}
		if got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestTokenTextEqual(t *testing.T) {
	tests := []struct {
		doc  string
		text string
		want bool
	}{
		{`"success"`, "success", true},
		{`"success"`, "succes", false},
		{`"a\"b"`, `a"b`, true},
		{`"tab\there"`, "tab\there", true},
		{`"\u0041BC"`, "ABC", true},
		{`"\ud83d\ude00"`, "\U0001F600", true},
		{`"café"`, "café", true},
		{`"😀"`, "\U0001F600", true},
		{`"A"`, "AB", false},
	}
	for _, tt := range tests {
		r := NewReader([]byte(tt.doc))
		tok, err := r.Next()
		if err != nil {
			t.Fatalf("Next(%s) failed: %v", tt.doc, err)
		}
		if got := tok.TextEqual(tt.text); got != tt.want {
			t.Errorf("TextEqual(%s, %q): got %v, want %v", tt.doc, tt.text, got, tt.want)
		}
		if tt.want {
			if got := string(tok.AppendText(nil)); got != tt.text {
				t.Errorf("AppendText(%s): got %q, want %q", tt.doc, got, tt.text)
			}
		}
	}
}

func TestRoundTripThroughWriter(t *testing.T) {
	buf := make([]byte, 128)
	w := NewWriter(buf)
	w.BeginObject()
	w.PropertyName("model")
	w.String("ESP32 \"Azure\" IoT Kit")
	w.PropertyName("totalMemory")
	w.Double(8192, 2)
	w.EndObject()
	n, err := w.Terminate()
	if err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}

	r := NewReader(buf[:n+1])
	r.Next()
	r.Next()
	tok, _ := r.Next()
	if !tok.TextEqual("ESP32 \"Azure\" IoT Kit") {
		t.Errorf("model mismatch: %q", tok.Slice)
	}
	r.Next()
	tok, _ = r.Next()
	if v, _ := tok.Double(); v != 8192 {
		t.Errorf("totalMemory: got %v", v)
	}
	r.Next()
	if _, err := r.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("expected ErrDone, got %v", err)
	}
}

func TestReaderDoesNotAllocate(t *testing.T) {
	doc := []byte(`{"$version":7,"telemetryFrequencySecs":30,"other":{"a":[1,2,3]}}`)
	var r Reader
	allocs := testing.AllocsPerRun(100, func() {
		r.Reset(doc)
		for {
			tok, err := r.Next()
			if err != nil {
				return
			}
			if tok.Kind == TokenPropertyName && tok.TextEqual("other") {
				r.Next()
				r.SkipChildren()
			}
			if tok.Kind == TokenNumber {
				tok.Int32()
			}
		}
	})
	if allocs != 0 {
		t.Errorf("Reader allocated %.1f times per document", allocs)
	}
}
