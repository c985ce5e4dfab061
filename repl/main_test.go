package main

import (
	"context"
	"io"
	"log"
	"math/big"
	"strings"
	"testing"

	"smartcalc/app/lang"
)

func newTestSession() *session {
	interp := lang.NewParserAndInterpreter(nil, lang.Config{
		Culture: "en-US",
		Logger:  log.New(io.Discard, "", 0),
		Rates:   lang.StaticRates{"USD": big.NewRat(1, 1), "EUR": big.NewRat(1, 2)},
	})
	return &session{interp: interp}
}

func TestSessionKeepsVariables(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()
	tests := []struct {
		input string
		want  string
	}{
		{"rent = 1200", "1200"},
		{"food = 300", "300"},
		{"// totals", ""},
		{"rent + food", "1500"},
		{"10 USD to EUR", "5 EUR"},
		{"20km + 30h", "Incompatible units"},
	}

	for _, tt := range tests {
		r, err := s.eval(ctx, tt.input)
		if err != nil {
			t.Fatalf("eval(%q) error: %v", tt.input, err)
		}
		if got := r.DisplayText("en-US"); got != tt.want {
			t.Errorf("eval(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSessionClearAndRender(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()
	s.eval(ctx, "total = 4")
	s.eval(ctx, "total * 3")
	s.clear()
	if len(s.lines) != 0 {
		t.Fatalf("document has %d lines after clear", len(s.lines))
	}
	s.eval(ctx, "a = 2")
	s.eval(ctx, "a * 21")
	var b strings.Builder
	s.render(&b)
	want := "a = 2   = 2\na * 21  = 42\n"
	if b.String() != want {
		t.Errorf("render = %q, want %q", b.String(), want)
	}
}

func TestSessionCancelledEvalDropsLine(t *testing.T) {
	s := newTestSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.eval(ctx, "1 + 1"); err == nil {
		t.Fatal("eval with cancelled context succeeded")
	}
	if len(s.lines) != 0 {
		t.Errorf("document has %d lines after a cancelled eval, want 0", len(s.lines))
	}
}
