package lang

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"
)

// parseLineData runs the default data parsers over the first line of text.
func parseLineData(t *testing.T, culture, text string) []Data {
	t.Helper()
	reg := DefaultRegistry(func() time.Time { return testNow })
	line := NewLexer(reg).Tokenize(culture, text)[0]
	data, err := ParseData(context.Background(), log.New(io.Discard, "", 0), reg.DataParsers(culture), culture, line)
	if err != nil {
		t.Fatalf("ParseData(%q) error: %v", text, err)
	}
	return data
}

func TestDataParsers(t *testing.T) {
	tests := []struct {
		culture string
		input   string
		typ     string
		want    string
	}{
		{"en-US", "42", TypeDecimal, "42"},
		{"en-US", "0xFF", TypeDecimal, "255"},
		{"en-US", "0b101", TypeDecimal, "5"},
		{"en-US", "0o17", TypeDecimal, "15"},
		{"en-US", "1,234.5", TypeDecimal, "1234.5"},
		{"en-US", "3½", TypeDecimal, "3.5"},
		{"en-US", "pi", TypeDecimal, "3.1415926536"},
		{"en-US", "20%", TypePercentage, "20%"},
		{"en-US", "12.5 percent", TypePercentage, "12.5%"},
		{"en-US", "$5", TypeCurrency, "5 USD"},
		{"en-US", "12.5 EUR", TypeCurrency, "12.50 EUR"},
		{"en-US", "5 km", TypeLength, "5 km"},
		{"en-US", "5m", TypeLength, "5 m"},
		{"en-US", "3 kg", TypeMass, "3 kg"},
		{"en-US", "2 hours", TypeDuration, "02:00:00"},
		{"en-US", "true", TypeBoolean, "true"},
		{"en-US", "half", TypeFraction, "0.5"},
		{"en-US", "three quarters", TypeFraction, "0.75"},
		{"en-US", "2026-03-14", TypeDateTime, "2026-03-14"},
		{"en-US", "tomorrow", TypeDateTime, "2026-03-15"},
		{"en-US", "2026-03-14 14:30 CET", TypeDateTime, "2026-03-14 14:30:00 +0100"},
		{"en-US", "2026-03-14 14:30 UTC-05:30", TypeDateTime, "2026-03-14 14:30:00 -0530"},
		{"fr-FR", "1,5", TypeDecimal, "1,5"},
		{"fr-FR", "faux", TypeBoolean, "faux"},
		{"fr-FR", "14/03/2026", TypeDateTime, "14/03/2026"},
	}

	for _, tt := range tests {
		data := parseLineData(t, tt.culture, tt.input)
		if len(data) != 1 {
			t.Errorf("ParseData(%q) returned %d data, want 1", tt.input, len(data))
			continue
		}
		d := data[0]
		if d.Type() != tt.typ {
			t.Errorf("ParseData(%q) type = %s, want %s", tt.input, d.Type(), tt.typ)
		}
		if got := d.DisplayText(tt.culture); got != tt.want {
			t.Errorf("ParseData(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if d.StartInLine() != 0 || d.EndInLine() != len(tt.input) {
			t.Errorf("ParseData(%q) span = %d..%d, want whole input", tt.input, d.StartInLine(), d.EndInLine())
		}
	}
}

func TestWordParsersAcceptAnyCultureTag(t *testing.T) {
	reg := DefaultRegistry(func() time.Time { return testNow })
	lx := NewLexer(reg)
	tests := []struct {
		parser  DataParser
		culture string
		input   string
		want    string
	}{
		{booleanParser{}, "en-US", "true", "true"},
		{booleanParser{}, "FR-fr", "faux", "faux"},
		{booleanParser{}, "fr-CA", "vrai", "vrai"},
		{newFractionParser(), "en-GB", "half", "0.5"},
		{newFractionParser(), "FR-FR", "moitié", "0,5"},
		{dateTimeParser{now: func() time.Time { return testNow }}, "en-US", "tomorrow", "2026-03-15"},
		{dateTimeParser{now: func() time.Time { return testNow }}, "fr-BE", "demain", "15/03/2026"},
	}
	for _, tt := range tests {
		line := lx.Tokenize(tt.culture, tt.input)[0]
		data, err := tt.parser.Parse(context.Background(), tt.culture, line)
		if err != nil {
			t.Fatalf("%s.Parse(%q, %q) error: %v", tt.parser.Name(), tt.culture, tt.input, err)
		}
		if len(data) != 1 {
			t.Errorf("%s.Parse(%q, %q) returned %d data, want 1", tt.parser.Name(), tt.culture, tt.input, len(data))
			continue
		}
		if got := data[0].DisplayText(tt.culture); got != tt.want {
			t.Errorf("%s.Parse(%q, %q) = %q, want %q", tt.parser.Name(), tt.culture, tt.input, got, tt.want)
		}
	}
}

func TestConflictResolution(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		// "m" is both meter and month; a neighbour decides
		{"1km + 1m", []string{TypeLength, TypeLength}},
		{"1h + 1m", []string{TypeDuration, TypeDuration}},
		{"1m + 1h", []string{TypeDuration, TypeDuration}},
		// no neighbour: lowest priority value wins
		{"5m", []string{TypeLength}},
		// the larger span wins
		{"10 USD + 20%", []string{TypeCurrency, TypePercentage}},
	}

	for _, tt := range tests {
		data := parseLineData(t, "en-US", tt.input)
		got := make([]string, len(data))
		for i, d := range data {
			got[i] = d.Type()
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("ParseData(%q) types = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSelectNonOverlappingDataIsSorted(t *testing.T) {
	text := "1 + 2"
	two := NewDecimal(DataLocation{LineText: text, Start: 4, End: 5}, NumberFromInt(2))
	one := NewDecimal(DataLocation{LineText: text, Start: 0, End: 1}, NumberFromInt(1))
	got := SelectNonOverlappingData([]Data{two, one, one})
	if len(got) != 2 || got[0].StartInLine() != 0 || got[1].StartInLine() != 4 {
		t.Errorf("SelectNonOverlappingData = %v, want 1 then 2", got)
	}
}

type failingParser struct{}

func (failingParser) Name() string { return "data.failing" }

func (failingParser) Parse(context.Context, string, TokenizedTextLine) ([]Data, error) {
	return nil, errors.New("broken")
}

type panickingParser struct{}

func (panickingParser) Name() string { return "data.panicking" }

func (panickingParser) Parse(context.Context, string, TokenizedTextLine) ([]Data, error) {
	panic("boom")
}

func TestParseDataIsolatesFailingParsers(t *testing.T) {
	reg := DefaultRegistry(nil)
	line := NewLexer(reg).Tokenize("en-US", "7")[0]
	parsers := append([]DataParser{failingParser{}, panickingParser{}}, reg.DataParsers("en-US")...)
	data, err := ParseData(context.Background(), log.New(io.Discard, "", 0), parsers, "en-US", line)
	if err != nil {
		t.Fatalf("ParseData error: %v", err)
	}
	if len(data) != 1 || data[0].DisplayText("en-US") != "7" {
		t.Errorf("ParseData = %v, want the decimal 7", data)
	}
}

func TestParseDataCancelled(t *testing.T) {
	reg := DefaultRegistry(nil)
	line := NewLexer(reg).Tokenize("en-US", "7")[0]
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseData(ctx, log.New(io.Discard, "", 0), reg.DataParsers("en-US"), "en-US", line); !errors.Is(err, context.Canceled) {
		t.Errorf("ParseData with cancelled context error = %v, want context.Canceled", err)
	}
}
