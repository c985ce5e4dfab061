package main

import (
	"testing"

	"smartcalc/app/lang"
)

func TestLineResults(t *testing.T) {
	p := lang.NewParserAndInterpreter(nil, lang.Config{Culture: "en-US"})
	lines, err := p.Run(t.Context(), "en-US", "a = 2\na * 3\n\n20km + 30h\n// note")
	if err != nil {
		t.Fatal(err)
	}
	got := LineResults(lines, "en-US")
	want := []LineResult{
		{"2", ResultVariable},
		{"6", ResultValue},
		{"", ResultValue},
		{"Incompatible units", ResultError},
		{"", ResultValue},
	}
	if len(got) != len(want) {
		t.Fatalf("LineResults returned %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestVisibleLines(t *testing.T) {
	tests := []struct {
		scrollY, height, lineHeight, count int
		first, last                        int
	}{
		{0, 100, 20, 100, 0, 7},
		{0, 100, 20, 3, 0, 3},
		{45, 100, 20, 100, 2, 9},
		{-10, 100, 20, 100, 0, 7},
		{400, 100, 20, 10, 20, 20},
		{0, 100, 0, 100, 0, 8},
	}
	for _, tt := range tests {
		first, last := visibleLines(tt.scrollY, tt.height, tt.lineHeight, tt.count)
		if first != tt.first || last != tt.last {
			t.Errorf("visibleLines(%d, %d, %d, %d) = %d, %d, want %d, %d",
				tt.scrollY, tt.height, tt.lineHeight, tt.count, first, last, tt.first, tt.last)
		}
	}
}

func TestClampRatio(t *testing.T) {
	tests := []struct {
		ratio   float32
		windowW int
		want    float32
	}{
		{0.5, 1000, 0.5},
		{0.01, 1000, 0.08},
		{0.9, 1000, maxResultRatio},
		{0.3, 0, 0.3},
	}
	for _, tt := range tests {
		if got := clampRatio(tt.ratio, tt.windowW); got != tt.want {
			t.Errorf("clampRatio(%v, %d) = %v, want %v", tt.ratio, tt.windowW, got, tt.want)
		}
	}

	var d ResultsDivider
	if got := d.Width(900); got != 300 {
		t.Errorf("default width of 900px window = %d, want 300", got)
	}
}
