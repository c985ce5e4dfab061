package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEditorDocument(t *testing.T) {
	es := NewEditorState()
	if es.LineCount() != 1 || es.Title() != "untitled — smartcalc" || es.SaveName() != untitledName {
		t.Fatalf("new editor: %d lines, title %q, save name %q", es.LineCount(), es.Title(), es.SaveName())
	}

	path := filepath.Join(t.TempDir(), "budget.calc")
	if err := os.WriteFile(path, []byte("rent = 1200\r\nfood = 300\rrent + food"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := es.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if got := es.Editor.Text(); got != "rent = 1200\nfood = 300\nrent + food" {
		t.Errorf("loaded text = %q", got)
	}
	if es.LineCount() != 3 || len(es.Lines()) != 3 {
		t.Errorf("LineCount = %d, len(Lines) = %d, want 3", es.LineCount(), len(es.Lines()))
	}
	es.Dirty = true
	if got := es.Title(); got != "* budget.calc — smartcalc" {
		t.Errorf("Title = %q", got)
	}

	out := filepath.Join(t.TempDir(), "copy.calc")
	if err := es.SaveFile(out); err != nil {
		t.Fatal(err)
	}
	if es.Dirty || es.SaveName() != "copy.calc" {
		t.Errorf("after save: dirty %v, save name %q", es.Dirty, es.SaveName())
	}
}

func TestFormatExport(t *testing.T) {
	lines := []string{"# Budget", "rent = 1200", "rent * 12", "", "1 km + 2 h"}
	results := []LineResult{
		{},
		{"1200", ResultVariable},
		{"14400", ResultValue},
		{},
		{"Incompatible units", ResultError},
	}
	want := "# Budget\n" +
		"rent = 1200  = 1200\n" +
		"rent * 12    = 14400\n" +
		"\n" +
		"1 km + 2 h   = Incompatible units\n"
	if got := FormatExport(lines, results); got != want {
		t.Errorf("FormatExport =\n%s\nwant\n%s", got, want)
	}
}
