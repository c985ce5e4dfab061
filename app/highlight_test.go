package main

import (
	"strings"
	"testing"

	"smartcalc/app/lang"
)

func TestTokenizeCoversLine(t *testing.T) {
	lx := lang.NewLexer(lang.DefaultRegistry(nil))
	for _, line := range []string{
		"",
		"price = 10 * (2 + 3)",
		"if a > 2 then b = 1 else b = 2",
		"5 km to m // distance",
		"# Budget 2026",
		"  leading spaces",
	} {
		var b strings.Builder
		for _, tok := range Tokenize(lx, "en-US", line) {
			b.WriteString(tok.Text)
		}
		if b.String() != line {
			t.Errorf("Tokenize(%q) joined = %q", line, b.String())
		}
	}
}

func TestTokenizeKinds(t *testing.T) {
	lx := lang.NewLexer(lang.DefaultRegistry(nil))
	tests := []struct {
		line string
		text string
		want TokenKind
	}{
		{"a = 1", "=", TokenEquals},
		{"a = 1", "1", TokenNumber},
		{"(1)", "(", TokenParen},
		{"1 + 2", "+", TokenOperator},
		{"if a then b", "then", TokenKeyword},
		{"1 // note here", "// note here", TokenComment},
		{"# Title", "# Title", TokenHeader},
	}

	for _, tt := range tests {
		found := false
		for _, tok := range Tokenize(lx, "en-US", tt.line) {
			if tok.Text == tt.text {
				found = true
				if tok.Kind != tt.want {
					t.Errorf("Tokenize(%q) %q kind = %v, want %v", tt.line, tt.text, tok.Kind, tt.want)
				}
			}
		}
		if !found {
			t.Errorf("Tokenize(%q) has no token %q", tt.line, tt.text)
		}
	}
}

func TestHighlightUsesDataTokens(t *testing.T) {
	p := lang.NewParserAndInterpreter(nil, lang.Config{Culture: "en-US"})
	lines, err := p.Run(t.Context(), "en-US", "5 km + 2 m")
	if err != nil {
		t.Fatal(err)
	}
	toks := Highlight("5 km + 2 m", lines[0].TokenizedTextLine.Tokens)
	if toks[0].Text != "5 km" || toks[0].Kind != TokenUnit {
		t.Errorf("first span = %+v, want unit 5 km", toks[0])
	}
}
