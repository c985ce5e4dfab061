package lang

import (
	"reflect"
	"testing"
)

func testLexer() *Lexer {
	return NewLexer(DefaultRegistry(nil))
}

func tokenTypes(l TokenizedTextLine) []TokenType {
	out := make([]TokenType, len(l.Tokens))
	for i, t := range l.Tokens {
		out[i] = t.Type
	}
	return out
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\r\nb\nc", []string{"a\r\n", "b\n", "c"}},
		{"a\n", []string{"a\n", ""}},
		{"a\rb", []string{"a\rb"}},
	}

	for _, tt := range tests {
		got := SplitLines(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenType
	}{
		{"12 + abc", []TokenType{TokenDigit, TokenAddition, TokenWord}},
		{"(1)", []TokenType{TokenLeftParenth, TokenDigit, TokenRightParenth}},
		{"5 inches", []TokenType{TokenDigit, TokenWord}},
		{"5 in m", []TokenType{TokenDigit, TokenConversion, TokenWord}},
		{"if a then b else c", []TokenType{TokenIf, TokenWord, TokenThen, TokenWord, TokenElse, TokenWord}},
		{"a is greater than b", []TokenType{TokenWord, TokenGreaterThan, TokenWord}},
		{"a >= b", []TokenType{TokenWord, TokenGreaterThanOrEqualTo, TokenWord}},
		{"y = 1 // note", []TokenType{TokenWord, TokenAssignment, TokenDigit, TokenComment, TokenWord}},
		{"# Title", []TokenType{TokenHeader, TokenWord}},
		{"π", []TokenType{TokenSymbolOrPunctuation}},
		{"1 x 2", []TokenType{TokenDigit, TokenMultiply, TokenDigit}},
		{"xylophone", []TokenType{TokenWord}},
		{"x1 = 4", []TokenType{TokenWord, TokenAssignment, TokenDigit}},
		{"2x3", []TokenType{TokenDigit, TokenMultiply, TokenDigit}},
		{"total2026 + 1", []TokenType{TokenWord, TokenAddition, TokenDigit}},
		{"in2 in m", []TokenType{TokenWord, TokenConversion, TokenWord}},
	}

	lx := testLexer()
	for _, tt := range tests {
		lines := lx.Tokenize("en-US", tt.input)
		if len(lines) != 1 {
			t.Errorf("Tokenize(%q) returned %d lines, want 1", tt.input, len(lines))
			continue
		}
		if got := tokenTypes(lines[0]); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTokenizeFrench(t *testing.T) {
	lx := testLexer()
	got := tokenTypes(lx.Tokenize("fr-FR", "si a alors b sinon c")[0])
	want := []TokenType{TokenIf, TokenWord, TokenThen, TokenWord, TokenElse, TokenWord}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize(fr) = %v, want %v", got, want)
	}
}

func TestTokenizeLinePositions(t *testing.T) {
	lx := testLexer()
	lines := lx.Tokenize("en-US", "1 + 2\r\nabc\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	second := lines[1]
	if second.Start != 7 || second.LineNumber != 1 || second.EndIncludingLineBreak != 11 {
		t.Errorf("line 1 = start %d number %d end %d, want 7 1 11", second.Start, second.LineNumber, second.EndIncludingLineBreak)
	}
	if second.Text() != "abc" {
		t.Errorf("line 1 text = %q, want abc", second.Text())
	}
	tok := second.Tokens[0]
	if tok.StartInLine != 0 || tok.EndInLine != 3 || tok.Text() != "abc" {
		t.Errorf("token = %v, want abc at 0..3", tok)
	}
}

func TestTokenizeIsIdempotent(t *testing.T) {
	lx := testLexer()
	for _, input := range []string{
		"price = 10 USD\nprice * 3 // total",
		"if 1 < 2 then 3 else 4",
		"# header\n\n20% off 50",
	} {
		a := lx.Tokenize("en-US", input)
		b := lx.Tokenize("en-US", input)
		if len(a) != len(b) {
			t.Errorf("Tokenize(%q) line counts differ", input)
			continue
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				t.Errorf("Tokenize(%q) line %d differs between runs", input, i)
			}
		}
	}
}

func TestTokenizeLineWithVariablesAndData(t *testing.T) {
	lx := testLexer()
	text := "total cost + 5 km"
	five := NewDecimal(DataLocation{LineText: text, Start: 13, End: 17}, NumberFromInt(5))

	line := lx.TokenizeLine("en-US", 0, 0, text, []string{"total", "total cost"}, []Data{five})
	want := []TokenType{TokenVariable, TokenAddition, TokenType(TypeDecimal)}
	if got := tokenTypes(line); !reflect.DeepEqual(got, want) {
		t.Fatalf("TokenizeLine = %v, want %v", got, want)
	}
	if got := line.Tokens[0].Text(); got != "total cost" {
		t.Errorf("variable token = %q, want longest name", got)
	}
	if line.Tokens[2].Data != five {
		t.Error("data token does not carry its datum")
	}

	// a known name does not match the start of a longer word
	line = lx.TokenizeLine("en-US", 0, 0, "totals", []string{"total"}, nil)
	if got := tokenTypes(line); !reflect.DeepEqual(got, []TokenType{TokenWord}) {
		t.Errorf("TokenizeLine(totals) = %v, want [Word]", got)
	}
}

func TestFindMatchingClose(t *testing.T) {
	lx := testLexer()
	isThen := func(t Token) bool { return t.Type == TokenThen }
	tests := []struct {
		input string
		start int
		want  int
	}{
		{"if a then b", 1, 2},
		{"if (a then b) then c", 1, 6},
		{"(a + b) c", 1, 4},
		{"a b c", 0, -1},
	}

	for _, tt := range tests {
		tokens := lx.Tokenize("en-US", tt.input)[0].Tokens
		got := FindMatchingClose(tokens, tt.start, len(tokens), isThen)
		if got != tt.want {
			t.Errorf("FindMatchingClose(%q, %d) = %d, want %d", tt.input, tt.start, got, tt.want)
		}
	}
}

func TestTokenCursor(t *testing.T) {
	lx := testLexer()
	cur := lx.Tokenize("en-US", "1 + 2 + 3")[0].Cursor()

	if got := cur.Next().Text(); got != "1" {
		t.Errorf("Next() = %q, want 1", got)
	}
	trial := cur.Clone()
	trial.Next()
	if cur.Pos() != 1 {
		t.Errorf("Clone advanced the original to %d", cur.Pos())
	}
	bounded := cur.Bounded(3)
	n := 0
	for !bounded.Done() {
		bounded.Next()
		n++
	}
	if n != 2 {
		t.Errorf("bounded cursor yielded %d tokens, want 2", n)
	}
	if prev, ok := cur.Previous(); !ok || prev.Text() != "1" {
		t.Errorf("Previous() = %q, %v, want 1", prev.Text(), ok)
	}
}
