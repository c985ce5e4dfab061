package lang

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// TokenizedTextLine is one line of a document and its tokens.
type TokenizedTextLine struct {
	Start                      int // offset of the line in the document
	LineNumber                 int
	EndIncludingLineBreak      int
	LineTextIncludingLineBreak string
	Tokens                     []Token
}

// Equal reports whether both lines have the same text, position and tokens.
func (l TokenizedTextLine) Equal(o TokenizedTextLine) bool {
	if l.Start != o.Start || l.LineNumber != o.LineNumber ||
		l.LineTextIncludingLineBreak != o.LineTextIncludingLineBreak || len(l.Tokens) != len(o.Tokens) {
		return false
	}
	for i := range l.Tokens {
		a, b := l.Tokens[i], o.Tokens[i]
		if a.StartInLine != b.StartInLine || a.EndInLine != b.EndInLine || a.Type != b.Type {
			return false
		}
	}
	return true
}

// Text returns the line without its line break.
func (l TokenizedTextLine) Text() string {
	return strings.TrimRight(l.LineTextIncludingLineBreak, "\r\n")
}

// Cursor returns a cursor over the line's tokens.
func (l TokenizedTextLine) Cursor() *TokenCursor {
	return NewTokenCursor(l.Tokens)
}

// symbolRunes are non-ASCII characters treated as symbols rather than
// letters or digits.
const symbolRunes = "π¾½¼º¹²³µª\u00ad"

func classifyRune(r rune) TokenType {
	switch {
	case r == '\r' || r == '\n':
		return TokenNewLine
	case r == '(':
		return TokenLeftParenth
	case r == ')':
		return TokenRightParenth
	case strings.ContainsRune(symbolRunes, r):
		return TokenSymbolOrPunctuation
	case unicode.IsDigit(r):
		return TokenDigit
	case unicode.IsSpace(r):
		return TokenWhitespace
	case unicode.IsLetter(r) || r == '_':
		return TokenWord
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return TokenSymbolOrPunctuation
	}
	return TokenUnsupportedCharacter
}

// SplitLines splits text after each "\n" or "\r\n". Every line keeps its line
// break. An empty text yields one empty line.
func SplitLines(text string) []string {
	var lines []string
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return append(lines, text)
}

type grammarLiteral struct {
	text string
	typ  TokenType
}

// Lexer turns document text into tokenized lines. Grammar tables are built
// from the registry once per culture and cached on the Lexer.
type Lexer struct {
	registry *Registry

	mu    sync.Mutex
	cache map[string][]grammarLiteral
}

// NewLexer returns a lexer reading grammars from reg.
func NewLexer(reg *Registry) *Lexer {
	return &Lexer{registry: reg, cache: make(map[string][]grammarLiteral)}
}

func (l *Lexer) grammar(culture string) []grammarLiteral {
	l.mu.Lock()
	defer l.mu.Unlock()
	if g, ok := l.cache[culture]; ok {
		return g
	}
	var lits []grammarLiteral
	seen := map[string]bool{}
	for _, p := range l.registry.Grammars(culture) {
		for typ, forms := range p.Grammar().Tokens {
			for _, f := range forms {
				key := strings.ToLower(f)
				if seen[key] {
					continue
				}
				seen[key] = true
				lits = append(lits, grammarLiteral{text: f, typ: typ})
			}
		}
	}
	sort.Slice(lits, func(i, j int) bool {
		if len(lits[i].text) != len(lits[j].text) {
			return len(lits[i].text) > len(lits[j].text)
		}
		return lits[i].text < lits[j].text
	})
	l.cache[culture] = lits
	return lits
}

// Tokenize splits text into lines and tokenizes each of them without any
// knowledge of data or variables.
func (l *Lexer) Tokenize(culture, text string) []TokenizedTextLine {
	culture = MatchCulture(culture)
	parts := SplitLines(text)
	lines := make([]TokenizedTextLine, 0, len(parts))
	start := 0
	for i, p := range parts {
		lines = append(lines, l.TokenizeLine(culture, i, start, p, nil, nil))
		start += len(p)
	}
	return lines
}

// TokenizeLine tokenizes a single line. Spans of knownData become single
// data tokens and knownVariableNames become Variable tokens.
func (l *Lexer) TokenizeLine(culture string, lineNumber, start int, lineText string, knownVariableNames []string, knownData []Data) TokenizedTextLine {
	culture = MatchCulture(culture)
	line := TokenizedTextLine{
		Start:                      start,
		LineNumber:                 lineNumber,
		EndIncludingLineBreak:      start + len(lineText),
		LineTextIncludingLineBreak: lineText,
	}
	grammar := l.grammar(culture)
	vars := sortedVariableNames(knownVariableNames)
	data := append([]Data(nil), knownData...)
	sort.SliceStable(data, func(i, j int) bool { return data[i].StartInLine() < data[j].StartInLine() })

	pos := 0
	for pos < len(lineText) {
		r, size := utf8.DecodeRuneInString(lineText[pos:])
		class := classifyRune(r)
		if class == TokenWhitespace || class == TokenNewLine {
			pos += size
			continue
		}
		if d := findDataAt(data, pos); d != nil && d.EndInLine() > pos {
			line.Tokens = append(line.Tokens, Token{LineText: lineText, StartInLine: pos, EndInLine: d.EndInLine(), Type: TokenType(d.Type()), Data: d})
			pos = d.EndInLine()
			continue
		}
		if end, typ, ok := matchGrammar(lineText, pos, grammar); ok {
			line.Tokens = append(line.Tokens, Token{LineText: lineText, StartInLine: pos, EndInLine: end, Type: typ})
			pos = end
			continue
		}
		if end, ok := matchVariable(lineText, pos, vars); ok {
			line.Tokens = append(line.Tokens, Token{LineText: lineText, StartInLine: pos, EndInLine: end, Type: TokenVariable})
			pos = end
			continue
		}
		end := pos + size
		if class == TokenDigit || class == TokenWord {
			for end < len(lineText) {
				r2, s2 := utf8.DecodeRuneInString(lineText[end:])
				c2 := classifyRune(r2)
				// words may carry digits, as in "x1" or "total2026"
				if c2 != class && (class != TokenWord || c2 != TokenDigit) {
					break
				}
				end += s2
			}
		}
		line.Tokens = append(line.Tokens, Token{LineText: lineText, StartInLine: pos, EndInLine: end, Type: class})
		pos = end
	}
	return line
}

// findDataAt binary-searches data sorted by start for one starting at pos.
func findDataAt(data []Data, pos int) Data {
	i := sort.Search(len(data), func(i int) bool { return data[i].StartInLine() >= pos })
	if i < len(data) && data[i].StartInLine() == pos {
		return data[i]
	}
	return nil
}

func isWordRune(r rune) bool {
	c := classifyRune(r)
	return c == TokenWord || c == TokenDigit
}

// continuesWord reports whether a literal ending at end with last rune r is
// followed by more of the same word. Letters and digits both continue it.
func continuesWord(text string, end int, r rune) bool {
	if !isWordRune(r) || end >= len(text) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return isWordRune(next)
}

// betweenDigits reports whether the literal text[pos:end] sits directly
// between two digits, like the "x" of "2x3".
func betweenDigits(text string, pos, end int) bool {
	if pos == 0 || end >= len(text) {
		return false
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:pos])
	next, _ := utf8.DecodeRuneInString(text[end:])
	return classifyRune(prev) == TokenDigit && classifyRune(next) == TokenDigit
}

func matchGrammar(text string, pos int, grammar []grammarLiteral) (int, TokenType, bool) {
	for _, g := range grammar {
		end := pos + len(g.text)
		if end > len(text) || !strings.EqualFold(text[pos:end], g.text) {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(g.text)
		if continuesWord(text, end, last) && !betweenDigits(text, pos, end) {
			continue
		}
		return end, g.typ, true
	}
	return 0, "", false
}

func matchVariable(text string, pos int, names []string) (int, bool) {
	for _, n := range names {
		end := pos + len(n)
		if end > len(text) || text[pos:end] != n {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(n)
		if continuesWord(text, end, last) {
			continue
		}
		return end, true
	}
	return 0, false
}

func sortedVariableNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
