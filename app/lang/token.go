package lang

import (
	"fmt"
	"strings"
)

// TokenType names the lexical category of a token. Character classes and
// grammar token types are fixed strings; data tokens use the data type name.
type TokenType string

// Character classes.
const (
	TokenNewLine              TokenType = "NewLine"
	TokenDigit                TokenType = "Digit"
	TokenWhitespace           TokenType = "Whitespace"
	TokenLeftParenth          TokenType = "LeftParenth"
	TokenRightParenth         TokenType = "RightParenth"
	TokenSymbolOrPunctuation  TokenType = "SymbolOrPunctuation"
	TokenWord                 TokenType = "Word"
	TokenUnsupportedCharacter TokenType = "UnsupportedCharacter"
	TokenVariable             TokenType = "Variable"
)

// Grammar token types.
const (
	TokenAddition             TokenType = "Addition_Operator"
	TokenSubtraction          TokenType = "Subtraction_Operator"
	TokenMultiply             TokenType = "Multiply_Operator"
	TokenDivision             TokenType = "Division_Operator"
	TokenEquality             TokenType = "Equality_Operator"
	TokenNoEquality           TokenType = "NoEquality_Operator"
	TokenLessThan             TokenType = "LessThan_Operator"
	TokenLessThanOrEqualTo    TokenType = "LessThanOrEqualTo_Operator"
	TokenGreaterThan          TokenType = "GreaterThan_Operator"
	TokenGreaterThanOrEqualTo TokenType = "GreaterThanOrEqualTo_Operator"
	TokenAssignment           TokenType = "Assignment_Operator"
	TokenIf                   TokenType = "If_Keyword"
	TokenThen                 TokenType = "Then_Keyword"
	TokenElse                 TokenType = "Else_Keyword"
	TokenComment              TokenType = "Comment_Operator"
	TokenHeader               TokenType = "Header_Operator"
	TokenConversion           TokenType = "Conversion_Keyword"
)

// Token is a span of a single line. Positions are byte offsets into LineText.
type Token struct {
	LineText    string
	StartInLine int
	EndInLine   int
	Type        TokenType
	Data        Data // non-nil for tokens produced from recognized data
}

// Length returns the byte length of the token.
func (t Token) Length() int {
	return t.EndInLine - t.StartInLine
}

// Text returns the source text covered by the token.
func (t Token) Text() string {
	return t.LineText[t.StartInLine:t.EndInLine]
}

// Is reports whether the token has the given type and, when text is not
// empty, the given text. Text comparison ignores case.
func (t Token) Is(typ TokenType, text string) bool {
	if t.Type != typ {
		return false
	}
	return text == "" || strings.EqualFold(t.Text(), text)
}

// IsCaseSensitive is like Is but compares text exactly.
func (t Token) IsCaseSensitive(typ TokenType, text string) bool {
	if t.Type != typ {
		return false
	}
	return text == "" || t.Text() == text
}

// IsWordLike reports whether the token text is made of letters, digits and
// underscores only and is not recognized data.
func (t Token) IsWordLike() bool {
	if t.Data != nil || t.Length() == 0 {
		return false
	}
	for _, r := range t.Text() {
		if r != '_' && r != ' ' && classifyRune(r) != TokenWord && classifyRune(r) != TokenDigit {
			return false
		}
	}
	return true
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d)", t.Type, t.Text(), t.StartInLine)
}

// TokenCursor walks a token slice up to an exclusive bound. Copies are
// independent, so a parser can explore on a copy and commit with Seek.
type TokenCursor struct {
	tokens []Token
	pos    int
	end    int
}

// NewTokenCursor returns a cursor over all tokens.
func NewTokenCursor(tokens []Token) *TokenCursor {
	return &TokenCursor{tokens: tokens, end: len(tokens)}
}

// Clone returns an independent copy of the cursor.
func (c *TokenCursor) Clone() *TokenCursor {
	cp := *c
	return &cp
}

// Bounded returns a copy of the cursor that stops before index end.
func (c *TokenCursor) Bounded(end int) *TokenCursor {
	if end > c.end {
		end = c.end
	}
	if end < c.pos {
		end = c.pos
	}
	return &TokenCursor{tokens: c.tokens, pos: c.pos, end: end}
}

// Done reports whether no token is left before the bound.
func (c *TokenCursor) Done() bool {
	return c.pos >= c.end
}

// Peek returns the current token. It must not be called when Done.
func (c *TokenCursor) Peek() Token {
	return c.tokens[c.pos]
}

// PeekAt returns the token n positions ahead, if within the bound.
func (c *TokenCursor) PeekAt(n int) (Token, bool) {
	i := c.pos + n
	if i < 0 || i >= c.end {
		return Token{}, false
	}
	return c.tokens[i], true
}

// Next returns the current token and advances.
func (c *TokenCursor) Next() Token {
	t := c.tokens[c.pos]
	c.pos++
	return t
}

// Pos returns the absolute index of the current token.
func (c *TokenCursor) Pos() int { return c.pos }

// End returns the exclusive bound.
func (c *TokenCursor) End() int { return c.end }

// Seek moves the cursor to an absolute index, clamped to the bound.
func (c *TokenCursor) Seek(pos int) {
	if pos > c.end {
		pos = c.end
	}
	c.pos = pos
}

// Tokens returns the underlying token slice.
func (c *TokenCursor) Tokens() []Token { return c.tokens }

// Previous returns the last consumed token.
func (c *TokenCursor) Previous() (Token, bool) {
	if c.pos == 0 {
		return Token{}, false
	}
	return c.tokens[c.pos-1], true
}

// FindMatchingClose scans tokens[start:end] keeping a parenthesis depth
// counter. It returns the index of the first token at depth 0 for which stop
// returns true, or the index of a right parenthesis that closes a group
// opened before start. It returns -1 when neither is found.
func FindMatchingClose(tokens []Token, start, end int, stop func(Token) bool) int {
	if end > len(tokens) {
		end = len(tokens)
	}
	depth := 0
	for i := start; i < end; i++ {
		t := tokens[i]
		if depth == 0 && stop != nil && stop(t) {
			return i
		}
		switch t.Type {
		case TokenLeftParenth:
			depth++
		case TokenRightParenth:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
