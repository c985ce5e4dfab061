package main

import (
	"image/color"

	"smartcalc/app/lang"
)

// TokenKind represents the category of a syntax token.
type TokenKind int

const (
	TokenPlain TokenKind = iota
	TokenKeyword
	TokenString
	TokenNumber
	TokenComment
	TokenOperator
	TokenVariable
	TokenUnit
	TokenEquals
	TokenParen
	TokenHeader
)

// Token is a span of text with a syntax category.
type Token struct {
	Text string
	Kind TokenKind
}

// tokenColors maps token kinds to colors. Dark-theme oriented.
var tokenColors = map[TokenKind]color.NRGBA{
	TokenPlain:    {R: 0xD4, G: 0xD4, B: 0xD4, A: 0xFF}, // light gray
	TokenKeyword:  {R: 0x56, G: 0x9C, B: 0xD6, A: 0xFF}, // blue
	TokenString:   {R: 0xCE, G: 0x91, B: 0x78, A: 0xFF}, // orange
	TokenNumber:   {R: 0xB5, G: 0xCE, B: 0xA8, A: 0xFF}, // green
	TokenComment:  {R: 0x6A, G: 0x99, B: 0x55, A: 0xFF}, // dark green
	TokenOperator: {R: 0xD4, G: 0xD4, B: 0xD4, A: 0xFF}, // light gray
	TokenVariable: {R: 0x9C, G: 0xDB, B: 0xFE, A: 0xFF}, // light blue
	TokenUnit:     {R: 0x4E, G: 0xC9, B: 0xB0, A: 0xFF}, // teal
	TokenEquals:   {R: 0xD4, G: 0xD4, B: 0xD4, A: 0xFF}, // light gray
	TokenParen:    {R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}, // yellow
	TokenHeader:   {R: 0xC5, G: 0x86, B: 0xC0, A: 0xFF}, // purple
}

// TokenColor returns the color for a token kind.
func TokenColor(kind TokenKind) color.NRGBA {
	if c, ok := tokenColors[kind]; ok {
		return c
	}
	return tokenColors[TokenPlain]
}

// langTokenToHighlight maps a lang.TokenType to a highlight TokenKind.
func langTokenToHighlight(t lang.TokenType) TokenKind {
	switch t {
	case lang.TokenDigit, lang.TokenType(lang.TypeDecimal), lang.TokenType(lang.TypeFraction), lang.TokenType(lang.TypePercentage):
		return TokenNumber
	case lang.TokenType(lang.TypeBoolean), lang.TokenIf, lang.TokenThen, lang.TokenElse, lang.TokenConversion:
		return TokenKeyword
	case lang.TokenType(lang.TypeDateTime):
		return TokenString
	case lang.TokenVariable:
		return TokenVariable
	case lang.TokenAddition, lang.TokenSubtraction, lang.TokenMultiply, lang.TokenDivision,
		lang.TokenEquality, lang.TokenNoEquality, lang.TokenLessThan, lang.TokenLessThanOrEqualTo,
		lang.TokenGreaterThan, lang.TokenGreaterThanOrEqualTo:
		return TokenOperator
	case lang.TokenLeftParenth, lang.TokenRightParenth:
		return TokenParen
	case lang.TokenAssignment:
		return TokenEquals
	case lang.TokenComment:
		return TokenComment
	case lang.TokenHeader:
		return TokenHeader
	case lang.TokenType(lang.TypeCurrency), lang.TokenType(lang.TypeLength), lang.TokenType(lang.TypeArea),
		lang.TokenType(lang.TypeVolume), lang.TokenType(lang.TypeMass), lang.TokenType(lang.TypeSpeed),
		lang.TokenType(lang.TypeAngle), lang.TokenType(lang.TypeTemperature), lang.TokenType(lang.TypeInformation),
		lang.TokenType(lang.TypeDuration):
		return TokenUnit
	default:
		return TokenPlain
	}
}

// Highlight splits line into colored spans from its lexer tokens. Gaps
// between tokens stay plain; comments and headers color the rest of the line.
func Highlight(line string, tokens []lang.Token) []Token {
	if line == "" {
		return nil
	}
	var result []Token
	lastEnd := 0
	for _, lt := range tokens {
		if lt.StartInLine < lastEnd || lt.EndInLine > len(line) {
			continue
		}
		if lt.StartInLine > lastEnd {
			result = append(result, Token{Text: line[lastEnd:lt.StartInLine], Kind: TokenPlain})
		}
		kind := langTokenToHighlight(lt.Type)
		if kind == TokenComment || (kind == TokenHeader && lt.StartInLine == 0) {
			return append(result, Token{Text: line[lt.StartInLine:], Kind: kind})
		}
		result = append(result, Token{Text: line[lt.StartInLine:lt.EndInLine], Kind: kind})
		lastEnd = lt.EndInLine
	}
	if lastEnd < len(line) {
		result = append(result, Token{Text: line[lastEnd:], Kind: TokenPlain})
	}
	return result
}

// Tokenize highlights a line with the plain lexer, before data parsing.
func Tokenize(lx *lang.Lexer, culture, line string) []Token {
	tl := lx.TokenizeLine(culture, 0, 0, line, nil, nil)
	return Highlight(line, tl.Tokens)
}
