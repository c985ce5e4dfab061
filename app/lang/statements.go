package lang

import (
	"context"
	"strings"
)

// Statement unit names.
const (
	StmtComment             = "comment"
	StmtHeader              = "header"
	StmtCondition           = "condition"
	StmtVariableDeclaration = "variable_declaration"
	StmtNumericalCalculus   = "numerical_calculus"
)

// restOfLine returns the line text after offset, without the line break.
func restOfLine(t Token) string {
	return strings.TrimSpace(strings.TrimRight(t.LineText[t.EndInLine:], "\r\n"))
}

// consumeRest advances cur to its bound and returns the last token.
func consumeRest(cur *TokenCursor) Token {
	var last Token
	for !cur.Done() {
		last = cur.Next()
	}
	return last
}

// commentStatementParser reads "// text" up to the end of the line.
type commentStatementParser struct{}

func (commentStatementParser) Name() string { return StmtComment }

func (commentStatementParser) TryParseAndInterpretStatement(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *StatementResult) (bool, error) {
	if cur.Peek().Type != TokenComment {
		return false, nil
	}
	marker := cur.Next()
	last := marker
	if t := consumeRest(cur); t.Length() > 0 {
		last = t
	}
	*result = StatementResult{Statement: &CommentStatement{
		span: span{First: marker, Last: last},
		Text: restOfLine(marker),
	}}
	return true, nil
}

// headerStatementParser reads "# title"; the marker must open the line.
type headerStatementParser struct{}

func (headerStatementParser) Name() string { return StmtHeader }

func (headerStatementParser) TryParseAndInterpretStatement(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *StatementResult) (bool, error) {
	if cur.Pos() != 0 || cur.Peek().Type != TokenHeader {
		return false, nil
	}
	marker := cur.Next()
	last := marker
	if t := consumeRest(cur); t.Length() > 0 {
		last = t
	}
	*result = StatementResult{Statement: &HeaderStatement{
		span:  span{First: marker, Last: last},
		Title: restOfLine(marker),
	}}
	return true, nil
}

// conditionStatementParser reads "if cond then stmt [else stmt]". Only the
// branch selected by the condition is parsed and interpreted.
type conditionStatementParser struct{}

func (conditionStatementParser) Name() string { return StmtCondition }

func (conditionStatementParser) TryParseAndInterpretStatement(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *StatementResult) (bool, error) {
	if cur.Peek().Type != TokenIf {
		return false, nil
	}
	ifTok := cur.Next()
	tokens := cur.Tokens()
	thenAt := FindMatchingClose(tokens, cur.Pos(), cur.End(), isTokenOf(TokenThen))
	if thenAt < 0 || tokens[thenAt].Type != TokenThen {
		return false, nil
	}
	condCur := cur.Bounded(thenAt)
	cond, ok, err := pc.ParseExpression(ctx, condCur)
	if err != nil || !ok {
		return false, err
	}
	if !condCur.Done() {
		return false, nil
	}

	end := FindMatchingClose(tokens, thenAt+1, cur.End(), isTokenOf(TokenComment))
	if end < 0 || tokens[end].Type != TokenComment {
		end = cur.End()
	}
	elseAt := FindMatchingClose(tokens, thenAt+1, end, isTokenOf(TokenElse))
	if elseAt >= 0 && tokens[elseAt].Type != TokenElse {
		elseAt = -1
	}
	thenEnd := end
	if elseAt >= 0 {
		thenEnd = elseAt
	}

	stmt := &ConditionStatement{
		span:      span{First: ifTok, Last: tokens[end-1]},
		Condition: cond.Expression,
	}
	*result = StatementResult{Statement: stmt}
	cur.Seek(end)

	if cond.Data == nil {
		return true, nil
	}
	b, isBool := cond.Data.(*Boolean)
	if !isBool {
		return false, newDataOperationError(ErrConditionNotBoolean)
	}
	branch := &TokenCursor{tokens: tokens, pos: thenAt + 1, end: thenEnd}
	if !b.Value {
		if elseAt < 0 {
			return true, nil
		}
		branch = &TokenCursor{tokens: tokens, pos: elseAt + 1, end: end}
	}
	res, ok, err := pc.ParseStatement(ctx, branch, StmtVariableDeclaration, StmtNumericalCalculus)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	if b.Value {
		stmt.Then = res.Statement
	} else {
		stmt.Else = res.Statement
	}
	result.Data = res.Data
	return true, nil
}

func isTokenOf(typ TokenType) func(Token) bool {
	return func(t Token) bool { return t.Type == typ }
}

// variableDeclarationStatementParser reads "name = expression". A name is
// one or more word tokens; it may span several words.
type variableDeclarationStatementParser struct{}

func (variableDeclarationStatementParser) Name() string { return StmtVariableDeclaration }

func (variableDeclarationStatementParser) TryParseAndInterpretStatement(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *StatementResult) (bool, error) {
	first := cur.Peek()
	var last Token
	for {
		if cur.Done() {
			return false, nil
		}
		t := cur.Peek()
		if t.Type == TokenAssignment {
			break
		}
		if t.Type != TokenVariable && !t.IsWordLike() {
			return false, nil
		}
		last = cur.Next()
	}
	if last.Length() == 0 {
		return false, nil
	}
	cur.Next() // =
	name := first.LineText[first.StartInLine:last.EndInLine]

	res, ok, err := pc.ParseExpression(ctx, cur)
	if err != nil || !ok {
		return false, err
	}
	pc.Variables.Set(name, res.Data)
	*result = StatementResult{
		Statement: &VariableDeclarationStatement{
			span:       span{First: first, Last: res.Expression.LastToken()},
			Name:       name,
			Expression: res.Expression,
		},
		Data: res.Data,
	}
	return true, nil
}

// numericalCalculusStatementParser reads a bare expression.
type numericalCalculusStatementParser struct{}

func (numericalCalculusStatementParser) Name() string { return StmtNumericalCalculus }

func (numericalCalculusStatementParser) TryParseAndInterpretStatement(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *StatementResult) (bool, error) {
	res, ok, err := pc.ParseExpression(ctx, cur)
	if err != nil || !ok {
		return false, err
	}
	*result = StatementResult{
		Statement: &NumericalCalculusStatement{
			span:       span{First: res.Expression.FirstToken(), Last: res.Expression.LastToken()},
			Expression: res.Expression,
		},
		Data: res.Data,
	}
	return true, nil
}
