package lang

import (
	"context"
)

// Expression unit names.
const (
	ExprBinary   = "binary"
	ExprFunction = "function"
	ExprGroup    = "group"
	ExprVariable = "variable"
	ExprData     = "data"
)

// binaryExpressionParser parses operators by precedence climbing:
// relations, then addition and subtraction, then multiplication and
// division. Two adjacent operands get an implicit operator: a group after a
// value that is not a percentage multiplies, anything else adds.
type binaryExpressionParser struct{}

func (binaryExpressionParser) Name() string { return ExprBinary }

func (p binaryExpressionParser) TryParseAndInterpretExpression(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *ExpressionResult) (bool, error) {
	res, ok, err := p.parse(ctx, pc, cur, 0)
	if err != nil || !ok {
		return false, err
	}
	res, err = parseConversion(ctx, pc, cur, res)
	if err != nil {
		return false, err
	}
	*result = res
	return true, nil
}

func (p binaryExpressionParser) parse(ctx context.Context, pc *ParserContext, cur *TokenCursor, minPrec int) (ExpressionResult, bool, error) {
	left, ok, err := pc.ParseOperand(ctx, cur)
	if err != nil || !ok {
		return ExpressionResult{}, false, err
	}
	for !cur.Done() {
		op, implicit, ok := peekOperator(cur, left.Data)
		if !ok || op.precedence() < minPrec {
			break
		}
		trial := cur.Clone()
		if !implicit {
			trial.Next()
		}
		right, ok, err := p.parse(ctx, pc, trial, op.precedence()+1)
		if err != nil {
			return ExpressionResult{}, false, err
		}
		if !ok {
			// the operator stays unconsumed
			break
		}
		cur.Seek(trial.Pos())
		data, err := pc.Operations.PerformOperation(ctx, left.Data, op, right.Data)
		if err != nil {
			return ExpressionResult{}, false, err
		}
		left = ExpressionResult{
			Expression: &BinaryOperatorExpression{
				span:     span{First: left.Expression.FirstToken(), Last: right.Expression.LastToken()},
				Left:     left.Expression,
				Operator: op,
				Right:    right.Expression,
				Implicit: implicit,
			},
			Data: data,
		}
	}
	return left, true, nil
}

// peekOperator returns the operator at the cursor, explicit or implicit.
func peekOperator(cur *TokenCursor, left Data) (BinaryOperatorType, bool, bool) {
	t := cur.Peek()
	if op, ok := operatorTokens[t.Type]; ok {
		return op, false, true
	}
	switch t.Type {
	case TokenLeftParenth:
		if IsOfType(left, TypePercentage) {
			return OpAddition, true, true
		}
		return OpMultiply, true, true
	case TokenRightParenth, TokenAssignment, TokenIf, TokenThen, TokenElse,
		TokenComment, TokenHeader, TokenConversion:
		return 0, false, false
	}
	return OpAddition, true, true
}

// parseConversion handles a trailing "to <unit>" or "to <currency>". The
// target is read from the raw line text so that unit spellings that are
// not tokens of their own, such as "km²", are found.
func parseConversion(ctx context.Context, pc *ParserContext, cur *TokenCursor, res ExpressionResult) (ExpressionResult, error) {
	for !cur.Done() && cur.Peek().Type == TokenConversion {
		kw := cur.Peek()
		text := kw.LineText
		pos := skipSpaces(text, kw.EndInLine)
		var (
			unit *Unit
			iso  string
			end  int
		)
		dimension := ""
		q, isQuantity := res.Data.(*Quantity)
		if isQuantity {
			dimension = q.Unit.Dimension
		} else if c, e, ok := MatchCurrency(text, pos); ok {
			iso, end = c, e
		}
		if iso == "" {
			u, e, ok := MatchUnit(text, pos, dimension)
			if !ok {
				return res, nil
			}
			unit, end = u, e
		}
		trial := cur.Clone()
		trial.Next()
		var last Token
		for !trial.Done() && trial.Peek().StartInLine < end {
			last = trial.Next()
		}
		if last.EndInLine != end {
			return res, nil
		}
		data, err := pc.Operations.ConvertTo(ctx, res.Data, unit, iso)
		if err != nil {
			return ExpressionResult{}, err
		}
		cur.Seek(trial.Pos())
		res = ExpressionResult{
			Expression: &ConversionExpression{
				span:       span{First: res.Expression.FirstToken(), Last: last},
				Expression: res.Expression,
				Unit:       unit,
				Currency:   iso,
			},
			Data: MergeDataLocations(data, res.Data),
		}
	}
	return res, nil
}

// groupExpressionParser parses "( expression )".
type groupExpressionParser struct{}

func (groupExpressionParser) Name() string { return ExprGroup }

func (groupExpressionParser) TryParseAndInterpretExpression(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *ExpressionResult) (bool, error) {
	if cur.Peek().Type != TokenLeftParenth {
		return false, nil
	}
	open := cur.Next()
	closeAt := FindMatchingClose(cur.Tokens(), cur.Pos(), cur.End(), nil)
	if closeAt < 0 {
		return false, nil
	}
	inner := cur.Bounded(closeAt)
	res, ok, err := pc.ParseExpression(ctx, inner)
	if err != nil || !ok {
		return false, err
	}
	if !inner.Done() {
		return false, nil
	}
	cur.Seek(closeAt)
	closing := cur.Next()
	*result = ExpressionResult{
		Expression: &GroupExpression{span: span{First: open, Last: closing}, Inner: res.Expression},
		Data:       res.Data,
	}
	return true, nil
}

// variableExpressionParser reads a variable.
type variableExpressionParser struct{}

func (variableExpressionParser) Name() string { return ExprVariable }

func (variableExpressionParser) TryParseAndInterpretExpression(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *ExpressionResult) (bool, error) {
	t := cur.Peek()
	if t.Type != TokenVariable && !t.IsWordLike() {
		return false, nil
	}
	value, ok := pc.Variables.Get(t.Text())
	if !ok {
		return false, nil
	}
	cur.Next()
	var data Data
	if value != nil {
		data = value.WithLocation(DataLocation{LineText: t.LineText, Start: t.StartInLine, End: t.EndInLine})
	}
	*result = ExpressionResult{
		Expression: &VariableReferenceExpression{span: span{First: t, Last: t}, Name: t.Text()},
		Data:       data,
	}
	return true, nil
}

// dataExpressionParser reads a datum token.
type dataExpressionParser struct{}

func (dataExpressionParser) Name() string { return ExprData }

func (dataExpressionParser) TryParseAndInterpretExpression(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *ExpressionResult) (bool, error) {
	t := cur.Peek()
	if t.Data == nil {
		return false, nil
	}
	cur.Next()
	*result = ExpressionResult{
		Expression: &DataExpression{span: span{First: t, Last: t}, Data: t.Data},
		Data:       t.Data,
	}
	return true, nil
}
