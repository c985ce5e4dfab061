package lang

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ExpressionResult is a parsed expression and its value.
type ExpressionResult struct {
	Expression Expression
	Data       Data
}

// StatementResult is a parsed statement and its value.
type StatementResult struct {
	Statement Statement
	Data      Data
}

// StatementParserAndInterpreter parses and interprets one kind of statement.
// On a match it returns true, fills result and leaves cur on the first
// unconsumed token.
type StatementParserAndInterpreter interface {
	Name() string
	TryParseAndInterpretStatement(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *StatementResult) (bool, error)
}

// ExpressionParserAndInterpreter is the expression analog of
// StatementParserAndInterpreter.
type ExpressionParserAndInterpreter interface {
	Name() string
	TryParseAndInterpretExpression(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *ExpressionResult) (bool, error)
}

// ParserContext carries what parsers need while interpreting one line.
type ParserContext struct {
	Culture    string
	Variables  *VariableService
	Operations *OperationService
	Lexer      *Lexer
	Registry   *Registry
	Logger     *log.Logger
}

// isFatal reports whether err must abort the line instead of letting the
// next unit try.
func isFatal(err error) bool {
	var doe *DataOperationError
	return errors.As(err, &doe) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ParseStatement tries the culture's statement units in order, restricted to
// names when given.
func (pc *ParserContext) ParseStatement(ctx context.Context, cur *TokenCursor, names ...string) (StatementResult, bool, error) {
	if cur.Done() {
		return StatementResult{}, false, nil
	}
	for _, u := range pc.Registry.Statements(pc.Culture, names...) {
		if err := ctx.Err(); err != nil {
			return StatementResult{}, false, err
		}
		trial := cur.Clone()
		var res StatementResult
		ok, err := pc.tryStatement(ctx, u, trial, &res)
		if err != nil {
			if isFatal(err) {
				return StatementResult{}, false, err
			}
			pc.Logger.Printf("statement unit %s failed: %v", u.Name(), err)
			continue
		}
		if ok {
			cur.Seek(trial.Pos())
			return res, true, nil
		}
	}
	return StatementResult{}, false, nil
}

func (pc *ParserContext) tryStatement(ctx context.Context, u StatementParserAndInterpreter, cur *TokenCursor, res *StatementResult) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return u.TryParseAndInterpretStatement(ctx, pc, cur, res)
}

// ParseExpression parses a whole expression with the culture's expression
// units, restricted to names when given.
func (pc *ParserContext) ParseExpression(ctx context.Context, cur *TokenCursor, names ...string) (ExpressionResult, bool, error) {
	if len(names) == 0 {
		names = []string{ExprBinary}
	}
	return pc.runExpressionUnits(ctx, cur, pc.Registry.Expressions(pc.Culture, names...))
}

// ParseOperand parses a single operand, with an optional leading sign,
// using every operand unit but the excluded ones.
func (pc *ParserContext) ParseOperand(ctx context.Context, cur *TokenCursor, exclude ...string) (ExpressionResult, bool, error) {
	if cur.Done() {
		return ExpressionResult{}, false, nil
	}
	if t := cur.Peek(); t.Type == TokenSubtraction || t.Type == TokenAddition {
		trial := cur.Clone()
		sign := trial.Next()
		inner, ok, err := pc.ParseOperand(ctx, trial, exclude...)
		if err != nil || !ok {
			return ExpressionResult{}, false, err
		}
		data := inner.Data
		if sign.Type == TokenSubtraction {
			data, err = negate(inner.Data)
			if err != nil {
				return ExpressionResult{}, false, err
			}
		}
		if data != nil {
			signLoc := DataLocation{LineText: sign.LineText, Start: sign.StartInLine, End: sign.EndInLine}
			data = data.WithLocation(data.Location().Union(signLoc))
		}
		cur.Seek(trial.Pos())
		expr := &UnaryExpression{
			span:    span{First: sign, Last: inner.Expression.LastToken()},
			Negate:  sign.Type == TokenSubtraction,
			Operand: inner.Expression,
		}
		return ExpressionResult{Expression: expr, Data: data}, true, nil
	}
	var units []ExpressionParserAndInterpreter
	for _, u := range pc.Registry.Operands(pc.Culture) {
		if !containsName(exclude, u.Name()) {
			units = append(units, u)
		}
	}
	return pc.runExpressionUnits(ctx, cur, units)
}

func (pc *ParserContext) runExpressionUnits(ctx context.Context, cur *TokenCursor, units []ExpressionParserAndInterpreter) (ExpressionResult, bool, error) {
	if cur.Done() {
		return ExpressionResult{}, false, nil
	}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return ExpressionResult{}, false, err
		}
		trial := cur.Clone()
		var res ExpressionResult
		ok, err := pc.tryExpression(ctx, u, trial, &res)
		if err != nil {
			if isFatal(err) {
				return ExpressionResult{}, false, err
			}
			pc.Logger.Printf("expression unit %s failed: %v", u.Name(), err)
			continue
		}
		if ok {
			cur.Seek(trial.Pos())
			return res, true, nil
		}
	}
	return ExpressionResult{}, false, nil
}

func (pc *ParserContext) tryExpression(ctx context.Context, u ExpressionParserAndInterpreter, cur *TokenCursor, res *ExpressionResult) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return u.TryParseAndInterpretExpression(ctx, pc, cur, res)
}

func negate(d Data) (Data, error) {
	if d == nil {
		return nil, nil
	}
	n, ok := d.(NumericData)
	if !ok {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	return n.CreateFromCurrentUnit(n.NumericValueInCurrentUnit().Neg()), nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
