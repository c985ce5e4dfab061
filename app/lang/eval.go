package lang

import (
	"context"
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
)

// FunctionDefinition is a named function reachable through grammar
// templates. Interpret receives one datum per template placeholder.
type FunctionDefinition struct {
	FullName  string
	Interpret func(ctx context.Context, pc *ParserContext, args []Data) (Data, error)
}

var functions = map[string]*FunctionDefinition{
	FuncPercentOf:        {FullName: FuncPercentOf, Interpret: percentOf},
	FuncPercentOff:       {FullName: FuncPercentOff, Interpret: percentOff},
	FuncPercentOn:        {FullName: FuncPercentOn, Interpret: percentOn},
	FuncIsWhatPercentOf:  {FullName: FuncIsWhatPercentOf, Interpret: isWhatPercentOf},
	FuncIsWhatPercentOn:  {FullName: FuncIsWhatPercentOn, Interpret: isWhatPercentOn},
	FuncIsWhatPercentOff: {FullName: FuncIsWhatPercentOff, Interpret: isWhatPercentOff},
	FuncIsPercentOfWhat:  {FullName: FuncIsPercentOfWhat, Interpret: isPercentOfWhat},
	FuncIsPercentOnWhat:  {FullName: FuncIsPercentOnWhat, Interpret: isPercentOnWhat},
	FuncIsPercentOffWhat: {FullName: FuncIsPercentOffWhat, Interpret: isPercentOffWhat},
	FuncRandom:           {FullName: FuncRandom, Interpret: randomBetween},
	FuncMidpoint:         {FullName: FuncMidpoint, Interpret: midpoint},
	FuncSquareRoot:       {FullName: FuncSquareRoot, Interpret: squareRoot},
	FuncFractionOf:       {FullName: FuncFractionOf, Interpret: fractionOf},
}

// LookupFunction returns the function registered under fullName.
func LookupFunction(fullName string) (*FunctionDefinition, bool) {
	f, ok := functions[fullName]
	return f, ok
}

// templatePart is a placeholder or a run of literal tokens.
type templatePart struct {
	placeholder string
	literal     []Token
}

type functionTemplate struct {
	function *FunctionDefinition
	text     string
	parts    []templatePart
}

// functionExpressionParser recognizes function templates. Templates are
// compiled once per culture; those with more parts are tried first.
type functionExpressionParser struct {
	mu        sync.Mutex
	templates map[string][]*functionTemplate
}

func newFunctionExpressionParser() *functionExpressionParser {
	return &functionExpressionParser{templates: map[string][]*functionTemplate{}}
}

func (*functionExpressionParser) Name() string { return ExprFunction }

func (p *functionExpressionParser) compiled(pc *ParserContext) []*functionTemplate {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.templates[pc.Culture]; ok {
		return t
	}
	var out []*functionTemplate
	for _, g := range pc.Registry.Grammars(pc.Culture) {
		for name, texts := range g.Grammar().Functions {
			fn, ok := LookupFunction(name)
			if !ok {
				pc.Logger.Printf("grammar %s: unknown function %s", g.Name(), name)
				continue
			}
			for _, text := range texts {
				out = append(out, &functionTemplate{
					function: fn,
					text:     text,
					parts:    compileTemplate(pc.Lexer, pc.Culture, text),
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].parts) != len(out[j].parts) {
			return len(out[i].parts) > len(out[j].parts)
		}
		return out[i].text < out[j].text
	})
	p.templates[pc.Culture] = out
	return out
}

// compileTemplate splits "[value] is what % of [value]" into placeholders
// and literal token runs lexed for culture.
func compileTemplate(lx *Lexer, culture, text string) []templatePart {
	var parts []templatePart
	literal := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		toks := lx.TokenizeLine(culture, 0, 0, s, nil, nil).Tokens
		if len(toks) > 0 {
			parts = append(parts, templatePart{literal: toks})
		}
	}
	for text != "" {
		i := strings.IndexByte(text, '[')
		if i < 0 {
			literal(text)
			break
		}
		j := strings.IndexByte(text[i:], ']')
		if j < 0 {
			literal(text)
			break
		}
		literal(text[:i])
		parts = append(parts, templatePart{placeholder: text[i : i+j+1]})
		text = text[i+j+1:]
	}
	return parts
}

func (p *functionExpressionParser) TryParseAndInterpretExpression(ctx context.Context, pc *ParserContext, cur *TokenCursor, result *ExpressionResult) (bool, error) {
	for _, t := range p.compiled(pc) {
		trial := cur.Clone()
		res, ok, err := t.match(ctx, pc, trial)
		if err != nil {
			return false, err
		}
		if ok {
			cur.Seek(trial.Pos())
			*result = res
			return true, nil
		}
	}
	return false, nil
}

func (t *functionTemplate) match(ctx context.Context, pc *ParserContext, cur *TokenCursor) (ExpressionResult, bool, error) {
	if cur.Done() {
		return ExpressionResult{}, false, nil
	}
	first := cur.Peek()
	var (
		args []Expression
		data []Data
	)
	for i, part := range t.parts {
		if part.placeholder == "" {
			if !matchLiteral(cur, part.literal) {
				return ExpressionResult{}, false, nil
			}
			continue
		}
		var (
			res ExpressionResult
			ok  bool
			err error
		)
		switch {
		case i == len(t.parts)-1:
			res, ok, err = pc.ParseOperand(ctx, cur)
		case i == 0:
			res, ok, err = pc.ParseOperand(ctx, cur, ExprFunction)
		default:
			next := t.parts[i+1].literal
			stop := FindMatchingClose(cur.Tokens(), cur.Pos(), cur.End(), func(tok Token) bool {
				return literalTokenEqual(tok, next[0])
			})
			if stop < 0 {
				return ExpressionResult{}, false, nil
			}
			inner := cur.Bounded(stop)
			res, ok, err = pc.ParseExpression(ctx, inner)
			if err == nil && ok && !inner.Done() {
				ok = false
			}
			if ok {
				cur.Seek(inner.Pos())
			}
		}
		if err != nil {
			return ExpressionResult{}, false, err
		}
		if !ok {
			return ExpressionResult{}, false, nil
		}
		if !placeholderAccepts(part.placeholder, res.Data) {
			return ExpressionResult{}, false, nil
		}
		args = append(args, res.Expression)
		data = append(data, res.Data)
	}
	last, _ := cur.Previous()
	expr := &FunctionExpression{
		span:      span{First: first, Last: last},
		Function:  t.function,
		Arguments: args,
	}
	for _, d := range data {
		if d == nil {
			return ExpressionResult{Expression: expr}, true, nil
		}
	}
	value, err := t.function.Interpret(ctx, pc, data)
	if err != nil {
		return ExpressionResult{}, false, err
	}
	if value != nil {
		value = value.WithLocation(DataLocation{LineText: first.LineText, Start: first.StartInLine, End: last.EndInLine})
	}
	return ExpressionResult{Expression: expr, Data: value}, true, nil
}

// placeholderAccepts reports whether d may fill placeholder. A nil datum
// only fills "[value]".
func placeholderAccepts(placeholder string, d Data) bool {
	switch placeholder {
	case placeholderPercentage:
		return IsOfType(d, TypePercentage)
	case placeholderFraction:
		return IsOfType(d, TypeFraction)
	}
	return true
}

func matchLiteral(cur *TokenCursor, literal []Token) bool {
	for _, want := range literal {
		if cur.Done() || !literalTokenEqual(cur.Peek(), want) {
			return false
		}
		cur.Next()
	}
	return true
}

func literalTokenEqual(t, want Token) bool {
	return t.Data == nil && strings.EqualFold(t.Text(), want.Text())
}

func numericArgs(args []Data) ([]NumericData, error) {
	out := make([]NumericData, len(args))
	for i, a := range args {
		n, ok := a.(NumericData)
		if !ok {
			return nil, newDataOperationError(ErrUnsupportedArithmetic)
		}
		out[i] = n
	}
	return out, nil
}

// percentArgs returns the value and the percentage as a fraction, whatever
// the order they appear in.
func percentArgs(args []Data) (NumericData, Number, error) {
	n, err := numericArgs(args)
	if err != nil {
		return nil, Number{}, err
	}
	if len(n) != 2 {
		return nil, Number{}, newDataOperationError(ErrUnsupportedArithmetic)
	}
	if p, ok := n[0].(*Percentage); ok {
		return n[1], p.NumericValueInStandardUnit(), nil
	}
	if p, ok := n[1].(*Percentage); ok {
		return n[0], p.NumericValueInStandardUnit(), nil
	}
	return nil, Number{}, newDataOperationError(ErrUnsupportedArithmetic)
}

var one = NumberFromInt(1)

func percentOf(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	v, p, err := percentArgs(args)
	if err != nil {
		return nil, err
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Mul(p)), nil
}

func percentOff(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	v, p, err := percentArgs(args)
	if err != nil {
		return nil, err
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Mul(one.Sub(p))), nil
}

func percentOn(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	v, p, err := percentArgs(args)
	if err != nil {
		return nil, err
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Mul(one.Add(p))), nil
}

// fractionOf scales the value by a fraction word, as in "half of 10".
func fractionOf(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	if len(args) != 2 {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	f, ok := args[0].(*Fraction)
	v, ok2 := args[1].(NumericData)
	if !ok || !ok2 {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Mul(f.Ratio)), nil
}

// ratio divides args[0] by args[1], which must leave a plain decimal.
func ratio(ctx context.Context, pc *ParserContext, args []Data) (Number, DataLocation, error) {
	if len(args) != 2 {
		return Number{}, DataLocation{}, newDataOperationError(ErrUnsupportedArithmetic)
	}
	q, err := pc.Operations.PerformOperation(ctx, args[0], OpDivision, args[1])
	if err != nil {
		return Number{}, DataLocation{}, err
	}
	d, ok := q.(*Decimal)
	if !ok {
		return Number{}, DataLocation{}, newDataOperationError(ErrUnsupportedArithmetic)
	}
	return d.Value, d.DataLocation, nil
}

func isWhatPercentOf(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	r, loc, err := ratio(ctx, pc, args)
	if err != nil {
		return nil, err
	}
	return NewPercentage(loc, r.Mul(hundred)), nil
}

func isWhatPercentOn(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	r, loc, err := ratio(ctx, pc, args)
	if err != nil {
		return nil, err
	}
	return NewPercentage(loc, r.Sub(one).Mul(hundred)), nil
}

func isWhatPercentOff(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	r, loc, err := ratio(ctx, pc, args)
	if err != nil {
		return nil, err
	}
	return NewPercentage(loc, one.Sub(r).Mul(hundred)), nil
}

func isPercentOfWhat(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	v, p, err := percentArgs(args)
	if err != nil {
		return nil, err
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Quo(p)), nil
}

func isPercentOnWhat(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	v, p, err := percentArgs(args)
	if err != nil {
		return nil, err
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Quo(one.Add(p))), nil
}

func isPercentOffWhat(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	v, p, err := percentArgs(args)
	if err != nil {
		return nil, err
	}
	return v.CreateFromCurrentUnit(v.NumericValueInCurrentUnit().Quo(one.Sub(p))), nil
}

// randomBetween draws uniformly between two bounds of the same type. Integer
// bounds give an integer.
func randomBetween(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	n, err := numericArgs(args)
	if err != nil {
		return nil, err
	}
	if len(n) != 2 || n[0].Type() != n[1].Type() {
		return nil, newDataOperationError(ErrIncompatibleUnits)
	}
	lo, hi := n[0].NumericValueInStandardUnit(), n[1].NumericValueInStandardUnit()
	if lo.IsInf() || hi.IsInf() {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	var v Number
	if lo.IsInt() && hi.IsInt() && n[0].NumericValueInCurrentUnit().IsInt() {
		width := new(big.Int).Sub(hi.Rat().Num(), lo.Rat().Num())
		k, err := crand.Int(crand.Reader, width.Add(width, big.NewInt(1)))
		if err != nil {
			return nil, err
		}
		v = lo.Add(NewNumber(new(big.Rat).SetInt(k)))
	} else {
		v = lo.Add(hi.Sub(lo).Mul(NumberFromFloat(rand.Float64())))
	}
	return n[0].CreateFromStandardUnit(v), nil
}

func midpoint(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	if len(args) != 2 {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	sum, err := pc.Operations.PerformOperation(ctx, args[0], OpAddition, args[1])
	if err != nil {
		return nil, err
	}
	return pc.Operations.PerformOperation(ctx, sum, OpDivision, NewDecimal(sum.Location(), NumberFromInt(2)))
}

func squareRoot(ctx context.Context, pc *ParserContext, args []Data) (Data, error) {
	n, err := numericArgs(args)
	if err != nil {
		return nil, err
	}
	if len(n) != 1 {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	v := n[0].NumericValueInCurrentUnit()
	if v.Sign() < 0 || v.IsInf() {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	root, err := sqrtNumber(v)
	if err != nil {
		return nil, err
	}
	return n[0].CreateFromCurrentUnit(root), nil
}

// sqrtNumber computes the square root with 40 significant digits.
func sqrtNumber(v Number) (Number, error) {
	r := v.Rat()
	if r.Sign() == 0 {
		return NumberFromInt(0), nil
	}
	num, _, err := apd.NewFromString(r.Num().String())
	if err != nil {
		return Number{}, err
	}
	den, _, err := apd.NewFromString(r.Denom().String())
	if err != nil {
		return Number{}, err
	}
	ctx := apd.BaseContext.WithPrecision(40)
	var q, root apd.Decimal
	if _, err := ctx.Quo(&q, num, den); err != nil {
		return Number{}, err
	}
	if _, err := ctx.Sqrt(&root, &q); err != nil {
		return Number{}, err
	}
	out, ok := new(big.Rat).SetString(root.Text('f'))
	if !ok {
		return Number{}, newDataOperationError(ErrUnsupportedArithmetic)
	}
	// exact roots come back as integers or short decimals
	if rounded, ok := new(big.Rat).SetString(roundRat(out, 20, false)); ok {
		if new(big.Rat).Mul(rounded, rounded).Cmp(r) == 0 {
			out = rounded
		}
	}
	return NewNumber(out), nil
}
