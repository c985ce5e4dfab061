package lang

import (
	"context"
	"strings"
)

// OperationService applies binary operators to data, converting mismatched
// operands first.
type OperationService struct {
	rates RateProvider
}

// NewOperationService returns a service converting currencies with rates.
func NewOperationService(rates RateProvider) *OperationService {
	if rates == nil {
		rates = StaticRates{}
	}
	return &OperationService{rates: rates}
}

// PerformOperation applies op to left and right. The result spans both
// operands. A nil operand yields a nil result.
func (s *OperationService) PerformOperation(ctx context.Context, left Data, op BinaryOperatorType, right Data) (Data, error) {
	if left == nil || right == nil {
		return nil, nil
	}
	var (
		res Data
		err error
	)
	if op.IsRelation() {
		res, err = s.performRelation(ctx, left, op, right)
	} else {
		res, err = s.performAlgebra(ctx, left, op, right)
	}
	if err != nil || res == nil {
		return nil, err
	}
	return res.WithLocation(left.Location().Union(right.Location())), nil
}

func (s *OperationService) performAlgebra(ctx context.Context, left Data, op BinaryOperatorType, right Data) (Data, error) {
	if d, ok, err := dateTimeAlgebra(left, op, right); ok {
		return d, err
	}
	l, lok := left.(NumericData)
	r, rok := right.(NumericData)
	if !lok || !rok {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	l, r, folded, err := s.standardize(ctx, l, op, r)
	if err != nil {
		return nil, err
	}
	if folded != nil {
		return folded, nil
	}
	switch op {
	case OpAddition:
		return l.Add(r)
	case OpSubtraction:
		return l.Subtract(r)
	case OpMultiply:
		return multiplyData(l, r)
	case OpDivision:
		return s.divideData(ctx, l, r)
	}
	return nil, newDataOperationError(ErrUnsupportedArithmetic)
}

// dateTimeAlgebra handles date/time arithmetic. ok is false when neither
// operand is a DateTime.
func dateTimeAlgebra(left Data, op BinaryOperatorType, right Data) (Data, bool, error) {
	ldt, lIsDT := left.(*DateTime)
	rdt, rIsDT := right.(*DateTime)
	if !lIsDT && !rIsDT {
		return nil, false, nil
	}
	lq, _ := left.(*Quantity)
	rq, _ := right.(*Quantity)
	switch {
	case lIsDT && rIsDT && op == OpSubtraction:
		return NewQuantity(ldt.DataLocation, ldt.SecondsSince(rdt), LookupUnit(TypeDuration, "s")), true, nil
	case lIsDT && rq != nil && rq.Unit.Dimension == TypeDuration && op == OpAddition:
		return ldt.AddSeconds(rq.NumericValueInStandardUnit()), true, nil
	case lIsDT && rq != nil && rq.Unit.Dimension == TypeDuration && op == OpSubtraction:
		return ldt.AddSeconds(rq.NumericValueInStandardUnit().Neg()), true, nil
	case rIsDT && lq != nil && lq.Unit.Dimension == TypeDuration && op == OpAddition:
		return rdt.AddSeconds(lq.NumericValueInStandardUnit()), true, nil
	case op == OpAddition || op == OpSubtraction:
		return nil, true, newDataOperationError(ErrIncompatibleUnits)
	}
	return nil, true, newDataOperationError(ErrUnsupportedArithmetic)
}

// standardize brings both operands to comparable kinds. When the operation
// is fully resolved by the folding of a percentage, folded holds the result.
func (s *OperationService) standardize(ctx context.Context, l NumericData, op BinaryOperatorType, r NumericData) (NumericData, NumericData, Data, error) {
	additive := op == OpAddition || op == OpSubtraction || op.IsRelation()

	// fraction words take their value from the other operand
	lrel, lIsRel := l.(ValueRelativeToOtherData)
	rrel, rIsRel := r.(ValueRelativeToOtherData)
	switch {
	case lIsRel && rIsRel:
		l = NewDecimal(l.Location(), l.NumericValueInCurrentUnit())
		r = NewDecimal(r.Location(), r.NumericValueInCurrentUnit())
	case lIsRel && additive:
		l = lrel.ResolveRelativeTo(r)
	case rIsRel && additive:
		r = rrel.ResolveRelativeTo(l)
	case lIsRel:
		l = NewDecimal(l.Location(), l.NumericValueInCurrentUnit())
	case rIsRel:
		r = NewDecimal(r.Location(), r.NumericValueInCurrentUnit())
	}

	lp, lIsPct := l.(*Percentage)
	rp, rIsPct := r.(*Percentage)
	switch {
	case lIsPct && rIsPct:
		return l, r, nil, nil
	case rIsPct && op == OpAddition:
		return l, r, scaleBy(l, NumberFromInt(1).Add(rp.NumericValueInStandardUnit())), nil
	case rIsPct && op == OpSubtraction:
		return l, r, scaleBy(l, NumberFromInt(1).Sub(rp.NumericValueInStandardUnit())), nil
	case lIsPct && op == OpAddition:
		return l, r, scaleBy(r, NumberFromInt(1).Add(lp.NumericValueInStandardUnit())), nil
	case lIsPct && op == OpSubtraction:
		// 25% - 3km is -3km + 25%
		neg := r.CreateFromCurrentUnit(r.NumericValueInCurrentUnit().Neg())
		return l, r, scaleBy(neg, NumberFromInt(1).Add(lp.NumericValueInStandardUnit())), nil
	case lIsPct:
		l = NewDecimal(l.Location(), lp.NumericValueInStandardUnit())
	case rIsPct:
		r = NewDecimal(r.Location(), rp.NumericValueInStandardUnit())
	}

	_, lIsDec := l.(*Decimal)
	_, rIsDec := r.(*Decimal)
	switch {
	case lIsDec && rIsDec:
		return l, r, nil, nil
	case lIsDec && additive:
		l = r.CreateFromCurrentUnit(l.NumericValueInCurrentUnit()).WithLocation(l.Location()).(NumericData)
	case rIsDec && additive:
		r = l.CreateFromCurrentUnit(r.NumericValueInCurrentUnit()).WithLocation(r.Location()).(NumericData)
	case lIsDec || rIsDec:
		return l, r, nil, nil
	}

	if !additive {
		return l, r, nil, nil
	}
	if l.Type() != r.Type() {
		return nil, nil, nil, newDataOperationError(ErrIncompatibleUnits)
	}
	if lc, ok := l.(*Currency); ok {
		rc, err := s.convertCurrency(ctx, r.(*Currency), lc.ISO)
		if err != nil {
			return nil, nil, nil, err
		}
		r = rc
	}
	return l, r, nil, nil
}

func scaleBy(d NumericData, factor Number) Data {
	return d.CreateFromCurrentUnit(d.NumericValueInCurrentUnit().Mul(factor))
}

func (s *OperationService) convertCurrency(ctx context.Context, c *Currency, iso string) (*Currency, error) {
	if c.ISO == iso {
		return c, nil
	}
	v, err := ConvertCurrency(c.Value, c.ISO, iso, s.rates.LoadLatestRates(ctx))
	if err != nil {
		return nil, err
	}
	return NewCurrency(c.DataLocation, v, iso), nil
}

// ConvertTo converts a quantity to unit u or a currency to the currency
// iso; exactly one of u and iso is used.
func (s *OperationService) ConvertTo(ctx context.Context, d Data, u *Unit, iso string) (Data, error) {
	switch v := d.(type) {
	case *Quantity:
		if u == nil {
			return nil, newDataOperationError(ErrCannotConvert, v.Unit.Symbol, iso)
		}
		return v.In(u)
	case *Currency:
		if iso == "" {
			return nil, newDataOperationError(ErrCannotConvert, v.ISO, u.Symbol)
		}
		return s.convertCurrency(ctx, v, iso)
	case *Decimal:
		if u != nil {
			return NewQuantity(v.DataLocation, v.Value, u), nil
		}
		return NewCurrency(v.DataLocation, v.Value, iso), nil
	}
	target := iso
	if u != nil {
		target = u.Symbol
	}
	return nil, newDataOperationError(ErrCannotConvert, d.Type(), target)
}

func multiplyData(l, r NumericData) (Data, error) {
	_, lIsDec := l.(*Decimal)
	_, rIsDec := r.(*Decimal)
	switch {
	case lIsDec && !rIsDec:
		return r.CreateFromCurrentUnit(l.NumericValueInCurrentUnit().Mul(r.NumericValueInCurrentUnit())), nil
	case rIsDec:
		return l.Multiply(r)
	}
	if _, ok := l.(*Percentage); ok {
		return l.Multiply(r)
	}
	lq, lok := l.(*Quantity)
	rq, rok := r.(*Quantity)
	if !lok || !rok {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	product := lq.NumericValueInStandardUnit().Mul(rq.NumericValueInStandardUnit())
	ld, rd := lq.Unit.Dimension, rq.Unit.Dimension
	switch {
	case ld == TypeLength && rd == TypeLength:
		return derivedQuantity(lq, product, TypeArea, squaredSymbol(lq, rq)), nil
	case ld == TypeLength && rd == TypeArea:
		return derivedQuantity(lq, product, TypeVolume, cubedSymbol(lq, rq)), nil
	case ld == TypeArea && rd == TypeLength:
		return derivedQuantity(lq, product, TypeVolume, cubedSymbol(rq, lq)), nil
	case ld == TypeSpeed && rd == TypeDuration:
		return derivedQuantity(lq, product, TypeLength, speedParts(lq.Unit)[0]), nil
	case ld == TypeDuration && rd == TypeSpeed:
		return derivedQuantity(lq, product, TypeLength, speedParts(rq.Unit)[0]), nil
	}
	return nil, newDataOperationError(ErrUnsupportedArithmetic)
}

func (s *OperationService) divideData(ctx context.Context, l, r NumericData) (Data, error) {
	_, lIsDec := l.(*Decimal)
	_, rIsDec := r.(*Decimal)
	switch {
	case rIsDec:
		return l.Divide(r)
	case lIsDec:
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	if _, ok := l.(*Percentage); ok {
		return l.Divide(r)
	}
	if lc, ok := l.(*Currency); ok {
		rc, ok := r.(*Currency)
		if !ok {
			return nil, newDataOperationError(ErrUnsupportedArithmetic)
		}
		rc, err := s.convertCurrency(ctx, rc, lc.ISO)
		if err != nil {
			return nil, err
		}
		return NewDecimal(lc.DataLocation, lc.Value.Quo(rc.Value)), nil
	}
	lq, lok := l.(*Quantity)
	rq, rok := r.(*Quantity)
	if !lok || !rok {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	quotient := lq.NumericValueInStandardUnit().Quo(rq.NumericValueInStandardUnit())
	ld, rd := lq.Unit.Dimension, rq.Unit.Dimension
	switch {
	case ld == rd:
		if lq.Unit.Offset != nil || rq.Unit.Offset != nil {
			return nil, newDataOperationError(ErrUnsupportedArithmetic)
		}
		return NewDecimal(lq.DataLocation, quotient), nil
	case ld == TypeArea && rd == TypeLength:
		return derivedQuantity(lq, quotient, TypeLength, strings.TrimSuffix(lq.Unit.Symbol, "²")), nil
	case ld == TypeVolume && rd == TypeLength:
		return derivedQuantity(lq, quotient, TypeArea, strings.TrimSuffix(lq.Unit.Symbol, "³")+"²"), nil
	case ld == TypeVolume && rd == TypeArea:
		return derivedQuantity(lq, quotient, TypeLength, strings.TrimSuffix(lq.Unit.Symbol, "³")), nil
	case ld == TypeLength && rd == TypeDuration:
		return derivedQuantity(lq, quotient, TypeSpeed, lq.Unit.Symbol+"/"+rq.Unit.Symbol), nil
	case ld == TypeLength && rd == TypeSpeed:
		return derivedQuantity(lq, quotient, TypeDuration, speedParts(rq.Unit)[1]), nil
	}
	return nil, newDataOperationError(ErrUnsupportedArithmetic)
}

// derivedQuantity expresses a standard value of dimension in the unit
// spelled symbol, or in the standard unit when no such unit exists.
func derivedQuantity(from *Quantity, standard Number, dimension, symbol string) *Quantity {
	u := unitBySpelling(dimension, symbol)
	if u == nil {
		u = derivedUnit(dimension, symbol)
	}
	return NewQuantity(from.DataLocation, u.FromStandard(standard), u)
}

func unitBySpelling(dimension, spelling string) *Unit {
	for _, f := range unitsByDimension[dimension] {
		if !f.ignoreCase && f.text == spelling {
			return f.unit
		}
	}
	return nil
}

func squaredSymbol(a, b *Quantity) string {
	if a.Unit != b.Unit {
		return ""
	}
	return a.Unit.Symbol + "²"
}

func cubedSymbol(length, area *Quantity) string {
	if area.Unit.Symbol != length.Unit.Symbol+"²" {
		return ""
	}
	return length.Unit.Symbol + "³"
}

// speedParts splits a speed symbol such as "km/h" into its length and
// duration symbols.
func speedParts(u *Unit) [2]string {
	switch u.Symbol {
	case "mph":
		return [2]string{"mi", "h"}
	case "kn":
		return [2]string{"nmi", "h"}
	}
	if i := strings.IndexByte(u.Symbol, '/'); i > 0 {
		return [2]string{u.Symbol[:i], u.Symbol[i+1:]}
	}
	return [2]string{"m", "s"}
}

func (s *OperationService) performRelation(ctx context.Context, left Data, op BinaryOperatorType, right Data) (Data, error) {
	lb, lIsBool := left.(*Boolean)
	rb, rIsBool := right.(*Boolean)
	if lIsBool || rIsBool {
		if !lIsBool || !rIsBool {
			return nil, newDataOperationError(ErrIncompatibleUnits)
		}
		switch op {
		case OpEquality:
			return &Boolean{Value: lb.Value == rb.Value}, nil
		case OpNoEquality:
			return &Boolean{Value: lb.Value != rb.Value}, nil
		}
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}

	ldt, lIsDT := left.(*DateTime)
	rdt, rIsDT := right.(*DateTime)
	if lIsDT || rIsDT {
		if !lIsDT || !rIsDT {
			return nil, newDataOperationError(ErrIncompatibleUnits)
		}
		return &Boolean{Value: compareResult(op, ldt.Value.Compare(rdt.Value))}, nil
	}

	l, lok := left.(NumericData)
	r, rok := right.(NumericData)
	if !lok || !rok {
		return nil, newDataOperationError(ErrUnsupportedArithmetic)
	}
	l, r, _, err := s.standardize(ctx, l, op, r)
	if err != nil {
		return nil, err
	}
	c := l.NumericValueInStandardUnit().Cmp(r.NumericValueInStandardUnit())
	return &Boolean{Value: compareResult(op, c)}, nil
}

func compareResult(op BinaryOperatorType, c int) bool {
	switch op {
	case OpEquality:
		return c == 0
	case OpNoEquality:
		return c != 0
	case OpLessThan:
		return c < 0
	case OpLessThanOrEqualTo:
		return c <= 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterThanOrEqualTo:
		return c >= 0
	}
	return false
}
