package lang

import (
	"fmt"
	"strings"
)

// Quantity is a value of a physical dimension expressed in a unit. Its type
// is the unit's dimension (Length, Duration, ...) and its subtype the unit
// symbol.
type Quantity struct {
	DataLocation
	Value Number
	Unit  *Unit
}

// NewQuantity returns a quantity datum.
func NewQuantity(loc DataLocation, v Number, u *Unit) *Quantity {
	return &Quantity{DataLocation: loc, Value: v, Unit: u}
}

var dimensionPriorities = map[string]int{
	TypeLength:      40,
	TypeDuration:    45,
	TypeArea:        51,
	TypeVolume:      52,
	TypeMass:        53,
	TypeSpeed:       54,
	TypeAngle:       55,
	TypeTemperature: 56,
	TypeInformation: 57,
}

func (q *Quantity) Type() string                       { return q.Unit.Dimension }
func (q *Quantity) Subtype() string                    { return q.Unit.Symbol }
func (q *Quantity) ConflictResolutionPriority() int    { return dimensionPriorities[q.Unit.Dimension] }
func (q *Quantity) WithLocation(loc DataLocation) Data { cp := *q; cp.DataLocation = loc; return &cp }
func (q *Quantity) NumericValueInCurrentUnit() Number  { return q.Value }
func (q *Quantity) NumericValueInStandardUnit() Number { return q.Unit.ToStandard(q.Value) }

func (q *Quantity) CreateFromCurrentUnit(v Number) NumericData {
	return NewQuantity(q.DataLocation, v, q.Unit)
}

func (q *Quantity) CreateFromStandardUnit(v Number) NumericData {
	return NewQuantity(q.DataLocation, q.Unit.FromStandard(v), q.Unit)
}

// In returns q converted to unit u of the same dimension.
func (q *Quantity) In(u *Unit) (*Quantity, error) {
	if u.Dimension != q.Unit.Dimension {
		return nil, newDataOperationError(ErrCannotConvert, q.Unit.Symbol, u.Symbol)
	}
	return NewQuantity(q.DataLocation, u.FromStandard(q.NumericValueInStandardUnit()), u), nil
}

func (q *Quantity) DisplayText(culture string) string {
	if q.Unit.Dimension == TypeDuration {
		return FormatTimeSpan(q.NumericValueInStandardUnit(), culture)
	}
	return FormatNumber(q.Value, culture, defaultFractionDigits) + " " + q.Unit.Symbol
}

func (q *Quantity) Equal(other Data) bool {
	o, ok := other.(*Quantity)
	return ok && sameSpan(q, o) && q.Unit == o.Unit && q.Value.Equal(o.Value)
}

// inCurrentUnit returns other's value expressed in q's unit.
func (q *Quantity) inCurrentUnit(other NumericData) (Number, error) {
	o, ok := other.(*Quantity)
	if !ok {
		return other.NumericValueInCurrentUnit(), nil
	}
	if o.Unit.Dimension != q.Unit.Dimension {
		return Number{}, newDataOperationError(ErrIncompatibleUnits)
	}
	return q.Unit.FromStandard(o.NumericValueInStandardUnit()), nil
}

// Add converts other into q's unit and adds the values, so offset scales such
// as Celsius add as expected.
func (q *Quantity) Add(other NumericData) (NumericData, error) {
	v, err := q.inCurrentUnit(other)
	if err != nil {
		return nil, err
	}
	return q.CreateFromCurrentUnit(q.Value.Add(v)), nil
}

func (q *Quantity) Subtract(other NumericData) (NumericData, error) {
	v, err := q.inCurrentUnit(other)
	if err != nil {
		return nil, err
	}
	return q.CreateFromCurrentUnit(q.Value.Sub(v)), nil
}

func (q *Quantity) Multiply(other NumericData) (NumericData, error) {
	return multiplyCurrent(q, other)
}

func (q *Quantity) Divide(other NumericData) (NumericData, error) {
	return divideCurrent(q, other)
}

// FormatTimeSpan renders seconds as [-][d.]hh:mm:ss[.fffffff].
func FormatTimeSpan(seconds Number, culture string) string {
	if seconds.IsInf() {
		return FormatNumber(seconds, culture, 0)
	}
	var b strings.Builder
	if seconds.Sign() < 0 {
		b.WriteByte('-')
		seconds = seconds.Neg()
	}
	// 100ns ticks
	ticks := seconds.Mul(NumberFromInt(10000000)).Int64()
	const (
		ticksPerSecond = 10000000
		ticksPerDay    = 86400 * ticksPerSecond
	)
	days := ticks / ticksPerDay
	rem := ticks % ticksPerDay
	h := rem / (3600 * ticksPerSecond)
	rem %= 3600 * ticksPerSecond
	m := rem / (60 * ticksPerSecond)
	rem %= 60 * ticksPerSecond
	s := rem / ticksPerSecond
	frac := rem % ticksPerSecond
	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", h, m, s)
	if frac > 0 {
		fmt.Fprintf(&b, "%c%07d", cultureInfoFor(culture).decimalSeparator, frac)
	}
	return b.String()
}
