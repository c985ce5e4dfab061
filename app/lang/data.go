package lang

import (
	"errors"
	"strings"
)

// Data type names.
const (
	TypeDecimal     = "Decimal"
	TypeFraction    = "Fraction"
	TypePercentage  = "Percentage"
	TypeBoolean     = "Boolean"
	TypeCurrency    = "Currency"
	TypeLength      = "Length"
	TypeArea        = "Area"
	TypeVolume      = "Volume"
	TypeMass        = "Mass"
	TypeSpeed       = "Speed"
	TypeAngle       = "Angle"
	TypeTemperature = "Temperature"
	TypeInformation = "Information"
	TypeDuration    = "Duration"
	TypeDateTime    = "DateTime"
	TypeError       = "Error"
)

// DataLocation is the span of a datum inside its line.
type DataLocation struct {
	LineText string
	Start    int
	End      int
}

// StartInLine returns the start offset.
func (l DataLocation) StartInLine() int { return l.Start }

// EndInLine returns the exclusive end offset.
func (l DataLocation) EndInLine() int { return l.End }

// Length returns the span length.
func (l DataLocation) Length() int { return l.End - l.Start }

// LineTextIncludingLineBreak returns the whole line the datum was found in.
func (l DataLocation) LineTextIncludingLineBreak() string { return l.LineText }

// Text returns the covered source text.
func (l DataLocation) Text() string {
	if l.Start < 0 || l.End > len(l.LineText) || l.Start > l.End {
		return ""
	}
	return l.LineText[l.Start:l.End]
}

// Union returns the smallest location covering both l and o.
func (l DataLocation) Union(o DataLocation) DataLocation {
	u := l
	if o.LineText != "" && u.LineText == "" {
		u.LineText = o.LineText
	}
	if o.Start < u.Start {
		u.Start = o.Start
	}
	if o.End > u.End {
		u.End = o.End
	}
	return u
}

// Location returns l; it lets every datum expose its span through embedding.
func (l DataLocation) Location() DataLocation { return l }

// Data is a parsed semantic value with its source span.
type Data interface {
	Type() string
	Subtype() string
	Location() DataLocation
	StartInLine() int
	EndInLine() int
	Length() int
	LineTextIncludingLineBreak() string
	ConflictResolutionPriority() int
	DisplayText(culture string) string
	WithLocation(loc DataLocation) Data
	Equal(other Data) bool
}

// NumericData is data with a magnitude that can take part in arithmetic.
// The standard unit is the dimension's base unit (meters, seconds, ...).
type NumericData interface {
	Data
	NumericValueInCurrentUnit() Number
	NumericValueInStandardUnit() Number
	CreateFromCurrentUnit(value Number) NumericData
	CreateFromStandardUnit(value Number) NumericData
	Add(other NumericData) (NumericData, error)
	Subtract(other NumericData) (NumericData, error)
	Multiply(other NumericData) (NumericData, error)
	Divide(other NumericData) (NumericData, error)
}

// ValueRelativeToOtherData marks data whose value depends on the other
// operand, such as "the half".
type ValueRelativeToOtherData interface {
	NumericData
	ResolveRelativeTo(other NumericData) NumericData
}

// IsOfType reports whether d has the given type, ignoring case.
func IsOfType(d Data, typ string) bool {
	return d != nil && strings.EqualFold(d.Type(), typ)
}

// IsOfSubtype reports whether d has the given subtype, ignoring case.
func IsOfSubtype(d Data, subtype string) bool {
	return d != nil && strings.EqualFold(d.Subtype(), subtype)
}

// MergeDataLocations returns d with its span widened to also cover other.
func MergeDataLocations(d, other Data) Data {
	if other == nil {
		return d
	}
	return d.WithLocation(d.Location().Union(other.Location()))
}

// CompareDataPosition orders data by start offset, then by end offset.
func CompareDataPosition(a, b Data) int {
	switch {
	case a.StartInLine() < b.StartInLine():
		return -1
	case a.StartInLine() > b.StartInLine():
		return 1
	case a.EndInLine() < b.EndInLine():
		return -1
	case a.EndInLine() > b.EndInLine():
		return 1
	}
	return 0
}

func sameSpan(a, b Data) bool {
	return a.StartInLine() == b.StartInLine() && a.EndInLine() == b.EndInLine()
}

// Decimal is a dimensionless number.
type Decimal struct {
	DataLocation
	Value Number
}

// NewDecimal returns a dimensionless datum.
func NewDecimal(loc DataLocation, v Number) *Decimal {
	return &Decimal{DataLocation: loc, Value: v}
}

func (d *Decimal) Type() string                                { return TypeDecimal }
func (d *Decimal) Subtype() string                             { return "" }
func (d *Decimal) ConflictResolutionPriority() int             { return 100 }
func (d *Decimal) WithLocation(loc DataLocation) Data          { cp := *d; cp.DataLocation = loc; return &cp }
func (d *Decimal) NumericValueInCurrentUnit() Number           { return d.Value }
func (d *Decimal) NumericValueInStandardUnit() Number          { return d.Value }
func (d *Decimal) CreateFromCurrentUnit(v Number) NumericData  { return NewDecimal(d.DataLocation, v) }
func (d *Decimal) CreateFromStandardUnit(v Number) NumericData { return NewDecimal(d.DataLocation, v) }

func (d *Decimal) DisplayText(culture string) string {
	return FormatNumber(d.Value, culture, defaultFractionDigits)
}

func (d *Decimal) Equal(other Data) bool {
	o, ok := other.(*Decimal)
	return ok && sameSpan(d, o) && d.Value.Equal(o.Value)
}

func (d *Decimal) Add(o NumericData) (NumericData, error)      { return addStandard(d, o) }
func (d *Decimal) Subtract(o NumericData) (NumericData, error) { return subtractStandard(d, o) }
func (d *Decimal) Multiply(o NumericData) (NumericData, error) { return multiplyCurrent(d, o) }
func (d *Decimal) Divide(o NumericData) (NumericData, error)   { return divideCurrent(d, o) }

// Fraction is a fraction word such as "the half". Its value is the ratio
// applied to the other operand of an operation.
type Fraction struct {
	DataLocation
	Ratio Number
}

func (f *Fraction) Type() string                       { return TypeFraction }
func (f *Fraction) Subtype() string                    { return "" }
func (f *Fraction) ConflictResolutionPriority() int    { return 80 }
func (f *Fraction) WithLocation(loc DataLocation) Data { cp := *f; cp.DataLocation = loc; return &cp }
func (f *Fraction) NumericValueInCurrentUnit() Number  { return f.Ratio }
func (f *Fraction) NumericValueInStandardUnit() Number { return f.Ratio }
func (f *Fraction) CreateFromCurrentUnit(v Number) NumericData {
	return &Fraction{DataLocation: f.DataLocation, Ratio: v}
}
func (f *Fraction) CreateFromStandardUnit(v Number) NumericData { return f.CreateFromCurrentUnit(v) }

func (f *Fraction) DisplayText(culture string) string {
	return FormatNumber(f.Ratio, culture, defaultFractionDigits)
}

func (f *Fraction) Equal(other Data) bool {
	o, ok := other.(*Fraction)
	return ok && sameSpan(f, o) && f.Ratio.Equal(o.Ratio)
}

// ResolveRelativeTo returns the ratio of other's value, in other's kind.
func (f *Fraction) ResolveRelativeTo(other NumericData) NumericData {
	v := other.NumericValueInStandardUnit().Mul(f.Ratio)
	return other.CreateFromStandardUnit(v).WithLocation(f.DataLocation).(NumericData)
}

func (f *Fraction) Add(o NumericData) (NumericData, error)      { return addStandard(f, o) }
func (f *Fraction) Subtract(o NumericData) (NumericData, error) { return subtractStandard(f, o) }
func (f *Fraction) Multiply(o NumericData) (NumericData, error) { return multiplyCurrent(f, o) }
func (f *Fraction) Divide(o NumericData) (NumericData, error)   { return divideCurrent(f, o) }

// Percentage holds a value such as 20 for "20%".
type Percentage struct {
	DataLocation
	Value Number
}

// NewPercentage returns a percentage datum.
func NewPercentage(loc DataLocation, v Number) *Percentage {
	return &Percentage{DataLocation: loc, Value: v}
}

var hundred = NumberFromInt(100)

func (p *Percentage) Type() string                       { return TypePercentage }
func (p *Percentage) Subtype() string                    { return "" }
func (p *Percentage) ConflictResolutionPriority() int    { return 30 }
func (p *Percentage) WithLocation(loc DataLocation) Data { cp := *p; cp.DataLocation = loc; return &cp }
func (p *Percentage) NumericValueInCurrentUnit() Number  { return p.Value }

// NumericValueInStandardUnit returns the fraction, 0.2 for 20%.
func (p *Percentage) NumericValueInStandardUnit() Number { return p.Value.Quo(hundred) }

func (p *Percentage) CreateFromCurrentUnit(v Number) NumericData {
	return NewPercentage(p.DataLocation, v)
}
func (p *Percentage) CreateFromStandardUnit(v Number) NumericData {
	return NewPercentage(p.DataLocation, v.Mul(hundred))
}

func (p *Percentage) DisplayText(culture string) string {
	return FormatNumber(p.Value, culture, defaultFractionDigits) + "%"
}

func (p *Percentage) Equal(other Data) bool {
	o, ok := other.(*Percentage)
	return ok && sameSpan(p, o) && p.Value.Equal(o.Value)
}

func (p *Percentage) Add(o NumericData) (NumericData, error)      { return addStandard(p, o) }
func (p *Percentage) Subtract(o NumericData) (NumericData, error) { return subtractStandard(p, o) }

// Multiply and Divide work on fractions so that 20% * 50% is 10%.
func (p *Percentage) Multiply(o NumericData) (NumericData, error) {
	return p.CreateFromStandardUnit(p.NumericValueInStandardUnit().Mul(o.NumericValueInStandardUnit())), nil
}

func (p *Percentage) Divide(o NumericData) (NumericData, error) {
	return p.CreateFromStandardUnit(p.NumericValueInStandardUnit().Quo(o.NumericValueInStandardUnit())), nil
}

// Boolean is the result of a relation.
type Boolean struct {
	DataLocation
	Value bool
}

func (b *Boolean) Type() string                       { return TypeBoolean }
func (b *Boolean) Subtype() string                    { return "" }
func (b *Boolean) ConflictResolutionPriority() int    { return 85 }
func (b *Boolean) WithLocation(loc DataLocation) Data { cp := *b; cp.DataLocation = loc; return &cp }

func (b *Boolean) DisplayText(culture string) string {
	if MatchCulture(culture) == cultureFrFR {
		if b.Value {
			return "vrai"
		}
		return "faux"
	}
	if b.Value {
		return "true"
	}
	return "false"
}

func (b *Boolean) Equal(other Data) bool {
	o, ok := other.(*Boolean)
	return ok && sameSpan(b, o) && b.Value == o.Value
}

// ErrorData carries a failure of a line in place of a result.
type ErrorData struct {
	DataLocation
	Err error
}

// NewErrorData wraps err as a datum.
func NewErrorData(loc DataLocation, err error) *ErrorData {
	return &ErrorData{DataLocation: loc, Err: err}
}

func (e *ErrorData) Type() string                       { return TypeError }
func (e *ErrorData) Subtype() string                    { return "" }
func (e *ErrorData) ConflictResolutionPriority() int    { return 1000 }
func (e *ErrorData) WithLocation(loc DataLocation) Data { cp := *e; cp.DataLocation = loc; return &cp }

// DisplayText returns the localized message of a DataOperationError, or the
// raw error text otherwise.
func (e *ErrorData) DisplayText(culture string) string {
	var doe *DataOperationError
	if errors.As(e.Err, &doe) {
		return doe.LocalizedMessage(culture)
	}
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ErrorData) Equal(other Data) bool {
	o, ok := other.(*ErrorData)
	return ok && sameSpan(e, o) && e.DisplayText(cultureEnUS) == o.DisplayText(cultureEnUS)
}

// Generic arithmetic once both operands share a kind.

func addStandard(a, b NumericData) (NumericData, error) {
	return a.CreateFromStandardUnit(a.NumericValueInStandardUnit().Add(b.NumericValueInStandardUnit())), nil
}

func subtractStandard(a, b NumericData) (NumericData, error) {
	return a.CreateFromStandardUnit(a.NumericValueInStandardUnit().Sub(b.NumericValueInStandardUnit())), nil
}

func multiplyCurrent(a, b NumericData) (NumericData, error) {
	return a.CreateFromCurrentUnit(a.NumericValueInCurrentUnit().Mul(b.NumericValueInCurrentUnit())), nil
}

func divideCurrent(a, b NumericData) (NumericData, error) {
	return a.CreateFromCurrentUnit(a.NumericValueInCurrentUnit().Quo(b.NumericValueInCurrentUnit())), nil
}
