package lang

import (
	"math"
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Number is an exact rational magnitude. Dividing by zero yields an infinite
// Number instead of failing, so a zero Number value is 0 and inf holds the
// sign of an infinite value.
type Number struct {
	rat *big.Rat
	inf int
}

// NewNumber returns a Number holding a copy of r.
func NewNumber(r *big.Rat) Number {
	if r == nil {
		return Number{}
	}
	return Number{rat: new(big.Rat).Set(r)}
}

// NumberFromInt returns i as a Number.
func NumberFromInt(i int64) Number {
	return Number{rat: new(big.Rat).SetInt64(i)}
}

// NumberFromFrac returns num/denom as a Number.
func NumberFromFrac(num, denom int64) Number {
	if denom == 0 {
		return Infinity(sign64(num))
	}
	return Number{rat: new(big.Rat).SetFrac64(num, denom)}
}

// NumberFromFloat converts f exactly. NaN becomes 0.
func NumberFromFloat(f float64) Number {
	switch {
	case math.IsNaN(f):
		return Number{}
	case math.IsInf(f, 1):
		return Infinity(1)
	case math.IsInf(f, -1):
		return Infinity(-1)
	}
	return Number{rat: new(big.Rat).SetFloat64(f)}
}

// ParseNumber parses a decimal or fraction string such as "1.5" or "3/4".
func ParseNumber(s string) (Number, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Number{}, false
	}
	return Number{rat: r}, true
}

// Infinity returns +∞ for sign >= 0 and -∞ otherwise.
func Infinity(sign int) Number {
	if sign < 0 {
		return Number{inf: -1}
	}
	return Number{inf: 1}
}

func sign64(i int64) int {
	if i < 0 {
		return -1
	}
	return 1
}

// IsInf reports whether n is infinite.
func (n Number) IsInf() bool { return n.inf != 0 }

// Rat returns a copy of the finite value; infinite values return nil.
func (n Number) Rat() *big.Rat {
	if n.inf != 0 {
		return nil
	}
	if n.rat == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(n.rat)
}

func (n Number) r() *big.Rat {
	if n.rat == nil {
		return new(big.Rat)
	}
	return n.rat
}

// Sign returns -1, 0 or +1.
func (n Number) Sign() int {
	if n.inf != 0 {
		return n.inf
	}
	return n.r().Sign()
}

// IsZero reports whether n is exactly zero.
func (n Number) IsZero() bool { return n.Sign() == 0 }

// IsInt reports whether n is a finite integer.
func (n Number) IsInt() bool { return n.inf == 0 && n.r().IsInt() }

// Add returns n + o.
func (n Number) Add(o Number) Number {
	if n.inf != 0 {
		return n
	}
	if o.inf != 0 {
		return o
	}
	return Number{rat: new(big.Rat).Add(n.r(), o.r())}
}

// Sub returns n - o.
func (n Number) Sub(o Number) Number {
	return n.Add(o.Neg())
}

// Mul returns n * o. Infinity times zero is zero.
func (n Number) Mul(o Number) Number {
	if n.inf != 0 || o.inf != 0 {
		s := n.Sign() * o.Sign()
		if s == 0 {
			return Number{}
		}
		return Infinity(s)
	}
	return Number{rat: new(big.Rat).Mul(n.r(), o.r())}
}

// Quo returns n / o. Division by zero returns +∞.
func (n Number) Quo(o Number) Number {
	if o.IsZero() {
		return Infinity(1)
	}
	if n.inf != 0 {
		return Infinity(n.inf * o.Sign())
	}
	if o.inf != 0 {
		return Number{}
	}
	return Number{rat: new(big.Rat).Quo(n.r(), o.r())}
}

// Neg returns -n.
func (n Number) Neg() Number {
	if n.inf != 0 {
		return Number{inf: -n.inf}
	}
	return Number{rat: new(big.Rat).Neg(n.r())}
}

// Abs returns |n|.
func (n Number) Abs() Number {
	if n.Sign() < 0 {
		return n.Neg()
	}
	return n
}

// Cmp compares n and o.
func (n Number) Cmp(o Number) int {
	if n.inf != 0 || o.inf != 0 {
		switch {
		case n.inf == o.inf:
			return 0
		case n.inf > o.inf:
			return 1
		default:
			return -1
		}
	}
	return n.r().Cmp(o.r())
}

// Equal reports whether n and o are the same value.
func (n Number) Equal(o Number) bool { return n.Cmp(o) == 0 }

// Float64 returns the nearest float64.
func (n Number) Float64() float64 {
	if n.inf != 0 {
		return math.Inf(n.inf)
	}
	f, _ := n.r().Float64()
	return f
}

// Int64 truncates n to an int64.
func (n Number) Int64() int64 {
	if n.inf != 0 {
		if n.inf > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	r := n.r()
	return new(big.Int).Quo(r.Num(), r.Denom()).Int64()
}

func (n Number) String() string {
	return FormatNumber(n, cultureEnUS, defaultFractionDigits)
}

const defaultFractionDigits = 10

// FormatNumber renders n rounded half-up to at most maxFractionDigits
// fractional digits, without trailing zeros or digit grouping, using the
// culture's decimal separator.
func FormatNumber(n Number, culture string, maxFractionDigits int) string {
	if n.inf > 0 {
		return "∞"
	}
	if n.inf < 0 {
		return "-∞"
	}
	s := roundRat(n.r(), maxFractionDigits, false)
	return localizeDecimal(s, culture)
}

// FormatNumberFixed renders n with exactly fractionDigits digits unless n is
// an integer.
func FormatNumberFixed(n Number, culture string, fractionDigits int) string {
	if n.inf != 0 || n.IsInt() {
		return FormatNumber(n, culture, 0)
	}
	return localizeDecimal(roundRat(n.r(), fractionDigits, true), culture)
}

func roundRat(r *big.Rat, fractionDigits int, keepZeros bool) string {
	if r.IsInt() {
		return r.Num().String()
	}
	num, _, err := apd.NewFromString(r.Num().String())
	if err != nil {
		return r.FloatString(fractionDigits)
	}
	den, _, err := apd.NewFromString(r.Denom().String())
	if err != nil {
		return r.FloatString(fractionDigits)
	}
	ctx := apd.BaseContext.WithPrecision(60)
	ctx.Rounding = apd.RoundHalfUp
	var q apd.Decimal
	if _, err := ctx.Quo(&q, num, den); err != nil {
		return r.FloatString(fractionDigits)
	}
	if _, err := ctx.Quantize(&q, &q, -int32(fractionDigits)); err != nil {
		return r.FloatString(fractionDigits)
	}
	if !keepZeros {
		q.Reduce(&q)
	}
	if q.IsZero() {
		q.Negative = false
	}
	return q.Text('f')
}

func localizeDecimal(s, culture string) string {
	sep := cultureInfoFor(culture).decimalSeparator
	if sep == '.' {
		return s
	}
	return strings.Replace(s, ".", string(sep), 1)
}
