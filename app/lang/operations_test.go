package lang

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"
)

var (
	locLeft  = DataLocation{LineText: "left right", Start: 0, End: 4}
	locRight = DataLocation{LineText: "left right", Start: 5, End: 10}
)

func dec(v int64) *Decimal { return NewDecimal(locLeft, NumberFromInt(v)) }

func qty(v int64, dimension, symbol string) *Quantity {
	return NewQuantity(locLeft, NumberFromInt(v), LookupUnit(dimension, symbol))
}

func money(v int64, iso string) *Currency { return NewCurrency(locLeft, NumberFromInt(v), iso) }

func testOperations() *OperationService {
	return NewOperationService(StaticRates{"USD": big.NewRat(1, 1), "EUR": big.NewRat(1, 2)})
}

func TestPerformOperation(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		left  Data
		op    BinaryOperatorType
		right Data
		want  string
	}{
		{"decimal plus percentage", dec(3), OpAddition, NewPercentage(locRight, NumberFromInt(25)), "3.75"},
		{"quantity minus percentage", qty(4, TypeLength, "km"), OpSubtraction, NewPercentage(locRight, NumberFromInt(25)), "3 km"},
		{"length sum keeps left unit", qty(1, TypeLength, "km"), OpAddition, qty(500, TypeLength, "m"), "1.5 km"},
		{"length times length", qty(2, TypeLength, "m"), OpMultiply, qty(3, TypeLength, "m"), "6 m²"},
		{"length over duration", qty(10, TypeLength, "km"), OpDivision, qty(2, TypeDuration, "h"), "5 km/h"},
		{"same dimension ratio", qty(3, TypeLength, "km"), OpDivision, qty(500, TypeLength, "m"), "6"},
		{"decimal times quantity", dec(3), OpMultiply, qty(2, TypeMass, "kg"), "6 kg"},
		{"division by zero", dec(6), OpDivision, dec(0), "∞"},
		{"currencies convert to the left", money(10, "EUR"), OpAddition, money(5, "USD"), "12.50 EUR"},
		{"currency ratio", money(10, "USD"), OpDivision, money(5, "EUR"), "1"},
		{"dates", NewDateTime(locLeft, day.AddDate(0, 0, 1), true, false), OpSubtraction, NewDateTime(locRight, day, true, false), "1.00:00:00"},
		{"relation across units", qty(1, TypeLength, "km"), OpGreaterThan, qty(999, TypeLength, "m"), "true"},
		{"equal booleans", &Boolean{DataLocation: locLeft, Value: true}, OpEquality, &Boolean{DataLocation: locRight, Value: true}, "true"},
		{"decimal relation", dec(2), OpLessThanOrEqualTo, dec(1), "false"},
	}

	s := testOperations()
	for _, tt := range tests {
		got, err := s.PerformOperation(context.Background(), tt.left, tt.op, tt.right)
		if err != nil {
			t.Errorf("%s: error: %v", tt.name, err)
			continue
		}
		if d := got.DisplayText("en-US"); d != tt.want {
			t.Errorf("%s: %s %s %s = %q, want %q", tt.name, tt.left.DisplayText("en-US"), tt.op, tt.right.DisplayText("en-US"), d, tt.want)
		}
	}
}

func TestPerformOperationResultSpansOperands(t *testing.T) {
	right := NewDecimal(locRight, NumberFromInt(2))
	got, err := testOperations().PerformOperation(context.Background(), dec(1), OpAddition, right)
	if err != nil {
		t.Fatal(err)
	}
	if got.StartInLine() != 0 || got.EndInLine() != 10 {
		t.Errorf("result span = %d..%d, want 0..10", got.StartInLine(), got.EndInLine())
	}
}

func TestPerformOperationErrors(t *testing.T) {
	tests := []struct {
		name  string
		left  Data
		op    BinaryOperatorType
		right Data
		key   string
	}{
		{"length plus duration", qty(20, TypeLength, "km"), OpAddition, qty(30, TypeDuration, "h"), ErrIncompatibleUnits},
		{"decimal over length", dec(1), OpDivision, qty(1, TypeLength, "m"), ErrUnsupportedArithmetic},
		{"ordered booleans", &Boolean{Value: true}, OpLessThan, &Boolean{Value: false}, ErrUnsupportedArithmetic},
		{"boolean against number", &Boolean{Value: true}, OpEquality, dec(1), ErrIncompatibleUnits},
		{"date plus length", NewDateTime(locLeft, time.Now(), true, false), OpAddition, qty(1, TypeLength, "m"), ErrIncompatibleUnits},
	}

	s := testOperations()
	for _, tt := range tests {
		_, err := s.PerformOperation(context.Background(), tt.left, tt.op, tt.right)
		var doe *DataOperationError
		if !errors.As(err, &doe) {
			t.Errorf("%s: error = %v, want a DataOperationError", tt.name, err)
			continue
		}
		if doe.Key != tt.key {
			t.Errorf("%s: error = %q, want %q", tt.name, doe.Key, tt.key)
		}
	}
}

func TestPerformOperationNilOperand(t *testing.T) {
	got, err := testOperations().PerformOperation(context.Background(), nil, OpAddition, dec(1))
	if got != nil || err != nil {
		t.Errorf("PerformOperation(nil, 1) = %v, %v, want nil, nil", got, err)
	}
}

func TestConvertTo(t *testing.T) {
	s := testOperations()
	ctx := context.Background()

	got, err := s.ConvertTo(ctx, qty(1, TypeLength, "km"), LookupUnit(TypeLength, "m"), "")
	if err != nil || got.DisplayText("en-US") != "1000 m" {
		t.Errorf("1 km to m = %v, %v, want 1000 m", got, err)
	}
	got, err = s.ConvertTo(ctx, money(10, "USD"), nil, "EUR")
	if err != nil || got.DisplayText("en-US") != "5 EUR" {
		t.Errorf("10 USD to EUR = %v, %v, want 5 EUR", got, err)
	}
	if _, err := s.ConvertTo(ctx, money(10, "USD"), nil, "XYZ"); err == nil {
		t.Error("converting to an unknown currency succeeded")
	}
	if _, err := s.ConvertTo(ctx, &Boolean{Value: true}, LookupUnit(TypeLength, "m"), ""); err == nil {
		t.Error("converting a boolean succeeded")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n       Number
		culture string
		want    string
	}{
		{NumberFromFrac(1, 3), "en-US", "0.3333333333"},
		{NumberFromFrac(2, 3), "en-US", "0.6666666667"},
		{NumberFromFrac(5, 2), "fr-FR", "2,5"},
		{NumberFromInt(-7), "en-US", "-7"},
		{Infinity(1), "en-US", "∞"},
		{Infinity(-1), "en-US", "-∞"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.n, tt.culture, defaultFractionDigits); got != tt.want {
			t.Errorf("FormatNumber(%s, %s) = %q, want %q", tt.n.Rat().RatString(), tt.culture, got, tt.want)
		}
	}
	if got := FormatNumberFixed(NumberFromFrac(1, 10), "en-US", 2); got != "0.10" {
		t.Errorf("FormatNumberFixed(0.1, 2) = %q, want 0.10", got)
	}
}

func TestFormatTimeSpan(t *testing.T) {
	tests := []struct {
		seconds Number
		want    string
	}{
		{NumberFromInt(0), "00:00:00"},
		{NumberFromInt(3661), "01:01:01"},
		{NumberFromInt(90000), "1.01:00:00"},
		{NumberFromInt(-60), "-00:01:00"},
		{NumberFromFrac(3, 2), "00:00:01.5000000"},
	}

	for _, tt := range tests {
		if got := FormatTimeSpan(tt.seconds, "en-US"); got != tt.want {
			t.Errorf("FormatTimeSpan(%s) = %q, want %q", tt.seconds.Rat().RatString(), got, tt.want)
		}
	}
}
