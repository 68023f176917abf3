package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// decimalContext is shared by all decimal arithmetic. 34 digits matches
// IEEE 754 decimal128, well beyond any NUMERIC column in staging.
var decimalContext = apd.BaseContext.WithPrecision(34)

// Decimal is an arbitrary-precision value used for fixed-point staging columns.
// The zero value is 0.
type Decimal struct {
	value apd.Decimal
}

// ParseDecimal parses a decimal string such as "1250.75" or "-50".
func ParseDecimal(s string) (Decimal, error) {
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return Decimal{value: d}, nil
}

// MustDecimal is ParseDecimal that panics on malformed input. Intended for
// literals in tests and fixtures.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimalFromInt64 returns i as a Decimal.
func NewDecimalFromInt64(i int64) Decimal {
	var d apd.Decimal
	d.SetInt64(i)
	return Decimal{value: d}
}

func (d Decimal) String() string {
	return d.value.String()
}

// Finite reports whether d is a number, not NaN or an infinity.
func (d Decimal) Finite() bool {
	return d.value.Form == apd.Finite
}

// Add returns the sum of d and other. Overflow and other trapped conditions
// are errors.
func (d Decimal) Add(other Decimal) (Decimal, error) {
	var result apd.Decimal
	if _, err := decimalContext.Add(&result, &d.value, &other.value); err != nil {
		return Decimal{}, fmt.Errorf("decimal %s + %s: %w", d.value.String(), other.value.String(), err)
	}
	return Decimal{value: result}, nil
}

// Div returns the quotient of d divided by other. Division by zero is an
// error.
func (d Decimal) Div(other Decimal) (Decimal, error) {
	var result apd.Decimal
	if _, err := decimalContext.Quo(&result, &d.value, &other.value); err != nil {
		return Decimal{}, fmt.Errorf("decimal %s / %s: %w", d.value.String(), other.value.String(), err)
	}
	return Decimal{value: result}, nil
}

// Float64 widens d to the float representation used by the warehouse.
func (d Decimal) Float64() (float64, error) {
	f, err := d.value.Float64()
	if err != nil {
		return 0, fmt.Errorf("decimal %s to float: %w", d.value.String(), err)
	}
	return f, nil
}
