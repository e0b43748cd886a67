package action

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places every amount and quantity is rounded to.
const Precision int32 = 2

var (
	// ErrNotFinite is returned for NaN and infinite inputs.
	ErrNotFinite = errors.New("value is not a finite number")

	// ErrNotPositive is returned when a value must be strictly greater than zero.
	ErrNotPositive = errors.New("value must be greater than zero")

	// ErrZero is returned when a signed value must not be zero.
	ErrZero = errors.New("value must not be zero")
)

// Round rounds d half away from zero to Precision places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Precision)
}

// FromFloat converts a float coming off the wire into a rounded decimal.
// Non-finite values are rejected; sign is not checked.
func FromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, ErrNotFinite
	}
	return Round(decimal.NewFromFloat(v)), nil
}

// NormalizeAmount converts a monetary value, rejecting anything that is
// not finite or does not stay positive after rounding.
func NormalizeAmount(v float64) (decimal.Decimal, error) {
	d, err := FromFloat(v)
	if err != nil {
		return decimal.Zero, err
	}
	if err := CheckPositive(d); err != nil {
		return decimal.Zero, fmt.Errorf("%w (got %v)", err, v)
	}
	return d, nil
}

// NormalizeQuantity applies the same rules as NormalizeAmount to a quantity.
func NormalizeQuantity(v float64) (decimal.Decimal, error) {
	return NormalizeAmount(v)
}

// NormalizeSigned converts a signed delta. It keeps the sign but rejects
// values that are non-finite or round to zero.
func NormalizeSigned(v float64) (decimal.Decimal, error) {
	d, err := FromFloat(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return decimal.Zero, fmt.Errorf("%w (got %v)", ErrZero, v)
	}
	return d, nil
}

// CheckPositive returns ErrNotPositive unless d rounds to a value above zero.
func CheckPositive(d decimal.Decimal) error {
	if !Round(d).IsPositive() {
		return ErrNotPositive
	}
	return nil
}

// FormatMoney renders an amount with exactly Precision decimal places.
func FormatMoney(d decimal.Decimal) string {
	return Round(d).StringFixed(Precision)
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(d decimal.Decimal) string {
	return Round(d).String()
}

// FormatDelta renders a signed quantity change with an explicit sign.
func FormatDelta(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatQuantity(d)
	}
	return "+" + FormatQuantity(d)
}
