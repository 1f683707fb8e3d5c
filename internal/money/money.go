// Package money converts between user-facing decimal amounts and the int64
// minor units used everywhere else.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorDigits is the number of minor-unit digits (paise per rupee = 100).
const MinorDigits = 2

// MaxMinor is the largest amount Parse accepts, in minor units
// (one trillion in major units). Sums of many such amounts stay within int64.
const MaxMinor int64 = 100_000_000_000_000

var maxMinor = decimal.NewFromInt(MaxMinor)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.New("amount has more than two decimal places")
	ErrTooLarge       = fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, Decimal(MaxMinor))
)

// Parse converts a major-unit string such as "30.50" into minor units (3050).
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}

	minor := d.Shift(MinorDigits)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrTooPrecise, s)
	}
	if minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s", ErrTooLarge, s)
	}
	return minor.IntPart(), nil
}

// Decimal returns minor units as a major-unit string with two decimals.
func Decimal(minor int64) string {
	return decimal.New(minor, -MinorDigits).StringFixed(MinorDigits)
}

// Format renders minor units with a currency symbol, e.g. "₹30.50" or "-₹5.00".
func Format(minor int64, symbol string) string {
	if minor < 0 {
		return "-" + symbol + Decimal(-minor)
	}
	return symbol + Decimal(minor)
}

// Float returns minor units in major units as a float64. exact is false
// when the value cannot be represented exactly.
func Float(minor int64) (f float64, exact bool) {
	return decimal.New(minor, -MinorDigits).Float64()
}
