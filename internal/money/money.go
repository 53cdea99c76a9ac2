// Package money converts between decimal currency amounts and integer minor units.
//
// Amounts are stored and compared as int64 cents. Decimal values only appear at the
// input and display edges.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is appended to amounts rendered for people.
const Symbol = "€"

// ErrOutOfRange is returned for amounts whose minor units do not fit in an int64.
var ErrOutOfRange = errors.New("amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ToMinorUnits rounds amount to the nearest minor unit, halves away from zero.
// Sign checks belong to the caller. Results beyond int64 fail with ErrOutOfRange.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	return toInt64(amount.Shift(2).Round(0))
}

func toInt64(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(maxMinor) || d.LessThan(minMinor) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return d.IntPart(), nil
}

// ToDecimal converts minor units to a decimal with two fractional digits.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ParseMinor reads a stored minor-unit cell. Empty, non-numeric or out of range
// cells read as 0.
func ParseMinor(cell string) int64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// USER_ENTERED cells can come back as "1050.0"
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	v, err := toInt64(d.Round(0))
	if err != nil {
		return 0
	}
	return v
}

// CellToDecimal is ToDecimal(ParseMinor(cell)).
func CellToDecimal(cell string) decimal.Decimal {
	return ToDecimal(ParseMinor(cell))
}

// FormatMinor renders minor units as a plain two-digit decimal, e.g. "10.50".
func FormatMinor(minor int64) string {
	return ToDecimal(minor).StringFixed(2)
}

// Display renders minor units for people, e.g. "10.50 €".
func Display(minor int64) string {
	return FormatMinor(minor) + " " + Symbol
}

// ParseAmount parses a user-entered amount. A decimal comma is accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), Symbol))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
