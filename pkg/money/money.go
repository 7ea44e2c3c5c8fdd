// Package money holds helpers for integer minor-unit amounts. Amounts stay in cents everywhere
// and are converted to decimal text only at formatting boundaries.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// Decimal returns the amount in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount with two fixed decimals, e.g. "12.34".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Dollars renders the amount with a leading currency symbol, e.g. "$12.34" or "-$0.50".
func (c Cents) Dollars() string {
	if c < 0 {
		return "-$" + (-c).String()
	}
	return "$" + c.String()
}

// WholeUnits returns the number of whole major units, truncated toward zero.
func (c Cents) WholeUnits() int64 {
	return int64(c) / 100
}

// FromDecimal converts a major-unit decimal into cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Parse reads a decimal string such as "19.99" into cents. More than two fractional digits is
// rejected rather than silently rounded.
func Parse(value string) (Cents, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("amount %q has more than two decimal places", value)
	}
	return FromDecimal(d), nil
}

// MulRate multiplies the amount by rate and rounds half-up to the nearest cent. Negative
// products round half away from zero; checkout only passes non-negative amounts.
func (c Cents) MulRate(rate decimal.Decimal) Cents {
	return Cents(decimal.NewFromInt(int64(c)).Mul(rate).Round(0).IntPart())
}
