// Package money provides the fixed-point amount type used by every aggregate.
//
// Amounts are stored as integer minor units (cents). Conversions to and from
// decimal strings go through shopspring/decimal so no float ever touches a sum.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned by Parse for malformed or negative input.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents is an amount in minor currency units.
type Cents int64

// Zero is the zero amount.
const Zero Cents = 0

// Decimal returns c as a decimal with two fractional digits.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats c as a plain decimal, e.g. "1234.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// FromDecimal converts d to cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// Parse converts a non-negative decimal string into cents. Both "12.34" and
// "12,34" are accepted; digits past the second decimal place are rounded.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d), nil
}

// Max returns the larger of a and b.
func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}

// Sum adds up amounts.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}

// Percent returns part/whole*100 rounded to places. A zero whole yields zero.
func Percent(part, whole Cents, places int32) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return part.Decimal().Mul(decimal.NewFromInt(100)).Div(whole.Decimal()).Round(places)
}

// Exceeds reports whether part is strictly greater than num/den of whole,
// compared in integer arithmetic.
func Exceeds(part, whole Cents, num, den int64) bool {
	return int64(part)*den > int64(whole)*num
}
