package exchange

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount limits. Every supported currency has two minor-unit digits.
const (
	AmountDecimals  = 2
	MaxAmountDigits = 15
)

// maxBalance is the first balance that no longer fits in MaxAmountDigits.
var maxBalance = decimal.New(1, MaxAmountDigits)

// ParseAmount reads a strictly positive amount written in plain decimal
// notation, like "12" or "12.50". Exponents are refused with
// ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	v, err := parsePlainDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNonPositive, s)
	}
	if !v.Equal(v.Truncate(AmountDecimals)) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmountPrecision, s)
	}
	return v, nil
}

// parsePlainDecimal parses [+|-]digits[.digits] with at most MaxAmountDigits
// significant integer digits.
func parsePlainDecimal(s string) (decimal.Decimal, error) {
	body, negative := s, false
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		body, negative = body[1:], body[0] == '-'
	}
	intPart, frac, dot := strings.Cut(body, ".")
	if intPart == "" || !isDigits(intPart) || !isDigits(frac) || (dot && frac == "") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(strings.TrimLeft(intPart, "0")) > MaxAmountDigits {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmountTooLarge, s)
	}
	v, err := decimal.NewFromString(body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if negative {
		v = v.Neg()
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Money represents an amount in one currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   Currency
}

// M builds a Money from a decimal or a float.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency Currency) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// String returns the amount formatted for humans, e.g. "$1,234.50".
func (m Money) String() string {
	cur := money.GetCurrency(m.cur.String())
	if cur == nil {
		return m.Fixed() + " " + m.cur.String()
	}
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// Fixed returns the amount rounded to the currency minor unit, without
// symbol nor grouping, e.g. "1234.50". It is the wire and file rendering.
func (m Money) Fixed() string {
	return m.value.StringFixed(int32(m.cur.fraction()))
}

// Simple accessors and comparisons.

func (m Money) Currency() Currency              { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

func cur(a, b Money) Currency {
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur.String() + "!=" + b.cur.String())
	}
	return a.cur
}

// Round returns the amount rounded to the currency minor unit.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.cur.fraction())), cur: m.cur}
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", m.cur.String())
	w.Append("amount", m.Round().value)
	return w.MarshalJSON()
}
