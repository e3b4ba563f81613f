// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Values crossing a JSON boundary are
// coerced here so that downstream arithmetic only ever sees numbers.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// NewMoney converts a decimal amount (e.g. 1234.56) to Money, rounding
// half away from zero to the nearest cent.
func NewMoney(amount float64) Money {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}
	}
	cents, _ := centsOf(decimal.NewFromFloat(amount))
	return Money{Cents: cents}
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// centsOf rounds d to cents. Amounts whose cents do not fit in an int64
// report false and yield 0.
func centsOf(d decimal.Decimal) (int64, bool) {
	c := d.Shift(2).Round(0)
	if c.Abs().GreaterThan(maxCents) {
		return 0, false
	}
	return c.IntPart(), true
}

// Cents is a shorthand for Money{Cents: c}.
func Cents(c int64) Money {
	return Money{Cents: c}
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Decimal returns the amount as an exact decimal in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the currency value as a float64 for display purposes.
// Use cents for calculations.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Missing, null, empty,
// non-numeric or out-of-range values coerce to zero instead of failing the
// record.
func (m *Money) UnmarshalJSON(b []byte) error {
	m.Cents = 0
	d, ok := decodeNumber(b)
	if !ok {
		return nil
	}
	m.Cents, _ = centsOf(d)
	return nil
}

// Percent is a percentage expressed in the 0..100 range. It is not
// clamped: out-of-range values are carried as given.
type Percent float64

func (p Percent) Float() float64 {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return 0
	}
	return float64(p)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Float())
}

// UnmarshalJSON coerces null, empty and non-numeric input to zero.
func (p *Percent) UnmarshalJSON(b []byte) error {
	*p = 0
	d, ok := decodeNumber(b)
	if !ok {
		return nil
	}
	*p = Percent(d.InexactFloat64())
	return nil
}

func decodeNumber(b []byte) (decimal.Decimal, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return decimal.Zero, false
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return decimal.Zero, false
		}
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	cents, err := parseUnsignedCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseSignedDecimalToCents is ParseDecimalToCents for signed amounts.
// Zero is allowed; a leading '-' or accounting parentheses make it negative.
//
//	ParseSignedDecimalToCents("-12.50") -> -1250, nil
//	ParseSignedDecimalToCents("(3.00)") -> -300, nil
func ParseSignedDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	cents, err := parseUnsignedCents(s)
	if err != nil {
		return 0, err
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

func parseUnsignedCents(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	if fracCents > math.MaxInt64-iv*100 {
		return 0, ErrInvalidAmount
	}
	return iv*100 + fracCents, nil
}
