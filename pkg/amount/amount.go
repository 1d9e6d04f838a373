// Package amount normalises the numeric cells of the task table.
//
// Cells arrive as display strings ("1,200.50", " 300 ", "") and are
// coerced to float64. Arithmetic on balances goes through decimal so
// that repeated increases and decreases do not accumulate binary
// rounding error.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

var separators = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\t", "")

// Parse normalises s and parses it as a decimal number. The boolean
// result is false when s is blank or not a number.
func Parse(s string) (float64, bool) {
	d, ok := parse(s)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// Coerce parses s and returns 0 for anything that does not parse.
func Coerce(s string) float64 {
	f, _ := Parse(s)
	return f
}

// Valid reports whether s is blank or parses as a number. Blank is
// the legitimate "no value" state and is not treated as bad data.
func Valid(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, ok := parse(s)
	return ok
}

// Flag interprets a 0/1 cell. Anything other than a value equal
// to one, or the literal "true", is false.
func Flag(s string) bool {
	if strings.EqualFold(strings.TrimSpace(s), "true") {
		return true
	}
	return Coerce(s) == 1
}

// ValidFlag reports whether s is a boolean literal Flag understands.
func ValidFlag(s string) bool {
	v := strings.TrimSpace(s)
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "false")
}

// FlagString renders a boolean as the persisted "0"/"1" form.
func FlagString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Format renders f as canonical decimal text without trailing zeros.
func Format(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// Display renders f with two decimals and thousands separators.
func Display(f float64) string {
	fixed := decimal.NewFromFloat(f).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + "." + frac
}

// Add returns a+b computed in decimal.
func Add(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

// Sub returns a-b computed in decimal.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}

func parse(s string) (decimal.Decimal, bool) {
	s = separators.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}
