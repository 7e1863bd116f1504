// Package normalize converts heterogeneous imported row values into canonical
// integer-cents amounts and epoch timestamps. It is pure: no side effects, no
// stored state.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents converts a raw scalar into integer cents. Accepted inputs are numbers,
// numeric strings, and currency-formatted strings ("$1,234.56"). All
// characters other than digits, sign, and decimal point are stripped before
// parsing. Nil, empty, and sign-only inputs normalize to 0.
//
// Rounding rule: round half away from zero, so 1234.565 becomes 123457 cents.
func Cents(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return centsFromDecimal(decimal.NewFromInt(int64(v)))
	case int64:
		return centsFromDecimal(decimal.NewFromInt(v))
	case float64:
		return centsFromDecimal(decimal.NewFromFloat(v))
	case string:
		return centsFromString(v)
	default:
		// json.Unmarshal into interface{} only yields the cases above, but
		// callers may hand us fmt-able scalar types directly.
		return centsFromString(fmt.Sprintf("%v", v))
	}
}

func centsFromString(raw string) (int64, error) {
	cleaned := stripCurrencyFormatting(raw)
	if cleaned == "" || cleaned == "-" || cleaned == "." || cleaned == "-." {
		return 0, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("unparseable money value %q: %w", raw, err)
	}
	return centsFromDecimal(d)
}

func centsFromDecimal(d decimal.Decimal) (int64, error) {
	// Shift into cents, then Round(0) which rounds half away from zero.
	return d.Shift(2).Round(0).IntPart(), nil
}

// MileageCents derives an expense amount from a distance and a per-mile rate
// in cents, rounded half away from zero.
func MileageCents(miles float64, rateCents int64) int64 {
	return decimal.NewFromFloat(miles).
		Mul(decimal.NewFromInt(rateCents)).
		Round(0).
		IntPart()
}

// stripCurrencyFormatting removes everything except digits, decimal points,
// and a single minus sign preceding the first digit, so "-$45.00" and
// "$-45.00" both clean to "-45.00". Thousands separators and currency symbols
// disappear.
func stripCurrencyFormatting(raw string) string {
	raw = strings.TrimSpace(raw)

	var b strings.Builder
	sawDigit := false
	sawSign := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			sawDigit = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' && !sawDigit && !sawSign:
			sawSign = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
