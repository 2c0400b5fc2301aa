// Package money handles whole-rupiah amounts. The store keeps every
// amount as an integer number of rupiah; there are no fractional units.
package money

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts user input into whole rupiah. Thousands dots as
// written locally ("5.000") are accepted, fractions are not.
func ParseAmount(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.TrimPrefix(trimmed, "Rp")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.ReplaceAll(trimmed, ".", "")
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return value, nil
}

// FormatRupiah renders an amount the way the storefront shows it,
// e.g. 1250000 -> "Rp 1.250.000".
func FormatRupiah(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	digits := strconv.FormatInt(value, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	formatted := "Rp " + b.String()
	if negative {
		return "-" + formatted
	}
	return formatted
}
