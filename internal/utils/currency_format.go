package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupiah formats a whole-rupiah amount with Indonesian thousands separators.
// Example: 1500000 returns "Rp 1.500.000", -2500 returns "-Rp 2.500".
func FormatRupiah(amount int64) string {
	return FormatRupiahDecimal(decimal.NewFromInt(amount))
}

// FormatRupiahDecimal formats an amount rounded to whole rupiah.
func FormatRupiahDecimal(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	neg := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(0)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
