package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatDocumentNumber renders the per-account sequence as the
// zero-padded 4-digit number printed on documents.
func FormatDocumentNumber(seq int64) string {
	return fmt.Sprintf("%04d", seq)
}

// FormatMoney renders an amount as whole currency units with thousands
// separators and a currency prefix, e.g. $1,000,000. This is the only
// place amounts are rounded; internal computation keeps sub-unit
// precision.
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(0)

	negative := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(0)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
