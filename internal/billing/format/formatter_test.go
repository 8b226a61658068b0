package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "0001", FormatDocumentNumber(1))
	assert.Equal(t, "0042", FormatDocumentNumber(42))
	assert.Equal(t, "0999", FormatDocumentNumber(999))
	assert.Equal(t, "1000", FormatDocumentNumber(1000))
	// Past four digits the number keeps growing, never truncated.
	assert.Equal(t, "12345", FormatDocumentNumber(12345))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"5", "$5"},
		{"950", "$950"},
		{"1000", "$1,000"},
		{"890000", "$890,000"},
		{"1000000", "$1,000,000"},
		{"1234567890", "$1,234,567,890"},
		{"-5000", "-$5,000"},
		// Sub-unit amounts round to whole units at this boundary only.
		{"1192.59462", "$1,193"},
		{"999.4", "$999"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatMoney(decimal.RequireFromString(tc.in)))
		})
	}
}
