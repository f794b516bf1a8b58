package utils_test

import (
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{1000, "Rp 1.000"},
		{500000, "Rp 500.000"},
		{1500000, "Rp 1.500.000"},
		{-2500, "-Rp 2.500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.FormatRupiah(tt.in))
	}
}

func TestFormatRupiahDecimal_Rounds(t *testing.T) {
	assert.Equal(t, "Rp 1.001", utils.FormatRupiahDecimal(decimal.RequireFromString("1000.5")))
}
