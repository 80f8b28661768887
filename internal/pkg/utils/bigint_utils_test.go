package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	t.Parallel()

	wei, _ := new(big.Int).SetString("1234500000000000000", 10)
	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{"fractional", wei, 18, "1.2345"},
		{"whole", big.NewInt(1_000_000), 6, "1"},
		{"zero decimals", big.NewInt(42), 0, "42"},
		{"tiny", big.NewInt(1), 18, "0.000000000000000001"},
		{"zero", big.NewInt(0), 18, "0"},
		{"nil", nil, 18, "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FormatBigInt(tc.amount, tc.decimals))
		})
	}
}

func TestFormatUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"0.058461", "$0.05846"},
		{"0.9255", "$0.9255"},
		{"1", "$1.00"},
		{"22.3", "$22.30"},
		{"2200", "$2,200.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-2200", "-$2,200.00"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			d, err := decimal.NewFromString(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, FormatUSD(d))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+2.5%", FormatPercent(2.5))
	assert.Equal(t, "-1.2%", FormatPercent(-1.2))
	assert.Equal(t, "0%", FormatPercent(0))
	assert.Equal(t, "+3.14%", FormatPercent(3.14159))
}

func TestGroupThousands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", groupThousands("1"))
	assert.Equal(t, "999", groupThousands("999"))
	assert.Equal(t, "1,000", groupThousands("1000"))
	assert.Equal(t, "100,000", groupThousands("100000"))
	assert.Equal(t, "12,345,678", groupThousands("12345678"))
}

func TestBatchStrings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, BatchStrings(items, 2))
	assert.Equal(t, [][]string{items}, BatchStrings(items, 0))
	assert.Equal(t, [][]string{items}, BatchStrings(items, 10))
	assert.Empty(t, BatchStrings(nil, 3))
}
