package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenAmount converts a raw integer amount into a decimal with the given
// number of decimals. A nil amount is zero.
func TokenAmount(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	return TokenAmount(amount, decimals).String()
}

// FormatUSD renders a dollar amount the way the dashboard shows it: two decimals with
// thousands separators from one dollar up, up to five significant decimals below.
// Example: 2200 => "$2,200.00", 0.058461 => "$0.05846"
func FormatUSD(value decimal.Decimal) string {
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Neg()
	}
	if value.IsZero() {
		return "$0.00"
	}
	if value.LessThan(decimal.NewFromInt(1)) {
		return sign + "$" + value.Round(5).String()
	}

	fixed := value.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(intPart) + "." + frac
}

// FormatPercent renders a 24h change with an explicit sign: "+2.5%", "-1.2%", "0%".
func FormatPercent(change float64) string {
	d := decimal.NewFromFloat(change).Round(2)
	if d.IsPositive() {
		return "+" + d.String() + "%"
	}
	return d.String() + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
