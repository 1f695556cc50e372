package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountRequired = errors.New("amount required")
	ErrAmountNegative = errors.New("amount must be positive")
)

// ParseAmount reads a form amount. Dot and comma separators are accepted.
// Blank, unparseable and zero input all count as missing.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrAmountRequired
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, ErrAmountRequired
	}
	if d.IsNegative() {
		return d, ErrAmountNegative
	}
	return d, nil
}

// FormatAmount renders an amount without trailing zeros, blank when zero.
func FormatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
