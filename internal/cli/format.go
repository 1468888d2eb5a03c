// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/currency"
)

// VATWarnPercent is the VAT progress at which output turns to a warning.
const VATWarnPercent = 85

// FormatAmount rounds to two decimals and groups thousands.
// e.g., 1234567.891 -> "1,234,567.89"
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "." + frac
}

// FormatMoney converts a stored EUR amount to cur and formats it with
// the currency code, e.g. "1,955.83 BGN".
func FormatMoney(eur decimal.Decimal, cur currency.Currency) string {
	return FormatAmount(currency.FromStorage(eur, cur)) + " " + string(cur)
}

// FormatDelta formats the signed change between two stored amounts.
func FormatDelta(current, previous decimal.Decimal, cur currency.Currency) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg(), cur)
	}
	return "+" + FormatMoney(delta, cur)
}

// FormatPercent formats a percentage value with two decimals.
// e.g., 78.2319 -> "78.23%"
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMonth returns a 3-letter month abbreviation.
func FormatMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return "???"
	}
	return m.String()[:3]
}

// FormatPeriodMonth formats a year and month as "March 2026".
func FormatPeriodMonth(year int, m time.Month) string {
	return fmt.Sprintf("%s %d", m, year)
}
