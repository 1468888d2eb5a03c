// Package currency converts between the storage currency (EUR) and the
// BGN display currency at the fixed exchange rate.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code understood by the converter.
type Currency string

const (
	EUR Currency = "EUR"
	BGN Currency = "BGN"
)

// Storage is the canonical currency for every stored and computed value.
const Storage = EUR

// Rate is the fixed number of BGN per EUR.
var Rate = decimal.RequireFromString("1.95583")

// ToBGN converts a EUR amount to BGN.
func ToBGN(eur decimal.Decimal) decimal.Decimal {
	return eur.Mul(Rate)
}

// ToEUR converts a BGN amount to EUR.
func ToEUR(bgn decimal.Decimal) decimal.Decimal {
	return bgn.Div(Rate)
}

// FromStorage converts a stored EUR amount to the display currency.
func FromStorage(eur decimal.Decimal, to Currency) decimal.Decimal {
	if to == BGN {
		return ToBGN(eur)
	}
	return eur
}

// ToStorage converts an amount entered in c to EUR.
func ToStorage(amount decimal.Decimal, c Currency) decimal.Decimal {
	if c == BGN {
		return ToEUR(amount)
	}
	return amount
}

// Toggle returns the other supported currency.
func (c Currency) Toggle() Currency {
	if c == BGN {
		return EUR
	}
	return BGN
}

// Parse parses a currency code, defaulting to EUR when s is empty.
func Parse(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case "", EUR:
		return EUR, nil
	case BGN:
		return BGN, nil
	default:
		return "", fmt.Errorf("unsupported currency %q (want EUR or BGN)", s)
	}
}
