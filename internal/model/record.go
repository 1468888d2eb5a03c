// Package model defines the core data types for records, settings, and tax summaries.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used for input, storage, and export.
const DateFormat = "2006-01-02"

// Kind classifies a record. Every kind contributes to the period sums.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ParseKind parses a kind name, defaulting to income when s is empty.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(KindIncome):
		return KindIncome, nil
	case string(KindExpense):
		return KindExpense, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Record is a single dated income entry. Amounts are always stored in EUR.
type Record struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Kind        Kind
	CreatedAt   time.Time
}

// NewRecord is the entry payload for a record that has not been stored yet.
type NewRecord struct {
	Date        time.Time       `validate:"required"`
	Amount      decimal.Decimal `validate:"gte=0"`
	Description string          `validate:"required"`
	Kind        Kind            `validate:"oneof=income expense"`
}

// Day truncates t to a calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
