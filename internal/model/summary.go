package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxSummary is the derived breakdown for one reference month and its year.
// All values are full precision EUR; rounding is left to presentation.
type TaxSummary struct {
	Year  int
	Month time.Month

	MonthRecords int
	YearRecords  int

	TotalIncome        decimal.Decimal
	StatutoryExpenses  decimal.Decimal
	TaxableIncomeBase  decimal.Decimal
	SocialSecurityBase decimal.Decimal
	SocialSecurity     decimal.Decimal
	TaxBase            decimal.Decimal
	IncomeTax          decimal.Decimal
	NetIncome          decimal.Decimal

	YearlyTurnover     decimal.Decimal
	VATThreshold       decimal.Decimal
	VATProgressPercent decimal.Decimal
}

// TotalDue is the social security plus income tax owed for the month.
func (s TaxSummary) TotalDue() decimal.Decimal {
	return s.SocialSecurity.Add(s.IncomeTax)
}

// OverVATWarning reports whether turnover has passed warnPct of the threshold.
func (s TaxSummary) OverVATWarning(warnPct decimal.Decimal) bool {
	return s.VATProgressPercent.GreaterThan(warnPct)
}

// HasActivity reports whether any record falls in the reference month.
func (s TaxSummary) HasActivity() bool {
	return s.MonthRecords > 0
}

// MonthStats is one row of a yearly breakdown.
type MonthStats struct {
	Month   time.Month
	Records int
	Summary TaxSummary
}

// Snapshot is an immutable view of the store handed to the engine.
type Snapshot struct {
	Records  []Record
	Settings Settings
}
