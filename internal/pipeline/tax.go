package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Engine computes tax summaries under one regime and base mode.
type Engine struct {
	Regime config.Regime
	Mode   config.BaseMode
}

// NewEngine returns an engine for the given regime and base mode.
func NewEngine(r config.Regime, mode config.BaseMode) Engine {
	return Engine{Regime: r, Mode: mode}
}

// clamp bounds v to the regime's insurance income range.
func clamp(v decimal.Decimal, r config.Regime) decimal.Decimal {
	if v.LessThan(r.MinInsuranceIncome) {
		return r.MinInsuranceIncome
	}
	if v.GreaterThan(r.MaxInsuranceIncome) {
		return r.MaxInsuranceIncome
	}
	return v
}

// ResolveSocialSecurityBase clamps the month's taxable income base to the
// regime bounds. A month with zero gross income has a zero base, which
// takes precedence over the minimum.
func ResolveSocialSecurityBase(taxableBase, monthlyIncome decimal.Decimal, r config.Regime) decimal.Decimal {
	base := clamp(taxableBase, r)
	if monthlyIncome.IsZero() {
		return decimal.Zero
	}
	return base
}

// ResolveElectedBase clamps the elected insurance income to the regime
// bounds. The zero-activity override applies as in actual mode.
func ResolveElectedBase(elected, monthlyIncome decimal.Decimal, r config.Regime) decimal.Decimal {
	base := clamp(elected, r)
	if monthlyIncome.IsZero() {
		return decimal.Zero
	}
	return base
}

// VATProgress returns yearly turnover as a percentage of the threshold.
// It is not clamped and may exceed 100.
func VATProgress(yearlyIncome, threshold decimal.Decimal) decimal.Decimal {
	if !threshold.IsPositive() {
		return decimal.Zero
	}
	return yearlyIncome.Mul(hundred).Div(threshold)
}

// IncomeTax applies the flat rate to a positive tax base; otherwise zero.
func IncomeTax(taxBase, rate decimal.Decimal) decimal.Decimal {
	if !taxBase.IsPositive() {
		return decimal.Zero
	}
	return taxBase.Mul(rate)
}

// ComputeMonth derives the full breakdown for one month's gross income.
// settings is consulted only in elected-base mode.
func (e Engine) ComputeMonth(monthlyIncome, yearlyIncome decimal.Decimal, settings model.Settings) model.TaxSummary {
	r := e.Regime

	statutory := monthlyIncome.Mul(r.StatutoryExpenseRate)
	taxable := monthlyIncome.Sub(statutory)

	var ssBase decimal.Decimal
	if e.Mode == config.BaseElected {
		ssBase = ResolveElectedBase(settings.InsuranceIncome, monthlyIncome, r)
	} else {
		ssBase = ResolveSocialSecurityBase(taxable, monthlyIncome, r)
	}

	socialSecurity := ssBase.Mul(r.SocialSecurityRate)
	taxBase := taxable.Sub(socialSecurity)
	incomeTax := IncomeTax(taxBase, r.IncomeTaxRate)

	return model.TaxSummary{
		TotalIncome:        monthlyIncome,
		StatutoryExpenses:  statutory,
		TaxableIncomeBase:  taxable,
		SocialSecurityBase: ssBase,
		SocialSecurity:     socialSecurity,
		TaxBase:            taxBase,
		IncomeTax:          incomeTax,
		NetIncome:          monthlyIncome.Sub(socialSecurity).Sub(incomeTax),
		YearlyTurnover:     yearlyIncome,
		VATThreshold:       r.VATThreshold,
		VATProgressPercent: VATProgress(yearlyIncome, r.VATThreshold),
	}
}

// Summarize computes the summary for the month and year containing ref.
func (e Engine) Summarize(snap model.Snapshot, ref time.Time) model.TaxSummary {
	year, month, _ := ref.Date()

	monthRecords := FilterByMonth(snap.Records, year, month)
	yearRecords := FilterByYear(snap.Records, year)

	s := e.ComputeMonth(SumAmounts(monthRecords), SumAmounts(yearRecords), snap.Settings)
	s.Year = year
	s.Month = month
	s.MonthRecords = len(monthRecords)
	s.YearRecords = len(yearRecords)
	return s
}

// AnnualBreakdown computes one summary per calendar month of year.
// Each row's turnover is the year-to-date total through that month.
func (e Engine) AnnualBreakdown(snap model.Snapshot, year int) []model.MonthStats {
	yearRecords := FilterByYear(snap.Records, year)

	months := make([]model.MonthStats, 0, 12)
	ytd := decimal.Zero
	for m := time.January; m <= time.December; m++ {
		monthRecords := FilterByMonth(yearRecords, year, m)
		income := SumAmounts(monthRecords)
		ytd = ytd.Add(income)

		s := e.ComputeMonth(income, ytd, snap.Settings)
		s.Year = year
		s.Month = m
		s.MonthRecords = len(monthRecords)
		s.YearRecords = len(yearRecords)

		months = append(months, model.MonthStats{
			Month:   m,
			Records: len(monthRecords),
			Summary: s,
		})
	}
	return months
}

// AnnualTotals adds up the monthly rows of a breakdown. Turnover and VAT
// progress come from the last row.
func AnnualTotals(months []model.MonthStats) model.TaxSummary {
	var t model.TaxSummary
	for _, m := range months {
		s := m.Summary
		t.Year = s.Year
		t.MonthRecords += m.Records
		t.YearRecords = s.YearRecords
		t.TotalIncome = t.TotalIncome.Add(s.TotalIncome)
		t.StatutoryExpenses = t.StatutoryExpenses.Add(s.StatutoryExpenses)
		t.TaxableIncomeBase = t.TaxableIncomeBase.Add(s.TaxableIncomeBase)
		t.SocialSecurityBase = t.SocialSecurityBase.Add(s.SocialSecurityBase)
		t.SocialSecurity = t.SocialSecurity.Add(s.SocialSecurity)
		t.TaxBase = t.TaxBase.Add(s.TaxBase)
		t.IncomeTax = t.IncomeTax.Add(s.IncomeTax)
		t.NetIncome = t.NetIncome.Add(s.NetIncome)
		t.YearlyTurnover = s.YearlyTurnover
		t.VATThreshold = s.VATThreshold
		t.VATProgressPercent = s.VATProgressPercent
	}
	return t
}
