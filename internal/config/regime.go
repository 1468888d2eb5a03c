package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Regime holds the statutory constants for one regulatory year.
// All monetary values are in EUR.
type Regime struct {
	EffectiveFrom        time.Time
	MinInsuranceIncome   decimal.Decimal
	MaxInsuranceIncome   decimal.Decimal
	StatutoryExpenseRate decimal.Decimal
	SocialSecurityRate   decimal.Decimal
	IncomeTaxRate        decimal.Decimal
	VATThreshold         decimal.Decimal
}

// RegimeOverrides allows user-defined values for any regime constant.
type RegimeOverrides struct {
	MinInsuranceIncome   *float64 `toml:"min_insurance_income,omitempty"`
	MaxInsuranceIncome   *float64 `toml:"max_insurance_income,omitempty"`
	StatutoryExpenseRate *float64 `toml:"statutory_expense_rate,omitempty"`
	SocialSecurityRate   *float64 `toml:"social_security_rate,omitempty"`
	IncomeTaxRate        *float64 `toml:"income_tax_rate,omitempty"`
	VATThreshold         *float64 `toml:"vat_threshold,omitempty"`
}

// regimeHistory stores effective-dated regimes.
// Entries must be sorted by EffectiveFrom ascending.
var regimeHistory = []Regime{
	{
		EffectiveFrom:        time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		MinInsuranceIncome:   decimal.RequireFromString("550.66"),
		MaxInsuranceIncome:   decimal.RequireFromString("2111.64"),
		StatutoryExpenseRate: decimal.RequireFromString("0.25"),
		SocialSecurityRate:   decimal.RequireFromString("0.278"),
		IncomeTaxRate:        decimal.RequireFromString("0.10"),
		VATThreshold:         decimal.NewFromInt(51130),
	},
}

// DefaultRegime returns the latest known regime.
func DefaultRegime() Regime {
	return LookupRegimeAt(time.Time{})
}

// LookupRegimeAt returns the regime in force at the given date.
// If at is zero, the latest entry is used. Dates before the first entry
// fall back to the earliest known regime.
func LookupRegimeAt(at time.Time) Regime {
	if at.IsZero() {
		return regimeHistory[len(regimeHistory)-1]
	}

	at = at.UTC()
	selected := regimeHistory[0]
	for _, r := range regimeHistory {
		if !at.Before(r.EffectiveFrom) {
			selected = r
			continue
		}
		break
	}
	return selected
}

// Apply returns r with every set override replacing the built-in value.
func (o RegimeOverrides) Apply(r Regime) Regime {
	set := func(dst *decimal.Decimal, v *float64) {
		if v != nil {
			*dst = decimal.NewFromFloat(*v)
		}
	}
	set(&r.MinInsuranceIncome, o.MinInsuranceIncome)
	set(&r.MaxInsuranceIncome, o.MaxInsuranceIncome)
	set(&r.StatutoryExpenseRate, o.StatutoryExpenseRate)
	set(&r.SocialSecurityRate, o.SocialSecurityRate)
	set(&r.IncomeTaxRate, o.IncomeTaxRate)
	set(&r.VATThreshold, o.VATThreshold)
	return r
}

// Validate checks that the bounds are ordered and the rates are fractions.
func (r Regime) Validate() error {
	if r.MinInsuranceIncome.IsNegative() || r.MinInsuranceIncome.GreaterThan(r.MaxInsuranceIncome) {
		return fmt.Errorf("insurance income bounds out of order: min %s, max %s",
			r.MinInsuranceIncome, r.MaxInsuranceIncome)
	}
	rates := []struct {
		name string
		v    decimal.Decimal
	}{
		{"statutory_expense_rate", r.StatutoryExpenseRate},
		{"social_security_rate", r.SocialSecurityRate},
		{"income_tax_rate", r.IncomeTaxRate},
	}
	for _, rt := range rates {
		if rt.v.IsNegative() || rt.v.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be between 0 and 1, got %s", rt.name, rt.v)
		}
	}
	if !r.VATThreshold.IsPositive() {
		return fmt.Errorf("vat_threshold must be positive, got %s", r.VATThreshold)
	}
	return nil
}

// RegimeAt resolves the regime for a reference date with overrides applied.
func (c Config) RegimeAt(at time.Time) (Regime, error) {
	r := c.Regime.Apply(LookupRegimeAt(at))
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("regime: %w", err)
	}
	return r, nil
}
