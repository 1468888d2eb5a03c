package model

import "github.com/shopspring/decimal"

// DefaultInsuranceIncome is the elected insurance income for a fresh profile.
var DefaultInsuranceIncome = decimal.NewFromInt(933)

// Settings holds the user profile. Only InsuranceIncome can reach the
// engine, and only in elected-base mode.
type Settings struct {
	Name                   string
	EIC                    string
	SelfInsured            bool
	InsuranceIncome        decimal.Decimal
	UsePersonalBankDetails bool
}

// DefaultSettings returns the settings created on first use.
func DefaultSettings() Settings {
	return Settings{
		SelfInsured:     true,
		InsuranceIncome: DefaultInsuranceIncome,
	}
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	Name                   *string          `json:"name,omitempty"`
	EIC                    *string          `json:"eic,omitempty"`
	SelfInsured            *bool            `json:"self_insured,omitempty"`
	InsuranceIncome        *decimal.Decimal `json:"insurance_income,omitempty"`
	UsePersonalBankDetails *bool            `json:"use_personal_bank_details,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.Name == nil && p.EIC == nil && p.SelfInsured == nil &&
		p.InsuranceIncome == nil && p.UsePersonalBankDetails == nil
}

// Apply merges p into s and returns the result.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.EIC != nil {
		s.EIC = *p.EIC
	}
	if p.SelfInsured != nil {
		s.SelfInsured = *p.SelfInsured
	}
	if p.InsuranceIncome != nil {
		s.InsuranceIncome = *p.InsuranceIncome
	}
	if p.UsePersonalBankDetails != nil {
		s.UsePersonalBankDetails = *p.UsePersonalBankDetails
	}
	return s
}
