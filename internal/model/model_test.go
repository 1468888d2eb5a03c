package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindIncome, false},
		{"income", KindIncome, false},
		{"Expense", KindExpense, false},
		{" expense ", KindExpense, false},
		{"refund", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseDateAndDay(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("15.03.2026")
	assert.Error(t, err)

	local := time.Date(2026, time.March, 15, 23, 30, 0, 0, time.FixedZone("EET", 2*3600))
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), Day(local))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.SelfInsured)
	assert.False(t, s.UsePersonalBankDetails)
	assert.True(t, s.InsuranceIncome.Equal(decimal.NewFromInt(933)))
	assert.Empty(t, s.Name)
}

func TestSettingsApplyPartialMerge(t *testing.T) {
	base := DefaultSettings()
	base.Name = "Ivana"
	base.EIC = "123456789"

	name := "Ivana Petrova"
	selfInsured := false
	updated := base.Apply(SettingsPatch{Name: &name, SelfInsured: &selfInsured})

	assert.Equal(t, "Ivana Petrova", updated.Name)
	assert.False(t, updated.SelfInsured)
	assert.Equal(t, "123456789", updated.EIC, "untouched field must survive")
	assert.True(t, updated.InsuranceIncome.Equal(base.InsuranceIncome))

	assert.Equal(t, "Ivana", base.Name, "Apply must not mutate the receiver")
}

func TestSettingsPatchIsEmpty(t *testing.T) {
	assert.True(t, SettingsPatch{}.IsEmpty())
	income := decimal.NewFromInt(1200)
	assert.False(t, SettingsPatch{InsuranceIncome: &income}.IsEmpty())
}

func TestTaxSummaryHelpers(t *testing.T) {
	s := TaxSummary{
		SocialSecurity:     decimal.RequireFromString("208.5"),
		IncomeTax:          decimal.RequireFromString("54.15"),
		VATProgressPercent: decimal.RequireFromString("85.01"),
	}
	assert.Equal(t, "262.65", s.TotalDue().StringFixed(2))
	assert.True(t, s.OverVATWarning(decimal.NewFromInt(85)))
	assert.False(t, s.OverVATWarning(decimal.NewFromInt(90)))
	assert.False(t, s.HasActivity())
}
