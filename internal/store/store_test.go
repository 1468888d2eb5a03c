package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "danak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRecord(date, amount, desc string) model.NewRecord {
	d, err := model.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return model.NewRecord{Date: d, Amount: decimal.RequireFromString(amount), Description: desc}
}

func TestOpenSeedsDefaultSettings(t *testing.T) {
	s := openTemp(t)

	st, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings().SelfInsured, st.SelfInsured)
	assert.True(t, st.InsuranceIncome.Equal(model.DefaultInsuranceIncome))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddPrependsAndAssignsIDs(t *testing.T) {
	s := openTemp(t)

	first, err := s.Add(newRecord("2026-03-01", "400", "first"))
	require.NoError(t, err)
	second, err := s.Add(newRecord("2026-02-01", "600.25", "  second  "))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.KindIncome, first.Kind)
	assert.Equal(t, "second", second.Description)

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID, "newest entry comes first regardless of date")
	assert.Equal(t, first.ID, records[1].ID)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("600.25")))
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestAddRejectsInvalidEntries(t *testing.T) {
	s := openTemp(t)

	tests := []struct {
		name string
		nr   model.NewRecord
	}{
		{"negative amount", newRecord("2026-03-01", "-1", "refund")},
		{"blank description", newRecord("2026-03-01", "10", "   ")},
		{"missing date", model.NewRecord{Amount: decimal.NewFromInt(10), Description: "x"}},
		{"unknown kind", func() model.NewRecord {
			nr := newRecord("2026-03-01", "10", "x")
			nr.Kind = "gift"
			return nr
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(tt.nr)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n, "rejected entries are not stored")
}

func TestAddAcceptsZeroAmountAndExpenseKind(t *testing.T) {
	s := openTemp(t)

	nr := newRecord("2026-03-01", "0", "no-show")
	nr.Kind = model.KindExpense
	r, err := s.Add(nr)
	require.NoError(t, err)
	assert.Equal(t, model.KindExpense, r.Kind)
}

func TestDelete(t *testing.T) {
	s := openTemp(t)

	keep, err := s.Add(newRecord("2026-03-01", "1", "keep"))
	require.NoError(t, err)
	drop, err := s.Add(newRecord("2026-03-02", "2", "drop"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(drop.ID))
	assert.ErrorIs(t, s.Delete(drop.ID), ErrNotFound)
	assert.ErrorIs(t, s.Delete("missing"), ErrNotFound)

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, keep.ID, records[0].ID)
}

func TestUpdateSettingsMergesPartially(t *testing.T) {
	s := openTemp(t)

	name := "Ivana Petrova"
	st, err := s.UpdateSettings(model.SettingsPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, st.Name)
	assert.True(t, st.SelfInsured, "untouched fields keep their value")

	income := decimal.RequireFromString("1200.50")
	self := false
	st, err = s.UpdateSettings(model.SettingsPatch{InsuranceIncome: &income, SelfInsured: &self})
	require.NoError(t, err)

	got, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, st.Name, got.Name)
	assert.Equal(t, name, got.Name)
	assert.False(t, got.SelfInsured)
	assert.True(t, got.InsuranceIncome.Equal(income))
}

func TestSaveSettingsReplacesWholesale(t *testing.T) {
	s := openTemp(t)

	want := model.Settings{
		Name:                   "Georgi",
		EIC:                    "123456789",
		InsuranceIncome:        decimal.NewFromInt(1500),
		UsePersonalBankDetails: true,
	}
	require.NoError(t, s.SaveSettings(want))

	got, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.EIC, got.EIC)
	assert.False(t, got.SelfInsured)
	assert.True(t, got.UsePersonalBankDetails)

	assert.Error(t, s.SaveSettings(model.Settings{InsuranceIncome: decimal.NewFromInt(-1)}))
}

func TestClearResetsEverything(t *testing.T) {
	s := openTemp(t)

	_, err := s.Add(newRecord("2026-03-01", "100", "x"))
	require.NoError(t, err)
	name := "someone"
	_, err = s.UpdateSettings(model.SettingsPatch{Name: &name})
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Settings.Name)
	assert.True(t, snap.Settings.InsuranceIncome.Equal(model.DefaultInsuranceIncome))
}

func TestReplacePreservesOrder(t *testing.T) {
	s := openTemp(t)

	day := func(s string) time.Time {
		d, _ := model.ParseDate(s)
		return d
	}
	snap := model.Snapshot{
		Settings: model.DefaultSettings(),
		Records: []model.Record{
			{ID: "c", Date: day("2026-01-03"), Amount: decimal.NewFromInt(3), Description: "c"},
			{ID: "a", Date: day("2026-01-01"), Amount: decimal.NewFromInt(1), Description: "a"},
			{Date: day("2026-01-02"), Amount: decimal.NewFromInt(2), Description: "no id"},
		},
	}
	require.NoError(t, s.Replace(snap))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.NotEmpty(t, records[2].ID)
	assert.Equal(t, model.KindIncome, records[2].Kind)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "danak.db")

	s, err := Open(path)
	require.NoError(t, err)
	r, err := s.Add(newRecord("2026-06-15", "1234.56", "persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, r.ID, snap.Records[0].ID)
	assert.True(t, snap.Records[0].Amount.Equal(r.Amount))
}
