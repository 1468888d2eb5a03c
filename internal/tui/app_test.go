package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/store"
)

var refDate = time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.General.DataDir = t.TempDir()
	return cfg
}

func newRec(date, desc, amount string) model.NewRecord {
	d, err := model.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return model.NewRecord{
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
		Kind:        model.KindIncome,
	}
}

func seed(t *testing.T, cfg config.Config, recs ...model.NewRecord) {
	t.Helper()
	st, err := store.Open(cfg.DBPath())
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	for _, r := range recs {
		_, err := st.Add(r)
		require.NoError(t, err)
	}
}

func loadedApp(t *testing.T, cfg config.Config) App {
	t.Helper()
	a := NewApp(Options{Config: cfg, Ref: refDate, Now: func() time.Time { return refDate }})
	next, _ := a.Update(loadDataCmd(cfg, a.ref)())
	next, _ = next.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	app := next.(App)
	require.NoError(t, app.loadErr)
	return app
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = a.Update(msg)
		a = next.(App)
	}
	return a, cmd
}

// settle runs cmd and feeds its message back until no command remains.
func settle(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		var next tea.Model
		next, cmd = a.Update(msg)
		a = next.(App)
	}
	return a
}

func TestLoadComputesSummary(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg,
		newRec("2026-03-05", "Consulting", "1000"),
		newRec("2026-01-10", "Retainer", "500"),
	)

	a := loadedApp(t, cfg)

	require.NotNil(t, a.result)
	s := a.result.Summary
	assert.Equal(t, time.March, s.Month)
	assert.Equal(t, "1000.00", s.TotalIncome.StringFixed(2))
	assert.Equal(t, "1500.00", s.YearlyTurnover.StringFixed(2))
	assert.Len(t, a.result.Months, 12)
}

func TestCurrencyToggle(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, newRec("2026-03-05", "Consulting", "1000"))
	a := loadedApp(t, cfg)
	require.Equal(t, currency.EUR, a.cur)

	a, _ = press(t, a, "c")
	assert.Equal(t, currency.BGN, a.cur)
	assert.Contains(t, a.View(), "1,955.83 BGN")

	a, _ = press(t, a, "c")
	assert.Equal(t, currency.EUR, a.cur)
}

func TestMonthNavigationRecomputesInPlace(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg,
		newRec("2026-03-05", "March", "1000"),
		newRec("2026-02-05", "February", "300"),
	)
	a := loadedApp(t, cfg)

	a, cmd := press(t, a, "right")
	assert.Nil(t, cmd)
	assert.Equal(t, time.April, a.result.Summary.Month)
	assert.True(t, a.result.Summary.TotalIncome.IsZero())

	a, _ = press(t, a, "left", "left")
	assert.Equal(t, time.February, a.result.Summary.Month)
	assert.Equal(t, "300.00", a.result.Summary.TotalIncome.StringFixed(2))
}

func TestMonthNavigationAcrossYearReloads(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, newRec("2025-12-15", "December", "800"))
	a := loadedApp(t, cfg)

	a, _ = press(t, a, "left", "left")
	require.Equal(t, time.January, a.ref.Month())

	a, cmd := press(t, a, "left")
	require.NotNil(t, cmd)
	assert.True(t, a.refreshing)

	a = settle(t, a, cmd)
	assert.False(t, a.refreshing)
	assert.Equal(t, 2025, a.result.Summary.Year)
	assert.Equal(t, time.December, a.result.Summary.Month)
	assert.Equal(t, "800.00", a.result.Summary.TotalIncome.StringFixed(2))
}

func TestRecordsScopeAndSearch(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg,
		newRec("2026-03-01", "Website build", "100"),
		newRec("2026-03-02", "Logo design", "200"),
		newRec("2026-01-02", "Website hosting", "50"),
	)
	a := loadedApp(t, cfg)

	a, _ = press(t, a, "r")
	require.Equal(t, tabRecords, a.activeTab)
	assert.Len(t, a.visibleRecords(), 2)

	a, _ = press(t, a, "p")
	assert.Equal(t, scopeYear, a.recState.scope)
	assert.Len(t, a.visibleRecords(), 3)

	a, _ = press(t, a, "/", "w", "e", "b", "enter")
	assert.False(t, a.recState.searching)
	assert.Equal(t, "web", a.recState.query)
	assert.Len(t, a.visibleRecords(), 2)
	assert.Contains(t, a.View(), "Website hosting")
}

func TestDeleteRecordNeedsConfirmation(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg,
		newRec("2026-03-01", "Keep", "100"),
		newRec("2026-03-02", "Remove", "200"),
	)
	a := loadedApp(t, cfg)
	a, _ = press(t, a, "r")

	// Newest first, so the cursor starts on "Remove".
	a, _ = press(t, a, "d")
	require.True(t, a.recState.confirmDelete)
	a, cmd := press(t, a, "n")
	assert.Nil(t, cmd)
	assert.Len(t, a.visibleRecords(), 2)

	a, _ = press(t, a, "d")
	a, cmd = press(t, a, "y")
	require.NotNil(t, cmd)
	a = settle(t, a, cmd)

	recs := a.visibleRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, "Keep", recs[0].Description)
	assert.Equal(t, "Deleted Remove", a.flash)
}

func TestSettingsToggleWritesStore(t *testing.T) {
	cfg := testConfig(t)
	a := loadedApp(t, cfg)
	require.True(t, a.settingsOrDefault().SelfInsured)

	a, _ = press(t, a, "x", "j", "j")
	require.Equal(t, settingsFieldSelfInsured, a.settings.cursor)

	a, cmd := press(t, a, "enter")
	require.NotNil(t, cmd)
	a = settle(t, a, cmd)

	assert.False(t, a.settingsOrDefault().SelfInsured)
}

func TestSettingsEditInsuranceIncome(t *testing.T) {
	cfg := testConfig(t)
	a := loadedApp(t, cfg)

	a, _ = press(t, a, "x", "j", "j", "j", "enter")
	require.True(t, a.settings.editing)
	a.settings.input.SetValue("1200,50")

	a, cmd := press(t, a, "enter")
	require.NotNil(t, cmd)
	a = settle(t, a, cmd)

	assert.Equal(t, "1200.50", a.settingsOrDefault().InsuranceIncome.StringFixed(2))
}

func TestSettingsBaseModeReloads(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, newRec("2026-03-05", "Consulting", "1000"))
	a := loadedApp(t, cfg)
	require.Equal(t, config.BaseActual, a.result.Mode)

	a, _ = press(t, a, "x")
	a.settings.cursor = settingsFieldBaseMode
	a, cmd := press(t, a, "enter")
	require.NotNil(t, cmd)
	a = settle(t, a, cmd)

	assert.Equal(t, config.BaseElected, a.result.Mode)
	// 933 elected income at 27.8%.
	assert.Equal(t, "259.37", a.result.Summary.SocialSecurity.StringFixed(2))
}

func TestAddValuesConvertBGN(t *testing.T) {
	v := &addValues{
		date:        "2026-03-01",
		description: "  Translation  ",
		amount:      "1955,83",
		currency:    "BGN",
		kind:        "income",
	}
	nr, err := v.newRecord()
	require.NoError(t, err)
	assert.Equal(t, "Translation", nr.Description)
	assert.Equal(t, "1000.00", nr.Amount.StringFixed(2))

	v.amount = "-5"
	_, err = v.newRecord()
	assert.Error(t, err)
}

func TestFormValidators(t *testing.T) {
	assert.NoError(t, validateAmount("0"))
	assert.NoError(t, validateAmount("12,5"))
	assert.Error(t, validateAmount("abc"))
	assert.Error(t, validateAmount("-1"))

	assert.NoError(t, validateDate("2026-02-28"))
	assert.Error(t, validateDate("28.02.2026"))

	assert.Error(t, validateDescription("   "))
}

func TestFirstRunShowsSetupForm(t *testing.T) {
	cfg := testConfig(t)
	a := NewApp(Options{Config: cfg, Ref: refDate, FirstRun: true})
	next, _ := a.Update(loadDataCmd(cfg, a.ref)())
	a = next.(App)

	assert.NotNil(t, a.setupForm)
	assert.Equal(t, "933", a.setupVals.insuranceIncome)
}

func TestViewRendersEveryTab(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, newRec("2026-03-05", "Consulting", "1000"))
	a := loadedApp(t, cfg)

	want := map[string]string{
		"o": "Social security",
		"m": "Monthly breakdown 2026",
		"r": "Consulting",
		"x": "Insurance income",
	}
	for key, text := range want {
		next, _ := press(t, a, key)
		assert.Containsf(t, next.View(), text, "tab %s", key)
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := App{width: 60, height: 20}
	assert.Contains(t, a.View(), "Terminal too narrow")
}
