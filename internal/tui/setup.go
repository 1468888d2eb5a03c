package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/store"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

// setupValues holds the first-run form answers.
type setupValues struct {
	name            string
	eic             string
	selfInsured     bool
	insuranceIncome string
	currency        string
	baseMode        string
	theme           string
}

func newSetupValues(cfg config.Config, st model.Settings) *setupValues {
	return &setupValues{
		name:            st.Name,
		eic:             st.EIC,
		selfInsured:     st.SelfInsured,
		insuranceIncome: st.InsuranceIncome.String(),
		currency:        string(cfg.DisplayCurrency()),
		baseMode:        string(cfg.General.BaseMode),
		theme:           theme.ByName(cfg.Appearance.Theme).Name,
	}
}

func newSetupForm(v *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to danak").
				Description("Estimate monthly social security, income tax and VAT progress\nfor self-employed income in Bulgaria.\n\nA few questions and you're in."),
			huh.NewInput().
				Title("Your name").
				Description("Printed on exported reports.").
				Value(&v.name),
			huh.NewInput().
				Title("EIC").
				Description("Unified identification code, optional.").
				Value(&v.eic),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Are you self-insured?").
				Affirmative("Yes").
				Negative("No").
				Value(&v.selfInsured),
			huh.NewInput().
				Title("Elected insurance income (EUR)").
				Description("Used when the social-security base mode is elected.").
				Validate(validateAmount).
				Value(&v.insuranceIncome),
			huh.NewSelect[string]().
				Title("Social-security base").
				Options(
					huh.NewOption("From monthly income", string(config.BaseActual)),
					huh.NewOption("Elected insurance income", string(config.BaseElected)),
				).
				Value(&v.baseMode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Display currency").
				Options(
					huh.NewOption("Euro (EUR)", string(currency.EUR)),
					huh.NewOption("Bulgarian lev (BGN)", string(currency.BGN)),
				).
				Value(&v.currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
		),
	).WithShowHelp(false)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		save := a.saveSetup()
		a.needSetup = false
		a.setupForm = nil
		return a, save
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// saveSetup writes the display preferences to the config file and the
// profile to the store.
func (a *App) saveSetup() tea.Cmd {
	v := a.setupVals

	cfg := a.cfg
	cfg.General.Currency = v.currency
	if mode, err := config.ParseBaseMode(v.baseMode); err == nil {
		cfg.General.BaseMode = mode
	}
	cfg.Appearance.Theme = v.theme
	theme.SetActive(v.theme)

	var errs []error
	if err := config.Save(cfg); err != nil {
		errs = append(errs, err)
	}
	a.cfg = cfg
	a.cur = cfg.DisplayCurrency()

	income, err := parseAmount(v.insuranceIncome)
	if err != nil {
		errs = append(errs, err)
	}
	name := strings.TrimSpace(v.name)
	eic := strings.TrimSpace(v.eic)
	patch := model.SettingsPatch{
		Name:        &name,
		EIC:         &eic,
		SelfInsured: &v.selfInsured,
	}
	if err == nil {
		patch.InsuranceIncome = &income
	}

	setupErr := errors.Join(errs...)
	return mutateCmd(cfg, "Profile saved", func(st *store.Store) error {
		if _, err := st.UpdateSettings(patch); err != nil {
			return errors.Join(setupErr, err)
		}
		return setupErr
	})
}
