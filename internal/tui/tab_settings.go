package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/store"
	"github.com/theirongolddev/danak/internal/tui/components"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

const (
	settingsFieldName = iota
	settingsFieldEIC
	settingsFieldSelfInsured
	settingsFieldInsuranceIncome
	settingsFieldBankDetails
	settingsFieldCurrency
	settingsFieldBaseMode
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saveErr error
}

func isTextField(field int) bool {
	switch field {
	case settingsFieldName, settingsFieldEIC, settingsFieldInsuranceIncome:
		return true
	}
	return false
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter", " ":
		if isTextField(a.settings.cursor) {
			return a.settingsStartEdit()
		}
		next, cmd := a.settingsToggle()
		return next, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd, bool) {
	st := a.settingsOrDefault()

	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	switch a.settings.cursor {
	case settingsFieldName:
		ti.Placeholder = "Full name"
		ti.SetValue(st.Name)
	case settingsFieldEIC:
		ti.Placeholder = "EIC"
		ti.SetValue(st.EIC)
	case settingsFieldInsuranceIncome:
		ti.Placeholder = "933"
		ti.SetValue(st.InsuranceIncome.String())
	}
	ti.Focus()

	a.settings.editing = true
	a.settings.saveErr = nil
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd(), true
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		cmd := a.settingsSaveText(strings.TrimSpace(a.settings.input.Value()))
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSaveText stores an edited profile field.
func (a *App) settingsSaveText(val string) tea.Cmd {
	var patch model.SettingsPatch
	switch a.settings.cursor {
	case settingsFieldName:
		patch.Name = &val
	case settingsFieldEIC:
		patch.EIC = &val
	case settingsFieldInsuranceIncome:
		income, err := parseAmount(val)
		if err != nil {
			a.settings.saveErr = err
			return nil
		}
		patch.InsuranceIncome = &income
	}
	return updateSettingsCmd(a.cfg, patch)
}

// settingsToggle flips a boolean or cycles a choice field.
func (a App) settingsToggle() (tea.Model, tea.Cmd) {
	st := a.settingsOrDefault()
	a.settings.saveErr = nil

	switch a.settings.cursor {
	case settingsFieldSelfInsured:
		v := !st.SelfInsured
		return a, updateSettingsCmd(a.cfg, model.SettingsPatch{SelfInsured: &v})
	case settingsFieldBankDetails:
		v := !st.UsePersonalBankDetails
		return a, updateSettingsCmd(a.cfg, model.SettingsPatch{UsePersonalBankDetails: &v})
	}

	cfg := a.cfg
	reload := false
	switch a.settings.cursor {
	case settingsFieldCurrency:
		a.cur = a.cur.Toggle()
		cfg.General.Currency = string(a.cur)
	case settingsFieldBaseMode:
		if cfg.General.BaseMode == config.BaseElected {
			cfg.General.BaseMode = config.BaseActual
		} else {
			cfg.General.BaseMode = config.BaseElected
		}
		reload = true
	case settingsFieldTheme:
		names := theme.Names()
		next := 0
		for i, n := range names {
			if n == theme.Active.Name {
				next = (i + 1) % len(names)
			}
		}
		cfg.Appearance.Theme = names[next]
		theme.SetActive(names[next])
	case settingsFieldAutoRefresh:
		cfg.TUI.AutoRefresh = !cfg.TUI.AutoRefresh
		a.autoRefresh = cfg.TUI.AutoRefresh
	}

	a.cfg = cfg
	if err := config.Save(cfg); err != nil {
		a.settings.saveErr = err
	}
	if reload {
		a.refreshing = true
		return a, refreshDataCmd(a.cfg, a.ref)
	}
	return a, nil
}

func updateSettingsCmd(cfg config.Config, patch model.SettingsPatch) tea.Cmd {
	return mutateCmd(cfg, "Settings saved", func(st *store.Store) error {
		_, err := st.UpdateSettings(patch)
		return err
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	st := a.settingsOrDefault()
	innerW := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	fields := [settingsFieldCount][2]string{
		settingsFieldName:            {"Name", displayOr(st.Name, "(not set)")},
		settingsFieldEIC:             {"EIC", displayOr(st.EIC, "(not set)")},
		settingsFieldSelfInsured:     {"Self-insured", yesNo(st.SelfInsured)},
		settingsFieldInsuranceIncome: {"Insurance income", cli.FormatMoney(st.InsuranceIncome, a.cur)},
		settingsFieldBankDetails:     {"Personal bank details", yesNo(st.UsePersonalBankDetails)},
		settingsFieldCurrency:        {"Display currency", string(a.cur)},
		settingsFieldBaseMode:        {"Social-security base", string(a.cfg.General.BaseMode)},
		settingsFieldTheme:           {"Theme", theme.Active.Name},
		settingsFieldAutoRefresh:     {"Auto refresh", strconv.FormatBool(a.autoRefresh)},
	}

	var body strings.Builder
	for i, f := range fields {
		switch i {
		case settingsFieldName:
			body.WriteString(sectionStyle.Render("Profile") + "\n")
		case settingsFieldCurrency:
			body.WriteString("\n" + sectionStyle.Render("Preferences") + "\n")
		}

		label := fmt.Sprintf("%-24s", f[0]+":")
		switch {
		case a.settings.editing && i == a.settings.cursor:
			body.WriteString(markerStyle.Render("▸ "))
			body.WriteString(selectedLabelStyle.Render(label))
			body.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") + selectedLabelStyle.Render(label) + selectedStyle.Render(f[1])
			body.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				body.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			body.WriteString(space.Render("  ") + labelStyle.Render(label) + valueStyle.Render(f[1]))
		}
		body.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		body.WriteString("\n")
		body.WriteString(warnStyle.Render("Save failed: " + a.settings.saveErr.Error()))
		body.WriteString("\n")
	}
	body.WriteString("\n")
	body.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit or toggle  [Esc] cancel"))

	var info strings.Builder
	count := len(a.records())
	info.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(a.cfg.DBPath()) + "\n")
	info.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()) + "\n")
	info.WriteString(labelStyle.Render("Records:      ") + valueStyle.Render(cli.FormatNumber(int64(count))))
	if a.result != nil {
		info.WriteString("\n")
		info.WriteString(labelStyle.Render("Regime from:  ") +
			valueStyle.Render(a.result.Regime.EffectiveFrom.Format(model.DateFormat)))
	}

	return components.ContentCard("Settings", body.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}

func displayOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
