package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/store"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

// addValues holds the add-record form answers.
type addValues struct {
	date        string
	description string
	amount      string
	currency    string
	kind        string
}

// parseAmount parses a non-negative amount, accepting a decimal comma.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return d, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

func validateDate(s string) error {
	_, err := model.ParseDate(s)
	return err
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("description is required")
	}
	return nil
}

func newAddForm(v *addValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateFormat).
				Validate(validateDate).
				Value(&v.date),
			huh.NewInput().
				Title("Description").
				Validate(validateDescription).
				Value(&v.description),
			huh.NewInput().
				Title("Amount").
				Validate(validateAmount).
				Value(&v.amount),
			huh.NewSelect[string]().
				Title("Currency").
				Options(
					huh.NewOption("EUR", string(currency.EUR)),
					huh.NewOption("BGN", string(currency.BGN)),
				).
				Value(&v.currency),
			huh.NewSelect[string]().
				Title("Kind").
				Options(
					huh.NewOption("Income", string(model.KindIncome)),
					huh.NewOption("Expense", string(model.KindExpense)),
				).
				Value(&v.kind),
		).Title("Add record"),
	).WithShowHelp(true)
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	// Default to today when browsing the current month, otherwise to the
	// first day of the month on screen.
	date := a.ref
	if today := a.now(); today.Year() == a.ref.Year() && today.Month() == a.ref.Month() {
		date = today
	}

	a.addVals = &addValues{
		date:     date.Format(model.DateFormat),
		currency: string(a.cur),
		kind:     string(model.KindIncome),
	}
	a.addForm = newAddForm(a.addVals)
	if a.width > 0 {
		a.addForm = a.addForm.WithWidth(min(a.width-8, 60)).WithHeight(a.height - 4)
	}
	return a, a.addForm.Init()
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.addForm = nil
		return a, nil
	}

	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateCompleted:
		a.addForm = nil
		nr, err := a.addVals.newRecord()
		if err != nil {
			a.setFlash(err.Error(), true)
			return a, nil
		}
		return a, mutateCmd(a.cfg, "Added "+nr.Description, func(st *store.Store) error {
			_, err := st.Add(nr)
			return err
		})
	case huh.StateAborted:
		a.addForm = nil
		return a, nil
	}
	return a, cmd
}

// newRecord converts the form answers into a record in the storage currency.
func (v *addValues) newRecord() (model.NewRecord, error) {
	date, err := model.ParseDate(v.date)
	if err != nil {
		return model.NewRecord{}, err
	}
	amount, err := parseAmount(v.amount)
	if err != nil {
		return model.NewRecord{}, err
	}
	cur, err := currency.Parse(v.currency)
	if err != nil {
		return model.NewRecord{}, err
	}
	kind, err := model.ParseKind(v.kind)
	if err != nil {
		return model.NewRecord{}, err
	}
	return model.NewRecord{
		Date:        date,
		Amount:      currency.ToStorage(amount, cur),
		Description: strings.TrimSpace(v.description),
		Kind:        kind,
	}, nil
}

func (a App) viewAddForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.addForm.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
