package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/store"
	"github.com/theirongolddev/danak/internal/tui/components"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

// recordsScope selects which records the list shows relative to the
// reference month.
type recordsScope int

const (
	scopeMonth recordsScope = iota
	scopeYear
	scopeAll
)

func (s recordsScope) next() recordsScope {
	return (s + 1) % 3
}

// recordsState holds the records tab state.
type recordsState struct {
	cursor        int
	offset        int
	scope         recordsScope
	searching     bool
	searchInput   textinput.Model
	query         string
	confirmDelete bool
}

func (rs *recordsState) moveCursor(delta, n int) {
	rs.cursor += delta
	rs.clamp(n)
}

func (rs *recordsState) clamp(n int) {
	if rs.cursor >= n {
		rs.cursor = n - 1
	}
	if rs.cursor < 0 {
		rs.cursor = 0
	}
}

func (rs *recordsState) reset() {
	rs.cursor = 0
	rs.offset = 0
	rs.confirmDelete = false
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search descriptions..."
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

// period returns the records period for the current scope.
func (a App) period() pipeline.Period {
	switch a.recState.scope {
	case scopeMonth:
		return pipeline.MonthOf(a.ref)
	case scopeYear:
		return pipeline.YearOf(a.ref)
	default:
		return pipeline.Period{}
	}
}

// visibleRecords returns the records in scope matching the search query.
func (a App) visibleRecords() []model.Record {
	return pipeline.FilterBySearch(a.period().Filter(a.records()), a.recState.query)
}

func (a App) updateRecordsKey(key string) (tea.Model, tea.Cmd, bool) {
	recs := a.visibleRecords()
	rs := &a.recState

	if rs.confirmDelete {
		rs.confirmDelete = false
		if key != "y" || rs.cursor >= len(recs) {
			a.setFlash("", false)
			return a, nil, true
		}
		sel := recs[rs.cursor]
		return a, mutateCmd(a.cfg, "Deleted "+sel.Description, func(st *store.Store) error {
			return st.Delete(sel.ID)
		}), true
	}

	switch key {
	case "j", "down":
		rs.moveCursor(1, len(recs))
	case "k", "up":
		rs.moveCursor(-1, len(recs))
	case "g":
		rs.reset()
	case "G":
		rs.cursor = len(recs) - 1
		rs.clamp(len(recs))
	case "p":
		rs.scope = rs.scope.next()
		rs.reset()
	case "/":
		rs.searching = true
		rs.searchInput = newSearchInput()
		rs.searchInput.SetValue(rs.query)
		rs.searchInput.Focus()
		return a, rs.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if rs.query == "" {
			return a, nil, false
		}
		rs.query = ""
		rs.reset()
	case "d", "delete":
		if rs.cursor >= len(recs) {
			return a, nil, true
		}
		rs.confirmDelete = true
		a.setFlash(fmt.Sprintf("Delete %q? y/n", recs[rs.cursor].Description), false)
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateRecordsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.recState.query = strings.TrimSpace(a.recState.searchInput.Value())
		a.recState.searching = false
		a.recState.reset()
		return a, nil
	case "esc":
		a.recState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.recState.searchInput, cmd = a.recState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderRecordsTab(cw, h int) string {
	t := theme.Active
	rs := a.recState
	recs := a.visibleRecords()
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	totalStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	const dateW, kindW, amountW = 12, 9, 18
	descW := max(10, innerW-dateW-kindW-amountW)
	format := fmt.Sprintf("%%-%ds%%-%ds%%-%ds%%%ds", dateW, descW, kindW, amountW)

	var b strings.Builder
	if rs.searching {
		b.WriteString(mutedStyle.Render("Search: "))
		b.WriteString(rs.searchInput.View())
		b.WriteString("\n\n")
	} else if rs.query != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Filter: %q  (esc to clear)", rs.query)))
		b.WriteString("\n\n")
	}

	if len(recs) == 0 {
		b.WriteString(mutedStyle.Render("No records. Press a to add one."))
		return components.ContentCard(a.recordsTitle(0), b.String(), cw)
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf(format, "Date", "Description", "Kind", "Amount")))
	b.WriteString("\n")

	// Card border, header, spacer, and total lines.
	visible := max(3, h-8)
	offset := rs.offset
	if rs.cursor < offset {
		offset = rs.cursor
	}
	if rs.cursor >= offset+visible {
		offset = rs.cursor - visible + 1
	}
	end := min(offset+visible, len(recs))

	for i := offset; i < end; i++ {
		r := recs[i]
		line := fmt.Sprintf(format,
			r.Date.Format(model.DateFormat),
			truncStr(r.Description, descW-1),
			string(r.Kind),
			cli.FormatMoney(r.Amount, a.cur),
		)
		if i == rs.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	total := pipeline.SumAmounts(recs)
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("%*s", innerW,
		"Total "+cli.FormatAmount(currency.FromStorage(total, a.cur))+" "+string(a.cur))))

	return components.ContentCard(a.recordsTitle(len(recs)), b.String(), cw)
}

func (a App) recordsTitle(n int) string {
	scope := "all time"
	switch a.recState.scope {
	case scopeMonth:
		scope = monthLabel(a.ref)
	case scopeYear:
		scope = fmt.Sprint(a.ref.Year())
	}
	return fmt.Sprintf("Records · %s · %s  [p] period", scope, cli.FormatNumber(int64(n)))
}
