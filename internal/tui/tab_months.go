package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/tui/components"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

func (a App) renderMonthsTab(cw int) string {
	t := theme.Active
	if a.result == nil || len(a.result.Months) == 0 {
		return components.ContentCard("Months", "No data", cw)
	}
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface)
	totalStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	// Fixed columns; money columns share what is left.
	const monthW, recW, vatW = 6, 5, 8
	moneyW := (innerW - monthW - recW - vatW) / 4
	if moneyW < 10 {
		moneyW = 10
	}
	format := fmt.Sprintf("%%-%ds%%%ds%%%ds%%%ds%%%ds%%%ds%%%ds", monthW, recW, moneyW, moneyW, moneyW, moneyW, vatW)

	rule := mutedStyle.Render(strings.Repeat("─", min(innerW, monthW+recW+4*moneyW+vatW)))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf(format, "Month", "Recs", "Income", "Soc. sec.", "Tax", "Net", "VAT %")))
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")

	warnAt := decimal.NewFromInt(cli.VATWarnPercent)
	for _, m := range a.result.Months {
		s := m.Summary
		line := fmt.Sprintf(format,
			cli.FormatMonth(m.Month),
			cli.FormatNumber(int64(m.Records)),
			cli.FormatAmount(currency.FromStorage(s.TotalIncome, a.cur)),
			cli.FormatAmount(currency.FromStorage(s.SocialSecurity, a.cur)),
			cli.FormatAmount(currency.FromStorage(s.IncomeTax, a.cur)),
			cli.FormatAmount(currency.FromStorage(s.NetIncome, a.cur)),
			s.VATProgressPercent.StringFixed(1),
		)

		switch {
		case m.Month == a.ref.Month():
			b.WriteString(selectedStyle.Render(line))
		case s.OverVATWarning(warnAt):
			b.WriteString(warnStyle.Render(line))
		case m.Records == 0:
			b.WriteString(mutedStyle.Render(line))
		default:
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	tot := a.result.Totals
	b.WriteString(rule)
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf(format,
		"Total",
		cli.FormatNumber(int64(tot.YearRecords)),
		cli.FormatAmount(currency.FromStorage(tot.TotalIncome, a.cur)),
		cli.FormatAmount(currency.FromStorage(tot.SocialSecurity, a.cur)),
		cli.FormatAmount(currency.FromStorage(tot.IncomeTax, a.cur)),
		cli.FormatAmount(currency.FromStorage(tot.NetIncome, a.cur)),
		tot.VATProgressPercent.StringFixed(1),
	)))

	title := fmt.Sprintf("Monthly breakdown %d (%s)", a.ref.Year(), a.cur)
	table := components.ContentCard(title, b.String(), cw)

	values, labels := a.monthlyIncomeSeries()
	spark := components.ContentCard("Income trend",
		components.Sparkline(values, t.Income)+"  "+
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(strings.Join([]string{labels[0], labels[len(labels)-1]}, " … ")),
		cw)

	return table + "\n" + spark
}
