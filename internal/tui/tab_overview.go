package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/tui/components"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

var hundred = decimal.NewFromInt(100)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	if a.result == nil {
		return ""
	}
	s := a.result.Summary
	var b strings.Builder

	// Row 1: the month's headline figures.
	prev, hasPrev := a.previousMonth()
	delta := func(cur, old decimal.Decimal) string {
		if !hasPrev {
			return ""
		}
		return cli.FormatDelta(cur, old, a.cur) + " vs " + cli.FormatMonth(prev.Month)
	}
	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatMoney(s.TotalIncome, a.cur), Delta: delta(s.TotalIncome, prev.TotalIncome), Color: t.Income},
		{Label: "Social security", Value: cli.FormatMoney(s.SocialSecurity, a.cur), Delta: delta(s.SocialSecurity, prev.SocialSecurity), Color: t.Due},
		{Label: "Income tax", Value: cli.FormatMoney(s.IncomeTax, a.cur), Delta: delta(s.IncomeTax, prev.IncomeTax), Color: t.Due},
		{Label: "Net income", Value: cli.FormatMoney(s.NetIncome, a.cur), Delta: delta(s.NetIncome, prev.NetIncome), Color: t.Net},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: breakdown and VAT side by side, stacked when narrow.
	if a.isCompactLayout() {
		b.WriteString(a.renderBreakdownCard(cw))
		b.WriteString("\n")
		b.WriteString(a.renderVATCard(cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderBreakdownCard(halves[0]),
			a.renderVATCard(halves[1]),
		}))
	}
	b.WriteString("\n")

	// Row 3: monthly income for the year.
	if len(a.result.Months) > 0 {
		values, labels := a.monthlyIncomeSeries()
		chartH := 8
		if a.isCompactLayout() {
			chartH = 6
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Monthly income %d (%s)", s.Year, a.cur),
			components.BarChart(values, labels, int(s.Month)-1, components.CardInnerWidth(cw), chartH),
			cw,
		))
	}

	return b.String()
}

// previousMonth returns the summary of the month before the reference
// month when it belongs to the loaded year.
func (a App) previousMonth() (model.TaxSummary, bool) {
	idx := int(a.result.Summary.Month) - 2
	if idx < 0 || idx >= len(a.result.Months) {
		return model.TaxSummary{}, false
	}
	return a.result.Months[idx].Summary, true
}

func (a App) monthlyIncomeSeries() ([]float64, []string) {
	values := make([]float64, len(a.result.Months))
	labels := make([]string, len(a.result.Months))
	for i, m := range a.result.Months {
		values[i] = currency.FromStorage(m.Summary.TotalIncome, a.cur).InexactFloat64()
		labels[i] = cli.FormatMonth(m.Month)
	}
	return values, labels
}

func (a App) renderBreakdownCard(w int) string {
	t := theme.Active
	s := a.result.Summary
	r := a.result.Regime
	inner := components.CardInnerWidth(w)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	totalStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	line := func(label string, v decimal.Decimal, style lipgloss.Style) string {
		value := cli.FormatMoney(v, a.cur)
		gap := max(1, inner-lipgloss.Width(label)-lipgloss.Width(value))
		return labelStyle.Render(label) + space.Render(strings.Repeat(" ", gap)) + style.Render(value)
	}
	rate := func(d decimal.Decimal) string {
		return d.Mul(hundred).String() + "%"
	}

	rows := []string{
		line("Total income", s.TotalIncome, valueStyle),
		line("Statutory expenses ("+rate(r.StatutoryExpenseRate)+")", s.StatutoryExpenses, valueStyle),
		line("Taxable income", s.TaxableIncomeBase, valueStyle),
		line("Social-security base", s.SocialSecurityBase, valueStyle),
		line("Social security ("+rate(r.SocialSecurityRate)+")", s.SocialSecurity, valueStyle),
		line("Tax base", s.TaxBase, valueStyle),
		line("Income tax ("+rate(r.IncomeTaxRate)+")", s.IncomeTax, valueStyle),
		line("Total due", s.TotalDue(), totalStyle),
		line("Net income", s.NetIncome, totalStyle),
	}

	title := fmt.Sprintf("%s · %d records · %s base", cli.FormatPeriodMonth(s.Year, s.Month), s.MonthRecords, a.result.Mode)
	return components.ContentCard(title, strings.Join(rows, "\n"), w)
}

func (a App) renderVATCard(w int) string {
	t := theme.Active
	s := a.result.Summary
	inner := components.CardInnerWidth(w)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface).Bold(true)

	pct := s.VATProgressPercent.Div(hundred).InexactFloat64()
	warnAt := float64(cli.VATWarnPercent) / 100
	barW := max(10, inner-10)

	var b strings.Builder
	b.WriteString(components.ThresholdBar("", pct, warnAt, 0, barW))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Turnover " + fmt.Sprint(s.Year) + "  "))
	b.WriteString(valueStyle.Render(cli.FormatMoney(s.YearlyTurnover, a.cur)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Threshold      "))
	b.WriteString(valueStyle.Render(cli.FormatMoney(s.VATThreshold, a.cur)))
	b.WriteString("\n")
	remaining := s.VATThreshold.Sub(s.YearlyTurnover)
	if remaining.IsPositive() {
		b.WriteString(mutedStyle.Render("Remaining      "))
		b.WriteString(valueStyle.Render(cli.FormatMoney(remaining, a.cur)))
	}
	if s.OverVATWarning(decimal.NewFromInt(cli.VATWarnPercent)) {
		b.WriteString("\n\n")
		b.WriteString(warnStyle.Render(truncStr(
			fmt.Sprintf("Over %d%% of the VAT threshold: plan VAT registration.", cli.VATWarnPercent), inner)))
	}

	return components.ContentCard("VAT registration", b.String(), w)
}

// monthLabel renders "Mar 2026" for the month containing d.
func monthLabel(d time.Time) string {
	return cli.FormatMonth(d.Month()) + " " + fmt.Sprint(d.Year())
}
