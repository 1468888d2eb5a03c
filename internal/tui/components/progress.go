package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/tui/theme"
)

// ColorForPct picks a color for a utilization fraction: danger past warnAt,
// warning from 80% of warnAt, and the net color below that.
func ColorForPct(pct, warnAt float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > warnAt:
		return t.Danger
	case pct >= warnAt*0.8:
		return t.Warning
	default:
		return t.Net
	}
}

// ThresholdBar renders a labeled bar for a fraction of a limit. The fill
// stops at 100% while the label keeps the real percentage.
func ThresholdBar(label string, pct, warnAt float64, labelW, barWidth int) string {
	t := theme.Active

	fill := pct
	if fill < 0 {
		fill = 0
	}
	if fill > 1 {
		fill = 1
	}
	color := ColorForPct(pct, warnAt)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	out := ""
	if label != "" {
		out = labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space
	}
	return out + bar.ViewAs(fill) + space + pctStyle.Render(fmt.Sprintf("%.2f%%", pct*100))
}
