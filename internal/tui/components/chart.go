package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a single row of block characters.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders one vertical bar per value with a y-axis and labels
// under each bar. The bar at highlight (or none when out of range) is
// drawn in the accent color. Narrow areas fall back to a sparkline.
func BarChart(values []float64, labels []string, highlight int, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 3 {
		return Sparkline(values, t.Income)
	}

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	step := chartTickStep(peak)
	ceiling := math.Ceil(peak/step) * step
	intervals := max(1, int(math.Round(ceiling/step)))
	rowsPerTick := max(1, height/intervals)
	chartH := rowsPerTick * intervals

	axisW := max(4, len(formatChartLabel(ceiling))+1)
	n := len(values)
	barW := (width - axisW - 1 - (n - 1)) / n
	barW = max(1, min(barW, 6))
	axisLen := n*barW + (n - 1)

	surface := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	normal := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(surface.Render(" "))
			}
			style := normal
			if i == highlight {
				style = accent
			}
			switch {
			case v >= top:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * float64(len(sparkBlocks)))
				idx = max(0, min(idx, len(sparkBlocks)-1))
				b.WriteString(style.Render(strings.Repeat(string(sparkBlocks[idx]), barW)))
			default:
				b.WriteString(surface.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		var lb strings.Builder
		for i, l := range labels {
			if i > 0 {
				lb.WriteByte(' ')
			}
			r := []rune(l)
			if len(r) > barW {
				r = r[:barW]
			}
			lb.WriteString(string(r) + strings.Repeat(" ", barW-len(r)))
		}
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", axisW+1)))
		b.WriteString(axis.Render(strings.TrimRight(lb.String(), " ")))
	}

	return b.String()
}

// chartTickStep picks a 1/2/5 step giving roughly five ticks.
func chartTickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
