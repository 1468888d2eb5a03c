package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/tui/theme"
)

// Tab is one entry of the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // index of Key in Name, or -1 when the key is not part of it
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Months", Key: 'm', KeyPos: 0},
	{Name: "Records", Key: 'r', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

// TabVisualWidth returns the rendered width of tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active && tab.KeyPos < 0 {
		w += 3 // "[x]"
	}
	return w
}

// RenderTabBar renders a single-row tab bar with activeIdx highlighted.
// Tabs are separated by one column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceBright).
		Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	for i, tab := range Tabs {
		if i > 0 {
			b.WriteString(dimStyle.Render("│"))
		}
		if i == activeIdx {
			b.WriteString(activeStyle.Render(" " + tab.Name + " "))
			continue
		}

		b.WriteString(inactiveStyle.Render(" "))
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			b.WriteString(inactiveStyle.Render(tab.Name[:tab.KeyPos]))
			b.WriteString(keyStyle.Render(tab.Name[tab.KeyPos : tab.KeyPos+1]))
			b.WriteString(inactiveStyle.Render(tab.Name[tab.KeyPos+1:]))
		} else {
			b.WriteString(inactiveStyle.Render(tab.Name))
			b.WriteString(dimStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimStyle.Render("]"))
		}
		b.WriteString(inactiveStyle.Render(" "))
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(b.String())
}

// TabIdxByKey returns the tab bound to key, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
