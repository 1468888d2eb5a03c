package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/tui/theme"
)

// Status is the information shown in the bottom bar.
type Status struct {
	Currency    string
	Period      string
	DataAge     string
	Message     string
	IsError     bool
	Refreshing  bool
	AutoRefresh bool
}

// RenderStatusBar renders the bottom status bar at full width.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(t.Net).Background(t.Surface)
	if st.IsError {
		msgStyle = msgStyle.Foreground(t.Danger)
	}

	left := base.Render(" [?]help  [q]uit  [c]urrency  [←→]month")
	if st.Message != "" {
		left += base.Render("  ") + msgStyle.Render(st.Message)
	}

	var parts []string
	if st.Refreshing {
		parts = append(parts, accent.Render("refreshing"))
	} else if st.AutoRefresh {
		parts = append(parts, base.Render("auto"))
	}
	if st.Currency != "" {
		parts = append(parts, accent.Render(st.Currency))
	}
	if st.Period != "" {
		parts = append(parts, base.Render(st.Period))
	}
	if st.DataAge != "" {
		parts = append(parts, base.Render("Data: "+st.DataAge))
	}
	right := strings.Join(parts, base.Render(" │ ")) + base.Render(" ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return left + base.Render(strings.Repeat(" ", gap)) + right
}
