package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/danak/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2
			assert.Equalf(t, i, a.tabAtX(x), "active=%d x=%d", active, x)
			pos += w + 1
		}
		assert.Equal(t, -1, a.tabAtX(pos+50))
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Overview"),
		len("Months"),
		len("Records"),
		len("Settings"),
	}

	w := nameWidths[tabIdx] + 2 // padding
	if tabIdx != activeIdx && tabIdx == 3 {
		w += 3 // inactive Settings shows "[x]"
	}
	return w
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := App{loaded: true}
	x := tabWidthForTest(0, 0) + 1 + 2 // inside "Months"

	next, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, tabMonths, next.(App).activeTab)
}
