// Package theme defines the color themes for the danak dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps color roles used across the dashboard.
type Theme struct {
	Name          string
	Background    lipgloss.Color // app background
	Surface       lipgloss.Color // card and bar background
	SurfaceBright lipgloss.Color // selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused cards and overlays
	TextDim       lipgloss.Color
	TextMuted     lipgloss.Color
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color

	// Semantic roles for money figures.
	Income  lipgloss.Color
	Due     lipgloss.Color
	Net     lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
}

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Income:        lipgloss.Color("#4385BE"),
	Due:           lipgloss.Color("#DA702C"),
	Net:           lipgloss.Color("#879A39"),
	Warning:       lipgloss.Color("#D0A215"),
	Danger:        lipgloss.Color("#D14D41"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Income:        lipgloss.Color("#89B4FA"),
	Due:           lipgloss.Color("#FAB387"),
	Net:           lipgloss.Color("#A6E3A1"),
	Warning:       lipgloss.Color("#F9E2AF"),
	Danger:        lipgloss.Color("#F38BA8"),
}

// TokyoNight is a cool blue theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	Income:        lipgloss.Color("#7DCFFF"),
	Due:           lipgloss.Color("#FF9E64"),
	Net:           lipgloss.Color("#9ECE6A"),
	Warning:       lipgloss.Color("#E0AF68"),
	Danger:        lipgloss.Color("#F7768E"),
}

// Terminal uses the ANSI 16 palette only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Income:        lipgloss.Color("4"),
	Due:           lipgloss.Color("3"),
	Net:           lipgloss.Color("2"),
	Warning:       lipgloss.Color("11"),
	Danger:        lipgloss.Color("1"),
}

// All lists the selectable themes; the first one is the default.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Active is the theme used for rendering.
var Active = FlexokiDark

// Names returns the names of every theme in All.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the theme with the given name.
func Lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ByName returns the named theme, or the default when unknown.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return All[0]
}

// SetActive switches the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
