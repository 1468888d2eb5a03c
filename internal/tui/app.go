// Package tui provides the interactive Bubble Tea dashboard for danak.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/logger"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/store"
	"github.com/theirongolddev/danak/internal/tui/components"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Result *pipeline.LoadResult
	Err    error
}

// RefreshDataMsg is sent when a background reload finishes.
type RefreshDataMsg struct {
	Result *pipeline.LoadResult
	Err    error
}

// mutationMsg reports the outcome of a write to the store.
type mutationMsg struct {
	message string
	err     error
}

type tickMsg struct{}

// Options configures a new App.
type Options struct {
	Config   config.Config
	Ref      time.Time         // reference date; zero means today
	Currency currency.Currency // display currency; empty uses the config
	FirstRun bool              // show the setup form after loading
	Now      func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	cfg config.Config
	now func() time.Time

	// Data
	result  *pipeline.LoadResult
	loaded  bool
	loadErr error
	ref     time.Time
	cur     currency.Currency

	// Auto-refresh
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     string
	flashErr  bool

	recState recordsState
	settings settingsState

	// huh forms; values live behind pointers so copies of App share them.
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
	addForm   *huh.Form
	addVals   *addValues

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5

	tabOverview = 0
	tabMonths   = 1
	tabRecords  = 2
	tabSettings = 3
)

// NewApp creates the dashboard model.
func NewApp(opts Options) App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ref := opts.Ref
	if ref.IsZero() {
		ref = now()
	}
	cur := opts.Currency
	if cur == "" {
		cur = opts.Config.DisplayCurrency()
	}

	interval := time.Duration(opts.Config.TUI.RefreshIntervalSec) * time.Second
	if interval < 10*time.Second {
		interval = 30 * time.Second
	}

	theme.SetActive(opts.Config.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:             opts.Config,
		now:             now,
		ref:             model.Day(ref),
		cur:             cur,
		autoRefresh:     opts.Config.TUI.AutoRefresh,
		refreshInterval: interval,
		needSetup:       opts.FirstRun,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.cfg, a.ref),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.addForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabRecords {
				a.recState.moveCursor(-1, len(a.visibleRecords()))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabRecords {
				a.recState.moveCursor(1, len(a.visibleRecords()))
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.lastRefresh = a.now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.result = msg.Result
		}
		if a.needSetup {
			a.setupVals = newSetupValues(a.cfg, a.settingsOrDefault())
			a.setupForm = newSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = a.now()
		if msg.Err != nil {
			a.setFlash("refresh failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.result = msg.Result
		a.loadErr = nil
		a.recState.clamp(len(a.visibleRecords()))
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			a.setFlash(msg.err.Error(), true)
			return a, nil
		}
		a.setFlash(msg.message, false)
		a.refreshing = true
		return a, refreshDataCmd(a.cfg, a.ref)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.cfg, a.ref))
		}
		return a, tea.Batch(cmds...)
	}

	// Cursor blinks and other form-internal messages.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabRecords && a.recState.searching {
		return a.updateRecordsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabRecords {
		if next, cmd, handled := a.updateRecordsKey(key); handled {
			return next, cmd
		}
	}
	if a.activeTab == tabSettings {
		if next, cmd, handled := a.updateSettingsKey(key); handled {
			return next, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "c":
		a.cur = a.cur.Toggle()
		return a, nil
	case "left", "h":
		return a.shiftMonth(-1)
	case "right", "l":
		return a.shiftMonth(1)
	case "t":
		return a.jumpTo(a.now())
	case "a":
		return a.openAddForm()
	case "R":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, refreshDataCmd(a.cfg, a.ref)
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// shiftMonth moves the reference date by delta months. Within the same
// year the loaded snapshot is recomputed in place; crossing a year boundary
// reloads so the regime for that year applies.
func (a App) shiftMonth(delta int) (tea.Model, tea.Cmd) {
	next := time.Date(a.ref.Year(), a.ref.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return a.jumpTo(next)
}

func (a App) jumpTo(ref time.Time) (tea.Model, tea.Cmd) {
	ref = model.Day(ref)
	sameYear := ref.Year() == a.ref.Year()
	a.ref = ref
	if a.result != nil && sameYear {
		a.result.Recompute(ref)
		return a, nil
	}
	a.refreshing = true
	return a, refreshDataCmd(a.cfg, ref)
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash = msg
	a.flashErr = isErr
}

func (a App) settingsOrDefault() model.Settings {
	if a.result == nil {
		return model.DefaultSettings()
	}
	return a.result.Snapshot.Settings
}

func (a App) records() []model.Record {
	if a.result == nil {
		return nil
	}
	return a.result.Snapshot.Records
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.addForm != nil {
		return a.viewAddForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  danak needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ danak") +
		subtitleStyle.Render(" · self-employed tax estimate") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading records...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o m r x", "Jump to tab"},
			{"tab", "Next tab"},
			{"← →", "Previous / next month"},
			{"t", "Back to this month"},
			{"j k", "Move in lists"},
		}},
		{"Actions", [][2]string{
			{"a", "Add a record"},
			{"d", "Delete selected record"},
			{"/", "Search records"},
			{"p", "Cycle records period"},
			{"c", "Toggle EUR / BGN"},
			{"R", "Reload data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	dataAge := ""
	if a.result != nil {
		dataAge = a.result.LoadTime.Round(time.Millisecond).String()
	}
	statusBar := components.RenderStatusBar(w, components.Status{
		Currency:    string(a.cur),
		Period:      cli.FormatPeriodMonth(a.ref.Year(), a.ref.Month()),
		DataAge:     dataAge,
		Message:     a.flash,
		IsError:     a.flashErr,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	})

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Error",
			lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface).Render(a.loadErr.Error()), cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabMonths:
		content = a.renderMonthsTab(cw)
	case a.activeTab == tabRecords:
		content = a.renderRecordsTab(cw, contentH)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadResult opens the store, loads a snapshot for ref, and closes it again
// so the daemon and CLI can write between refreshes.
func loadResult(cfg config.Config, ref time.Time) (*pipeline.LoadResult, error) {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()
	return pipeline.Load(st, cfg, ref)
}

func loadDataCmd(cfg config.Config, ref time.Time) tea.Cmd {
	return func() tea.Msg {
		res, err := loadResult(cfg, ref)
		return DataLoadedMsg{Result: res, Err: err}
	}
}

func refreshDataCmd(cfg config.Config, ref time.Time) tea.Cmd {
	return func() tea.Msg {
		res, err := loadResult(cfg, ref)
		return RefreshDataMsg{Result: res, Err: err}
	}
}

// mutateCmd runs fn against the store and reports the outcome.
func mutateCmd(cfg config.Config, success string, fn func(*store.Store) error) tea.Cmd {
	return func() tea.Msg {
		log := logger.WithComponent("tui")
		st, err := store.Open(cfg.DBPath())
		if err != nil {
			log.Error().Err(err).Msg("open store")
			return mutationMsg{err: err}
		}
		defer func() { _ = st.Close() }()
		if err := fn(st); err != nil {
			log.Warn().Err(err).Msg("store update failed")
			return mutationMsg{err: err}
		}
		log.Debug().Str("result", success).Msg("store updated")
		return mutationMsg{message: success}
	}
}

// ─── Layout helpers ─────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w on the given background.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab under column x of the tab bar, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
