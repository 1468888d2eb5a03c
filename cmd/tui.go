package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/logger"
	"github.com/theirongolddev/danak/internal/tui"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alternate screen owns stderr, so logs go to a file next to the
	// database.
	logPath := filepath.Join(filepath.Dir(appCfg.DBPath()), "danak.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err == nil {
		logCfg := logger.DefaultConfig()
		logCfg.Level = appCfg.Log.Level
		if flagVerbose {
			logCfg.Level = "debug"
		}
		logCfg.Output = logPath
		if closer, err := logger.Setup(logCfg); err == nil {
			if logCloser != nil {
				_ = logCloser.Close()
			}
			logCloser = closer
		}
	}

	opts := tui.Options{
		Config:   appCfg,
		FirstRun: !config.Exists(),
	}
	if flagDate != "" {
		ref, err := refDate()
		if err != nil {
			return err
		}
		opts.Ref = ref
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
