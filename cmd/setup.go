package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// prompter reads answers line by line; an empty answer keeps the current value.
type prompter struct {
	r *bufio.Reader
}

func (p prompter) ask(current string) string {
	if current != "" {
		fmt.Printf("     Current: %s\n", current)
	}
	fmt.Print("     > ")
	line, _ := p.r.ReadString('\n')
	return strings.TrimSpace(line)
}

func runSetup(_ *cobra.Command, _ []string) error {
	p := prompter{r: bufio.NewReader(os.Stdin)}

	// Saved as read from disk, without command-line overrides.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	settings, err := st.Settings()
	if err != nil {
		return err
	}
	n, _ := st.Count()

	fmt.Println()
	fmt.Println("  Welcome to danak!")
	fmt.Println()
	if n > 0 {
		fmt.Printf("  Found %s records in %s\n\n", formatNumber(int64(n)), appCfg.DBPath())
	}

	var patch model.SettingsPatch

	fmt.Println("  Your name (printed on reports)")
	if v := p.ask(settings.Name); v != "" {
		patch.Name = &v
	}
	fmt.Println()
	fmt.Println("  EIC (unified identification code)")
	if v := p.ask(settings.EIC); v != "" {
		patch.EIC = &v
	}
	fmt.Println()

	fmt.Println("  Are you self-insured? (y/n)")
	switch strings.ToLower(p.ask(yesNo(settings.SelfInsured))) {
	case "y", "yes":
		v := true
		patch.SelfInsured = &v
	case "n", "no":
		v := false
		patch.SelfInsured = &v
	}
	fmt.Println()

	fmt.Println("  Social-security base")
	fmt.Println("     (1) From monthly income [default]")
	fmt.Println("     (2) Elected insurance income")
	switch p.ask(string(cfg.General.BaseMode)) {
	case "1":
		cfg.General.BaseMode = config.BaseActual
	case "2":
		cfg.General.BaseMode = config.BaseElected
	}
	fmt.Println()

	if cfg.General.BaseMode == config.BaseElected {
		fmt.Println("  Elected monthly insurance income in EUR")
		if v := p.ask(settings.InsuranceIncome.String()); v != "" {
			income, err := parseAmount(v)
			if err != nil {
				return err
			}
			patch.InsuranceIncome = &income
		}
		fmt.Println()
	}

	fmt.Println("  Display currency")
	fmt.Println("     (1) Euro (EUR) [default]")
	fmt.Println("     (2) Bulgarian lev (BGN)")
	switch p.ask(string(cfg.DisplayCurrency())) {
	case "1":
		cfg.General.Currency = string(currency.EUR)
	case "2":
		cfg.General.Currency = string(currency.BGN)
	}
	fmt.Println()

	names := theme.Names()
	fmt.Println("  Color theme")
	for i, name := range names {
		fmt.Printf("     (%d) %s\n", i+1, name)
	}
	choice := p.ask(cfg.Appearance.Theme)
	for i, name := range names {
		if choice == fmt.Sprint(i+1) || choice == name {
			cfg.Appearance.Theme = name
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	if !patch.IsEmpty() {
		if _, err := st.UpdateSettings(patch); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `danak setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
