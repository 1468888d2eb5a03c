package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration and tax regime",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:         %s\n", cfg.DBPath())
	fmt.Printf("    Display currency: %s\n", cfg.DisplayCurrency())
	fmt.Printf("    Base mode:        %s\n", cfg.General.BaseMode)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %ds)\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:  %s\n", cfg.Server.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Server.IntervalSec)
	fmt.Println()

	ref, err := refDate()
	if err != nil {
		return err
	}
	r, err := cfg.RegimeAt(ref)
	if err != nil {
		return err
	}
	pct := func(rate decimal.Decimal) string { return rate.Shift(2).StringFixed(1) + "%" }

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Tax regime on %s (effective %s)", ref.Format(model.DateFormat), r.EffectiveFrom.Format(model.DateFormat)),
		Headers: []string{"Constant", "Value"},
		Rows: [][]string{
			{"Min insurance income", cli.FormatMoney(r.MinInsuranceIncome, cfg.DisplayCurrency())},
			{"Max insurance income", cli.FormatMoney(r.MaxInsuranceIncome, cfg.DisplayCurrency())},
			{"Statutory expenses", pct(r.StatutoryExpenseRate)},
			{"Social security rate", pct(r.SocialSecurityRate)},
			{"Income tax rate", pct(r.IncomeTaxRate)},
			{"VAT threshold", cli.FormatMoney(r.VATThreshold, cfg.DisplayCurrency())},
		},
	}))
	fmt.Println()
	fmt.Println("  Run `danak setup` to reconfigure.")
	return nil
}
