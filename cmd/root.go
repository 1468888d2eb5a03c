// Package cmd implements the danak CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/logger"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/store"
)

var (
	flagDataDir  string
	flagDate     string
	flagCurrency string
	flagQuiet    bool
	flagVerbose  bool
)

// appCfg is the loaded configuration with command-line overrides applied.
var appCfg = config.DefaultConfig()

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "danak",
	Short: "Tax estimates for Bulgarian self-employed persons",
	Long: "Track dated income records and estimate monthly social security,\n" +
		"income tax, net income, and progress toward VAT registration.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding danak.db (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDate, "date", "", "Reference date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "Display currency: EUR or BGN")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.Flags().StringVar(&flagSummaryMonth, "month", "", "Month to summarize, YYYY-MM")
}

// setup loads config, applies global flags, and configures logging.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagCurrency != "" {
		cur, err := currency.Parse(flagCurrency)
		if err != nil {
			return err
		}
		cfg.General.Currency = string(cur)
	}
	appCfg = cfg

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	if flagVerbose {
		logCfg.Level = "debug"
	}
	closer, err := logger.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	logCloser = closer
	return nil
}

// refDate returns the --date reference date or today.
func refDate() (time.Time, error) {
	if flagDate == "" {
		return model.Day(time.Now()), nil
	}
	return model.ParseDate(flagDate)
}

func displayCurrency() currency.Currency {
	return appCfg.DisplayCurrency()
}

// currencyAmount converts a stored amount to the display currency.
func currencyAmount(eur decimal.Decimal) decimal.Decimal {
	return currency.FromStorage(eur, displayCurrency())
}

func openStore() (*store.Store, error) {
	st, err := store.Open(appCfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// withStore opens the store, runs fn, and closes it.
func withStore(fn func(*store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(st)
}

// loadData is the shared data loading path used by the reporting commands.
func loadData(ref time.Time) (*pipeline.LoadResult, error) {
	var result *pipeline.LoadResult
	err := withStore(func(st *store.Store) error {
		var err error
		result, err = pipeline.Load(st, appCfg, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	l := logger.WithComponent("cmd")
	l.Debug().
		Int("records", len(result.Snapshot.Records)).
		Dur("took", result.LoadTime).
		Str("base_mode", string(result.Mode)).
		Msg("data loaded")
	return result, nil
}

// info prints a status line unless --quiet is set.
func info(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Printf("  "+format+"\n", args...)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
