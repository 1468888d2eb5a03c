package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
)

var flagSummaryMonth string

var vatWarnAt = decimal.NewFromInt(cli.VATWarnPercent)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Tax breakdown for the reference month",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&flagSummaryMonth, "month", "", "Month to summarize, YYYY-MM")
	rootCmd.AddCommand(summaryCmd)
}

// monthRef resolves --month to the first day of that month, falling back
// to the global reference date.
func monthRef(month string) (time.Time, error) {
	if month == "" {
		return refDate()
	}
	p, err := pipeline.ParsePeriod(month)
	if err != nil {
		return time.Time{}, err
	}
	if p.Month == 0 {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", month)
	}
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC), nil
}

func runSummary(_ *cobra.Command, _ []string) error {
	ref, err := monthRef(flagSummaryMonth)
	if err != nil {
		return err
	}
	result, err := loadData(ref)
	if err != nil {
		return err
	}

	cur := displayCurrency()
	s := result.Summary
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TAX ESTIMATE  %s", cli.FormatPeriodMonth(s.Year, s.Month))))
	fmt.Println()

	if len(result.Snapshot.Records) == 0 {
		fmt.Println("  No records yet. Add one with `danak add --amount 1000 --desc \"Invoice 1\"`.")
		fmt.Println()
	}

	// Previous month for comparison; January compares within the same
	// year only, so it has no delta.
	var prev *model.TaxSummary
	if s.Month > time.January {
		p := result.Months[s.Month-2].Summary
		prev = &p
	}
	withDelta := func(value string, current func(model.TaxSummary) decimal.Decimal) string {
		if prev == nil || !prev.HasActivity() {
			return value
		}
		return value + "  (" + cli.FormatDelta(current(s), current(*prev), cur) + " vs prev)"
	}

	rows := [][]string{
		{"Records (month)", cli.FormatNumber(int64(s.MonthRecords))},
		{"Records (year)", cli.FormatNumber(int64(s.YearRecords))},
		{"---"},
		{"Income", withDelta(cli.FormatMoney(s.TotalIncome, cur), func(v model.TaxSummary) decimal.Decimal {
			return v.TotalIncome
		})},
		{"Statutory expenses", cli.FormatMoney(s.StatutoryExpenses, cur)},
		{"Taxable income base", cli.FormatMoney(s.TaxableIncomeBase, cur)},
		{"---"},
		{"Social security base", cli.FormatMoney(s.SocialSecurityBase, cur)},
		{"Social security", cli.FormatMoney(s.SocialSecurity, cur)},
		{"Tax base", cli.FormatMoney(s.TaxBase, cur)},
		{"Income tax", cli.FormatMoney(s.IncomeTax, cur)},
		{"Total due", cli.FormatMoney(s.TotalDue(), cur)},
		{"---"},
		{"Net income", withDelta(cli.FormatMoney(s.NetIncome, cur), func(v model.TaxSummary) decimal.Decimal {
			return v.NetIncome
		})},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  VAT turnover %d: %s of %s\n", s.Year,
		cli.FormatMoney(s.YearlyTurnover, cur), cli.FormatMoney(s.VATThreshold, cur))
	fmt.Printf("  %s\n", cli.RenderProgressBar(s.VATProgressPercent, 40, cli.VATWarnPercent))
	if s.OverVATWarning(vatWarnAt) {
		fmt.Println("  " + cli.Warn("Approaching the VAT registration threshold."))
	}

	mode := "actual income"
	if result.Mode == config.BaseElected {
		mode = "elected insurance income"
	}
	fmt.Println()
	fmt.Println("  " + cli.Muted(fmt.Sprintf("Social security base: %s. Regime effective %s.",
		mode, result.Regime.EffectiveFrom.Format(model.DateFormat))))
	fmt.Println()
	return nil
}
