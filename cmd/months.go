package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/model"
)

var flagMonthsYear int

var monthsCmd = &cobra.Command{
	Use:   "months",
	Short: "Month-by-month tax breakdown for a year",
	RunE:  runMonths,
}

func init() {
	monthsCmd.Flags().IntVarP(&flagMonthsYear, "year", "y", 0, "Year to break down (default: reference year)")
	rootCmd.AddCommand(monthsCmd)
}

func runMonths(_ *cobra.Command, _ []string) error {
	ref, err := refDate()
	if err != nil {
		return err
	}
	if flagMonthsYear != 0 {
		ref = time.Date(flagMonthsYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	result, err := loadData(ref)
	if err != nil {
		return err
	}
	cur := displayCurrency()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY BREAKDOWN  %d  (%s)", ref.Year(), cur)))
	fmt.Println()

	money := func(v model.TaxSummary) []string {
		return []string{
			cli.FormatAmount(currencyAmount(v.TotalIncome)),
			cli.FormatAmount(currencyAmount(v.SocialSecurity)),
			cli.FormatAmount(currencyAmount(v.IncomeTax)),
			cli.FormatAmount(currencyAmount(v.NetIncome)),
		}
	}

	rows := make([][]string, 0, len(result.Months)+2)
	var incomes []float64
	for _, m := range result.Months {
		s := m.Summary
		vat := cli.FormatPercent(s.VATProgressPercent)
		if s.OverVATWarning(vatWarnAt) {
			vat = cli.Warn(vat)
		}
		row := append([]string{cli.FormatMonth(m.Month), cli.FormatNumber(int64(m.Records))}, money(s)...)
		rows = append(rows, append(row, vat))
		incomes = append(incomes, currencyAmount(s.TotalIncome).InexactFloat64())
	}

	tot := result.Totals
	rows = append(rows, []string{"---"})
	totRow := append([]string{"Total", cli.FormatNumber(int64(tot.YearRecords))}, money(tot)...)
	rows = append(rows, append(totRow, cli.FormatPercent(tot.VATProgressPercent)))

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Recs", "Income", "Soc. sec.", "Tax", "Net", "VAT"},
		Rows:    rows,
	}))

	if tot.YearRecords > 0 {
		fmt.Println()
		fmt.Printf("  Income trend  %s\n", cli.RenderSparkline(incomes))
	}
	fmt.Println()
	return nil
}
