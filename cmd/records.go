package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/store"
)

var (
	flagAddAmount   string
	flagAddDesc     string
	flagAddDate     string
	flagAddKind     string
	flagAddCurrency string

	flagListMonth  string
	flagListYear   int
	flagListAll    bool
	flagListSearch string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an income record",
	Example: `  danak add --amount 1200 --desc "Invoice 42"
  danak add --amount 2500,50 --currency BGN --date 2026-03-01 --desc "Consulting"`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List records for a month, a year, or all time",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a record by id",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	addCmd.Flags().StringVar(&flagAddAmount, "amount", "", "Amount, a decimal comma is accepted")
	addCmd.Flags().StringVar(&flagAddDesc, "desc", "", "Description")
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Record date YYYY-MM-DD (default: reference date)")
	addCmd.Flags().StringVar(&flagAddKind, "kind", "income", "Record kind: income or expense")
	addCmd.Flags().StringVar(&flagAddCurrency, "currency", "", "Currency of --amount: EUR or BGN (default: display currency)")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("desc")

	listCmd.Flags().StringVar(&flagListMonth, "month", "", "Month YYYY-MM (default: reference month)")
	listCmd.Flags().IntVarP(&flagListYear, "year", "y", 0, "Whole year")
	listCmd.Flags().BoolVar(&flagListAll, "all", false, "Every record")
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Case-insensitive description filter")
	listCmd.MarkFlagsMutuallyExclusive("month", "year", "all")

	rootCmd.AddCommand(addCmd, listCmd, deleteCmd)
}

// parseAmount parses a non-negative amount, accepting a decimal comma.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return d, nil
}

// buildRecord turns the add flags into a storage-currency record.
func buildRecord(amount, desc, date, kind, cur string, ref time.Time) (model.NewRecord, error) {
	var nr model.NewRecord

	value, err := parseAmount(amount)
	if err != nil {
		return nr, err
	}
	c := displayCurrency()
	if cur != "" {
		if c, err = currency.Parse(cur); err != nil {
			return nr, err
		}
	}
	k, err := model.ParseKind(kind)
	if err != nil {
		return nr, err
	}
	d := ref
	if date != "" {
		if d, err = model.ParseDate(date); err != nil {
			return nr, err
		}
	}

	return model.NewRecord{
		Date:        d,
		Amount:      currency.ToStorage(value, c),
		Description: strings.TrimSpace(desc),
		Kind:        k,
	}, nil
}

func runAdd(_ *cobra.Command, _ []string) error {
	ref, err := refDate()
	if err != nil {
		return err
	}
	nr, err := buildRecord(flagAddAmount, flagAddDesc, flagAddDate, flagAddKind, flagAddCurrency, ref)
	if err != nil {
		return err
	}

	return withStore(func(st *store.Store) error {
		rec, err := st.Add(nr)
		if err != nil {
			return err
		}
		info("Added %s  %s  %s  (%s)",
			rec.Date.Format(model.DateFormat),
			cli.FormatMoney(rec.Amount, displayCurrency()),
			rec.Description,
			rec.ID)
		return nil
	})
}

// listPeriod resolves the list flags to a period.
func listPeriod(ref time.Time) (pipeline.Period, error) {
	switch {
	case flagListAll:
		return pipeline.Period{}, nil
	case flagListYear != 0:
		return pipeline.Period{Year: flagListYear}, nil
	case flagListMonth != "":
		p, err := pipeline.ParsePeriod(flagListMonth)
		if err != nil {
			return p, err
		}
		if p.Month == 0 {
			return p, fmt.Errorf("invalid month %q (want YYYY-MM)", flagListMonth)
		}
		return p, nil
	default:
		return pipeline.MonthOf(ref), nil
	}
}

func runList(_ *cobra.Command, _ []string) error {
	ref, err := refDate()
	if err != nil {
		return err
	}
	period, err := listPeriod(ref)
	if err != nil {
		return err
	}

	var records []model.Record
	if err := withStore(func(st *store.Store) error {
		records, err = st.Records()
		return err
	}); err != nil {
		return err
	}
	records = pipeline.FilterBySearch(period.Filter(records), flagListSearch)

	cur := displayCurrency()
	title := period.Label()
	if flagListSearch != "" {
		title += fmt.Sprintf("  matching %q", flagListSearch)
	}

	fmt.Println()
	if len(records) == 0 {
		fmt.Printf("  No records for %s.\n\n", title)
		return nil
	}

	rows := make([][]string, 0, len(records)+2)
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format(model.DateFormat),
			r.Description,
			string(r.Kind),
			cli.FormatMoney(r.Amount, cur),
			r.ID,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", formatNumber(int64(len(records))) + " records", "",
		cli.FormatMoney(pipeline.SumAmounts(records), cur), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:    title,
		Headers:  []string{"Date", "Description", "Kind", "Amount", "ID"},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Println()
	return nil
}

func runDelete(_ *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	return withStore(func(st *store.Store) error {
		if err := st.Delete(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no record with id %s", id)
			}
			return err
		}
		info("Deleted %s", id)
		return nil
	})
}
