package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/metrics"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/report"
	"github.com/theirongolddev/danak/internal/source"
	"github.com/theirongolddev/danak/internal/store"
)

var (
	flagExportFormat string
	flagExportYear   int
	flagExportMonth  int
	flagExportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a revenue report or a full backup",
	Long: "Formats:\n" +
		"  pdf   revenue report for the period\n" +
		"  xlsx  revenue report with a monthly tax sheet for yearly periods\n" +
		"  csv   records of the period, amounts in EUR\n" +
		"  yaml  full backup of records and profile (ignores the period)\n\n" +
		"Without --year or --month every record is included. Use -o - for stdout.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "pdf", "pdf, xlsx, csv, or yaml")
	exportCmd.Flags().IntVarP(&flagExportYear, "year", "y", 0, "Year to export")
	exportCmd.Flags().IntVarP(&flagExportMonth, "month", "m", 0, "Month 1-12 to export (uses --year or the reference year)")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Output file (default: generated name in the current directory)")
	rootCmd.AddCommand(exportCmd)
}

// exportPeriod resolves --year and --month against the reference date.
func exportPeriod(ref time.Time) (pipeline.Period, error) {
	p := pipeline.Period{Year: flagExportYear}
	if flagExportMonth != 0 {
		if flagExportMonth < 1 || flagExportMonth > 12 {
			return p, fmt.Errorf("invalid month %d (want 1-12)", flagExportMonth)
		}
		if p.Year == 0 {
			p.Year = ref.Year()
		}
		p.Month = time.Month(flagExportMonth)
	}
	return p, nil
}

func runExport(_ *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(flagExportFormat))
	ref, err := refDate()
	if err != nil {
		return err
	}
	period, err := exportPeriod(ref)
	if err != nil {
		return err
	}

	var snap model.Snapshot
	if err := withStore(func(st *store.Store) error {
		snap, err = st.Snapshot()
		return err
	}); err != nil {
		return err
	}

	now := time.Now()
	data, err := renderExport(format, snap, period, now)
	if err != nil {
		return err
	}

	out := flagExportOutput
	if out == "" {
		out = defaultExportName(format, period, now)
	}
	if out == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	metrics.IncExport(format)
	info("Wrote %s (%s)", out, period.Label())
	return nil
}

// renderExport encodes snap in format.
func renderExport(format string, snap model.Snapshot, period pipeline.Period, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "pdf", "xlsx":
		doc := report.BuildDocument(snap, period, now)
		if period.Year != 0 && period.Month == 0 {
			regime, err := appCfg.RegimeAt(time.Date(period.Year, time.December, 31, 0, 0, 0, 0, time.UTC))
			if err != nil {
				return nil, err
			}
			doc = doc.WithBreakdown(pipeline.NewEngine(regime, appCfg.General.BaseMode), snap)
		}
		if format == "pdf" {
			return report.PDF(doc)
		}
		return report.XLSX(doc)
	case "csv":
		if err := source.WriteCSV(&buf, period.Filter(snap.Records)); err != nil {
			return nil, fmt.Errorf("writing csv: %w", err)
		}
	case "yaml", "yml":
		if err := source.WriteBackup(&buf, snap, now); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q (want pdf, xlsx, csv, or yaml)", format)
	}
	return buf.Bytes(), nil
}

func defaultExportName(format string, period pipeline.Period, now time.Time) string {
	if format == "yaml" || format == "yml" {
		return "danak-backup-" + now.Format(model.DateFormat) + ".yaml"
	}
	label := "all"
	if !period.IsAll() {
		label = period.Label()
	}
	return "danak-report-" + label + "." + format
}
