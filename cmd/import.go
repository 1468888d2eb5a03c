package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/logger"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/source"
	"github.com/theirongolddev/danak/internal/store"
)

var (
	flagImportCurrency string
	flagImportYes      bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Import CSV revenue records or restore a YAML backup",
	Long: "CSV files hold date,description,amount[,kind] rows and are appended.\n" +
		"A YAML backup replaces every record and the profile.\n" +
		"A directory is scanned for both kinds of file.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagImportCurrency, "csv-currency", "EUR", "Currency of CSV amounts: EUR or BGN")
	importCmd.Flags().BoolVarP(&flagImportYes, "yes", "y", false, "Restore backups without asking")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	files, err := source.Discover(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("  No CSV or YAML files found in %s\n", args[0])
		return nil
	}
	cur, err := currency.Parse(flagImportCurrency)
	if err != nil {
		return err
	}

	log := logger.WithComponent("import")
	return withStore(func(st *store.Store) error {
		added := 0
		for _, f := range files {
			log.Debug().Str("path", f.Path).Str("format", string(f.Format)).Msg("importing")
			switch f.Format {
			case source.FormatCSV:
				n, err := importCSV(st, f.Path, cur)
				if err != nil {
					return fmt.Errorf("%s: %w", f.Path, err)
				}
				added += n
				info("%s: %s records", f.Path, formatNumber(int64(n)))
			case source.FormatYAML:
				n, err := restoreBackup(st, f.Path)
				if err != nil {
					return fmt.Errorf("%s: %w", f.Path, err)
				}
				if n >= 0 {
					info("%s: restored %s records", f.Path, formatNumber(int64(n)))
				}
			}
		}
		if added > 0 {
			info("Imported %s records.", formatNumber(int64(added)))
		}
		return nil
	})
}

// importCSV parses the whole file before adding anything, so a malformed
// row leaves the store untouched.
func importCSV(st *store.Store, path string, cur currency.Currency) (int, error) {
	f, err := os.Open(path) //nolint:gosec // path is given by the local user
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	recs, err := source.ParseCSV(f, cur)
	if err != nil {
		return 0, err
	}
	for i, nr := range recs {
		if _, err := st.Add(nr); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// restoreBackup replaces the store with the backup at path. It returns -1
// when the user declines.
func restoreBackup(st *store.Store, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // path is given by the local user
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	var snap model.Snapshot
	if snap, err = source.ReadBackup(f); err != nil {
		return 0, err
	}
	if !flagImportYes && !confirm(fmt.Sprintf("Restoring %s replaces all records with %s from the backup.",
		path, formatNumber(int64(len(snap.Records))))) {
		return -1, nil
	}
	if err := st.Replace(snap); err != nil {
		return 0, err
	}
	return len(snap.Records), nil
}
