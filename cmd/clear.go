package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/store"
)

var flagClearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every record and reset the profile",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(_ *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		n, err := st.Count()
		if err != nil {
			return err
		}

		if !flagClearYes && !confirm(fmt.Sprintf("This deletes %s records and resets the profile.", formatNumber(int64(n)))) {
			fmt.Println("  Aborted.")
			return nil
		}

		if err := st.Clear(); err != nil {
			return err
		}
		info("Cleared %s records.", formatNumber(int64(n)))
		return nil
	})
}

// confirm asks a yes/no question on stdin. Anything but y or yes is no.
func confirm(question string) bool {
	fmt.Printf("  %s Continue? [y/N] ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}
