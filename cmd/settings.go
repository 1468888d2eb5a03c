package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/store"
)

var (
	flagSetName            string
	flagSetEIC             string
	flagSetSelfInsured     bool
	flagSetInsuranceIncome string
	flagSetBankDetails     bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update the taxpayer profile",
	Long: "Without flags, prints the stored profile. Any flag given is saved;\n" +
		"the rest of the profile is left as it is.",
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	f := settingsCmd.Flags()
	f.StringVar(&flagSetName, "name", "", "Full name")
	f.StringVar(&flagSetEIC, "eic", "", "Unified identification code (EIC)")
	f.BoolVar(&flagSetSelfInsured, "self-insured", true, "Pay social security as a self-insured person")
	f.StringVar(&flagSetInsuranceIncome, "insurance-income", "", "Elected monthly insurance income (EUR)")
	f.BoolVar(&flagSetBankDetails, "bank-details", false, "Use personal bank details on documents")
	rootCmd.AddCommand(settingsCmd)
}

// settingsPatch builds a patch from the flags the user actually set.
func settingsPatch(cmd *cobra.Command) (model.SettingsPatch, error) {
	var p model.SettingsPatch
	f := cmd.Flags()
	if f.Changed("name") {
		p.Name = &flagSetName
	}
	if f.Changed("eic") {
		p.EIC = &flagSetEIC
	}
	if f.Changed("self-insured") {
		p.SelfInsured = &flagSetSelfInsured
	}
	if f.Changed("insurance-income") {
		v, err := parseAmount(flagSetInsuranceIncome)
		if err != nil {
			return p, fmt.Errorf("insurance income: %w", err)
		}
		p.InsuranceIncome = &v
	}
	if f.Changed("bank-details") {
		p.UsePersonalBankDetails = &flagSetBankDetails
	}
	return p, nil
}

func runSettings(cmd *cobra.Command, _ []string) error {
	patch, err := settingsPatch(cmd)
	if err != nil {
		return err
	}

	return withStore(func(st *store.Store) error {
		var s model.Settings
		var err error
		if patch.IsEmpty() {
			s, err = st.Settings()
		} else {
			s, err = st.UpdateSettings(patch)
		}
		if err != nil {
			return err
		}
		if !patch.IsEmpty() {
			info("Settings saved.")
		}
		printSettings(s)
		return nil
	})
}

func printSettings(s model.Settings) {
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Profile",
		Headers: []string{"Setting", "Value"},
		Rows: [][]string{
			{"Name", orNotSet(s.Name)},
			{"EIC", orNotSet(s.EIC)},
			{"Self-insured", fmt.Sprint(s.SelfInsured)},
			{"Insurance income", cli.FormatMoney(s.InsuranceIncome, displayCurrency())},
			{"Personal bank details", fmt.Sprint(s.UsePersonalBankDetails)},
		},
	}))
	fmt.Println()
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
