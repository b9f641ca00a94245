package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/demography-cli/internal/census"
)

var vintagesCmd = &cobra.Command{
	Use:   "vintages",
	Short: "Print the year to dataset table as YAML",
	Long:  "Prints the effective vintage table (built-in entries overlaid with census.vintages from config). The output can be pasted into config.yaml as a starting point.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		yearsFlag, _ := cmd.Flags().GetString("years")
		years, err := parseYears(yearsFlag)
		if err != nil {
			return err
		}

		vintages, err := census.VintagesFromConfig(cfg.Census.Vintages)
		if err != nil {
			return err
		}
		vintages, err = census.SelectYears(vintages, years)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]census.Vintage{"vintages": vintages}); err != nil {
			return eris.Wrap(err, "encode vintages")
		}
		return eris.Wrap(enc.Close(), "encode vintages")
	},
}

func init() {
	vintagesCmd.Flags().String("years", "", "comma-separated years to print (default: all)")
	rootCmd.AddCommand(vintagesCmd)
}
