package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/labels"
	"github.com/sells-group/demography-cli/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed-metadata",
	Short: "Replace the category label table",
	Long:  "Deletes and re-inserts metadata_table from the built-in labels or from a .csv/.xlsx file with grp_category, grp_name and grp_desc columns.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		entries := labels.DefaultEntries()
		if file != "" {
			var err error
			entries, err = labels.ReadEntriesFile(ctx, file)
			if err != nil {
				return err
			}
		}

		st, err := openMigratedStore(ctx, "seed")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.ReplaceCategories(ctx, entries); err != nil {
			return eris.Wrap(err, "seed-metadata")
		}

		counts := make(map[model.Category]int)
		for _, e := range entries {
			counts[e.Category]++
		}
		for _, c := range model.AllCategories() {
			zap.L().Info("seeded category", zap.String("category", string(c)), zap.Int("entries", counts[c]))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d category entries.\n", len(entries))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "label file (.csv or .xlsx); default is the built-in label set")
	rootCmd.AddCommand(seedCmd)
}
