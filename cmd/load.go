package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/census"
	"github.com/sells-group/demography-cli/internal/loader"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load population estimates for each configured year",
	Long:  "Extracts each vintage year from the Census API, normalizes it and appends it to the demography table. A failing year is logged and skipped.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

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

		st, err := openMigratedStore(ctx, "load")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		extractor := census.NewExtractor(census.NewFetcher(cfg.Census), cfg.Census.APIKey)
		eng := loader.NewEngine(st, extractor, loader.Options{
			BaseURL: cfg.Census.BaseURL,
			Metrics: processMetrics(),
		})

		report, err := eng.Run(ctx, vintages)
		if report != nil {
			formatLoadReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return eris.Wrap(err, "load")
		}

		if cfg.Monitoring.WebhookURL != "" {
			newChecker(st).Check(ctx)
		}

		if report.Failed > 0 {
			zap.L().Warn("some years failed to load", zap.Ints("years", report.FailedYears()))
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().String("years", "", "comma-separated years to load (default: every configured vintage)")
	rootCmd.AddCommand(loadCmd)
}

// parseYears parses a comma-separated year list. Blank input means all years.
func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, eris.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

// formatLoadReport writes one line per year plus totals to out.
func formatLoadReport(out io.Writer, r *loader.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "YEAR\tDATASET\tSTATUS\tROWS\tDURATION\tERROR")
	_, _ = fmt.Fprintln(w, "----\t-------\t------\t----\t--------\t-----")
	for _, res := range r.Results {
		errMsg := ""
		if res.Err != nil {
			errMsg = truncate(res.Err.Error(), 60)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			res.Year,
			res.Dataset,
			res.Status,
			res.Rows,
			res.Duration.Round(time.Millisecond),
			errMsg,
		)
	}
	_, _ = fmt.Fprintf(w, "\nLoaded:\t%d\n", r.Loaded)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", r.Failed)
	_, _ = fmt.Fprintf(w, "Rows:\t%d\n", r.Rows)
	_ = w.Flush()
}
