package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/demography-cli/internal/model"
	"github.com/sells-group/demography-cli/internal/monitoring"
	"github.com/sells-group/demography-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the load log",
	Long:  "Displays per-year load history, newest first. --summary adds totals over the monitoring window; --alert sends any triggered alerts to the configured webhook.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		year, _ := cmd.Flags().GetInt("year")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		summary, _ := cmd.Flags().GetBool("summary")
		alert, _ := cmd.Flags().GetBool("alert")

		st, err := openMigratedStore(ctx, "status")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		entries, err := st.ListLoads(ctx, store.LoadFilter{
			Year:   year,
			Status: model.LoadStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(entries) == 0 {
			_, _ = fmt.Fprintln(out, "No loads found, run 'demography load' to load population estimates.")
		} else {
			formatLoadEntries(out, entries)
		}

		if summary {
			collector := monitoring.NewCollector(st, nil, time.Duration(cfg.Monitoring.StaleAfterMins)*time.Minute)
			snap, err := collector.Collect(ctx, cfg.Monitoring.LookbackWindowHours)
			if err != nil {
				return eris.Wrap(err, "status summary")
			}
			_, _ = fmt.Fprintln(out)
			formatSnapshot(out, snap)
		}

		if alert {
			sent := newChecker(st).Check(ctx)
			_, _ = fmt.Fprintf(out, "\nAlerts sent: %d\n", sent)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("year", 0, "only show loads for this year")
	statusCmd.Flags().String("status", "", "filter by status (running, complete, failed)")
	statusCmd.Flags().Int("limit", 50, "max number of loads to display")
	statusCmd.Flags().Bool("summary", false, "print totals over the monitoring lookback window")
	statusCmd.Flags().Bool("alert", false, "send triggered alerts to monitoring.webhook_url")
	rootCmd.AddCommand(statusCmd)
}

// formatLoadEntries writes a tabular representation of load log entries to w.
func formatLoadEntries(out io.Writer, entries []model.LoadEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tYEAR\tDATASET\tSTATUS\tSTARTED\tDURATION\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t------\t-------\t--------\t----\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			truncateID(e.ID),
			e.Year,
			e.Dataset,
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.Rows,
			truncate(e.Error, 60),
		)
	}
	_ = w.Flush()
}

// formatSnapshot writes load-log totals to w.
func formatSnapshot(out io.Writer, s *monitoring.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window:\tlast %dh\n", s.LookbackHours)
	_, _ = fmt.Fprintf(w, "Total loads:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "Running:\t%d\n", s.Running)
	if s.StaleRunning > 0 {
		_, _ = fmt.Fprintf(w, "  Stale:\t%d\n", s.StaleRunning)
	}
	_, _ = fmt.Fprintf(w, "Rows loaded:\t%d\n", s.RowsLoaded)
	if len(s.FailedYears) > 0 {
		_, _ = fmt.Fprintf(w, "Failed years:\t%v\n", s.FailedYears)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
