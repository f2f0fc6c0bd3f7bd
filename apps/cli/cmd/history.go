package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/abdul-hamid-achik/hitdesk/packages/stats"
	"github.com/spf13/cobra"
)

var (
	historyLimitFlag      int
	historyPrometheusFlag bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show sent requests",
	Long: `Show, clear and summarize the requests recorded by send.

Examples:
  hitdesk history list --limit 10
  hitdesk history stats
  hitdesk history stats --prometheus
  hitdesk history clear`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests, newest first",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			entries, err := store.History(historyLimit())
			if err != nil {
				return err
			}
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			return formatter.FormatHistory(entries)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			if err := store.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize latency of recent requests",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			entries, err := store.History(historyLimit())
			if err != nil {
				return err
			}
			report := stats.FromHistory(entries)

			if historyPrometheusFlag {
				return stats.WritePrometheus(cmd.OutOrStdout(), report)
			}
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			return formatter.FormatStats(report)
		})
	},
}

// historyLimit returns --limit when set, else the configured limit.
func historyLimit() int {
	if historyLimitFlag > 0 {
		return historyLimitFlag
	}
	return cfg.HistoryLimit
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 0, "Number of entries (default: historyLimit from config)")
	historyStatsCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 0, "Number of recent entries to summarize (default: historyLimit from config)")
	historyStatsCmd.Flags().BoolVar(&historyPrometheusFlag, "prometheus", false, "Write the summary in Prometheus text format")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
