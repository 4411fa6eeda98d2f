// internal/commands/history.go
package medbench

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/medbench/internal/appconfig"
	"github.com/mwiater/medbench/internal/history"
)

var historyLimit int

// historyCmd implements 'history [suite]', which lists recent benchmark runs.
var historyCmd = &cobra.Command{
	Use:   "history [suite]",
	Short: "Show recent benchmark runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			cfg = &appconfig.Config{}
		}

		st, err := history.Open(cfg.HistoryDBPath())
		if err != nil {
			return err
		}
		defer st.Close()

		suiteName := ""
		if len(args) == 1 {
			suiteName = args[0]
		}
		runs, err := st.List(cmd.Context(), suiteName, historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Fprintf(out, "%s\n", bold(fmt.Sprintf("%-20s %-14s %-20s %6s %9s %9s %8s", "FINISHED", "SUITE", "MODEL", "TEMP", "ACCURACY", "ABSTAIN", "TPS")))
		for _, run := range runs {
			thresh := ""
			if run.Threshold != nil {
				thresh = fmt.Sprintf(" @%v", *run.Threshold)
			}
			fmt.Fprintf(out, "%-20s %-14s %-20s %6v %8.2f%% %8.2f%% %8.2f%s\n",
				run.FinishedAt.Format("2006-01-02 15:04"), run.Suite, run.Model,
				run.Temperature, run.AccuracyPct, run.RefusalPct, run.MeanTPS, thresh)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum runs to show (0 = default)")
	rootCmd.AddCommand(historyCmd)
}
