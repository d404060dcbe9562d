package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lintmux/lintmux/internal/config"
	"github.com/lintmux/lintmux/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.HistoryPath(rootDir))
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tERRORS\tWARNINGS\tDUPES\tTOOLS")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				run.Errors, run.Warnings, run.Duplicates,
				strings.Join(run.Tools, ","))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
