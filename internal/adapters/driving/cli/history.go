package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent extraction runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyStore == nil {
		return errors.New("run history not configured")
	}

	runs, err := historyStore.RecentRuns(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("loading run history: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		cmd.Printf("%s  %s  %s  files=%d fragments=%d errors=%d  %s\n",
			r.StartTime.Format("2006-01-02 15:04:05"), status, r.SourcePath,
			r.FileCount, r.FragmentCount, r.ErrorCount, r.RunID)
	}
	return nil
}
