package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// defaultRunsLimit is how many journal entries runs shows without --limit.
const defaultRunsLimit = 10

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent directory indexing runs",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	runs, err := runService.Recent(cmd.Context(), limitOr(defaultRunsLimit))
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, r := range runs {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		cmd.Printf("%s  %-8s %s -> %s  indexed %d, skipped %d, failed %d  (%s)\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.Root, r.Collection,
			r.Processed, r.Skipped, r.Failed, finished)
	}
	return nil
}
