package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-jha12/studytracker/internal/config"
	"github.com/Aman-jha12/studytracker/internal/tracker"
)

var (
	pruneBefore string
	pruneDays   int
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete daily totals older than a cutoff",
	Long: `Delete every daily total dated strictly before the cutoff. This is an
administrative operation; the API never deletes history.`,
	Example: `  studytracker prune --before 2024-01-01
  studytracker prune --days 365`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Cutoff date (YYYY-MM-DD); records before it are deleted")
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Keep this many days of history ending today")
	pruneCmd.MarkFlagsMutuallyExclusive("before", "days")
	pruneCmd.MarkFlagsOneRequired("before", "days")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, store, err := openForCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cutoff := pruneBefore
	if pruneDays > 0 {
		loc, err := time.LoadLocation(cfg.Tracker.Timezone)
		if err != nil {
			return fmt.Errorf("invalid tracker timezone: %w", err)
		}
		cutoff = tracker.DateOf(time.Now(), loc).AddDays(-pruneDays).String()
	} else if pruneDays < 0 {
		return fmt.Errorf("--days must be positive")
	}

	pruner := tracker.NewPruner(store.Daily(), config.ParseDuration(cfg.Storage.Timeout, 5*time.Second), cliLogger())
	deleted, err := pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d daily record(s) before %s\n", deleted, cutoff)
	return nil
}
