package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-jha12/studytracker/internal/telemetry"
)

var recordCmd = &cobra.Command{
	Use:   "record DATE SECONDS",
	Short: "Add a study session to a day",
	Long:  `Add SECONDS of study time to DATE (YYYY-MM-DD) and print the new daily total.`,
	Example: `  studytracker record 2024-03-10 1800
  studytracker -c config.yaml record 2024-03-11 300`,
	Args: cobra.ExactArgs(2),
	RunE: runRecord,
}

var totalCmd = &cobra.Command{
	Use:     "total DATE",
	Short:   "Show the accumulated total for a day",
	Example: `  studytracker total 2024-03-10`,
	Args:    cobra.ExactArgs(1),
	RunE:    runTotal,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(totalCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid seconds %q: must be a number", args[1])
	}

	ctx := context.Background()
	cfg, store, err := openForCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	service, err := newService(cfg, store, telemetry.NewNoOpExporter(), cliLogger())
	if err != nil {
		return err
	}

	record, err := service.RecordSession(ctx, args[0], seconds)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%d seconds)\n", record.Date, formatSeconds(record.TotalSeconds), record.TotalSeconds)
	return nil
}

func runTotal(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, store, err := openForCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	service, err := newService(cfg, store, telemetry.NewNoOpExporter(), cliLogger())
	if err != nil {
		return err
	}

	record, err := service.GetTotal(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%d seconds)\n", record.Date, formatSeconds(record.TotalSeconds), record.TotalSeconds)
	return nil
}

// formatSeconds renders a total as "1h 05m", "12m 30s" or "45s"
func formatSeconds(total int64) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
