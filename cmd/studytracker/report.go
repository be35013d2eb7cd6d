package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Aman-jha12/studytracker/internal/storage"
	"github.com/Aman-jha12/studytracker/internal/telemetry"
)

const reportBarWidth = 40

var (
	reportTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")).
				Bold(true)

	reportDateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	reportBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69"))

	reportTodayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	reportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the last seven days as a bar chart",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	report, err := service.WeeklyReport(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
	return nil
}

// renderReport draws one bar per day scaled to the busiest day; the last
// entry is highlighted as today.
func renderReport(report []storage.DailyRecord) string {
	var peak, total int64
	for _, rec := range report {
		total += rec.TotalSeconds
		if rec.TotalSeconds > peak {
			peak = rec.TotalSeconds
		}
	}

	lines := make([]string, 0, len(report)+2)
	lines = append(lines, reportTitleStyle.Render("Weekly study report"))

	for i, rec := range report {
		width := 0
		if peak > 0 {
			width = int(rec.TotalSeconds * reportBarWidth / peak)
		}
		if width == 0 && rec.TotalSeconds > 0 {
			width = 1
		}

		bar := strings.Repeat("█", width) + strings.Repeat(" ", reportBarWidth-width)
		style := reportBarStyle
		if i == len(report)-1 {
			style = reportTodayStyle
		}

		lines = append(lines, fmt.Sprintf("%s %s %s",
			reportDateStyle.Render(weekdayLabel(rec.Date)),
			style.Render(bar),
			formatSeconds(rec.TotalSeconds),
		))
	}

	lines = append(lines, reportDateStyle.Render("Total: "+formatSeconds(total)))

	return reportBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// weekdayLabel renders "2024-03-10" as "Sun 03-10"
func weekdayLabel(date string) string {
	t, err := time.Parse(storage.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon 01-02")
}
