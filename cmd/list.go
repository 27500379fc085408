package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/export"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

var (
	listToday bool
	listWeek  bool
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries grouped by day",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show today's entries")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show all entries")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	now := a.tr.Now()
	var from, to time.Time
	switch {
	case listAll:
	case listWeek:
		from, to = timecalc.WeekRange(now)
	default:
		// Default to today (covers --today and the bare command).
		from = timecalc.StartOfDay(now)
		to = timecalc.EndOfDay(now)
	}

	out := cmd.OutOrStdout()
	names := displayNames{a.tr}
	printed := 0
	for _, g := range a.tr.GroupByDay() {
		entries := g.Entries
		if !listAll {
			entries = nil
			for _, e := range g.Entries {
				if !e.StartAt.Before(from) && !e.StartAt.After(to) {
					entries = append(entries, e)
				}
			}
		}
		if len(entries) == 0 {
			continue
		}
		total := g.TotalMinutes
		if len(entries) != len(g.Entries) {
			total = 0
			for _, e := range entries {
				total += timecalc.DurationMinutes(e, now)
			}
		}
		fmt.Fprintf(out, "%s  (%s)\n", g.Day, timecalc.FormatMinutes(total))
		for _, r := range export.Rows(entries, names, now) {
			fmt.Fprintf(out, "  %s\n", export.Line(r))
		}
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(out, "No entries found.")
	}
	return nil
}
