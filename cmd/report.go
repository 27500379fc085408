package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/timecalc"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var (
	reportWeek   bool
	reportFrom   string
	reportTo     string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time per project",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for this week (default)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type reportJSON struct {
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	Projects     []tracker.ProjectTotal `json:"projects"`
	TotalMinutes float64                `json:"totalMinutes"`
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	now := a.tr.Now()
	from, to, err := timecalc.ParseRange(reportFrom, reportTo, now)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}

	totals := a.tr.ProjectTotals(from, to)
	var grandTotal float64
	for i := range totals {
		if totals[i].ProjectID == "" {
			totals[i].Name = "(no project)"
		}
		grandTotal += totals[i].Minutes
	}

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "csv":
		fmt.Fprintln(out, "project,duration_minutes,amount")
		for _, t := range totals {
			amount := ""
			if t.Amount != nil {
				amount = fmt.Sprintf("%.2f", *t.Amount)
			}
			fmt.Fprintf(out, "%s,%.0f,%s\n", t.Name, t.Minutes, amount)
		}
	case "json":
		data, err := json.MarshalIndent(reportJSON{
			From:         from.Format("2006-01-02"),
			To:           to.Format("2006-01-02"),
			Projects:     totals,
			TotalMinutes: grandTotal,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default: // md
		if reportFrom == "" && reportTo == "" {
			fmt.Fprintf(out, "Week %s\n", timecalc.ISOWeekLabel(now))
		} else {
			fmt.Fprintf(out, "%s – %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
		}
		fmt.Fprintln(out, "--------------------------------")
		for _, t := range totals {
			line := fmt.Sprintf("%-20s%s", t.Name, timecalc.FormatMinutes(t.Minutes))
			if t.Amount != nil {
				line += fmt.Sprintf("  %.2f", *t.Amount)
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintf(out, "%-20s%s\n", "Total", timecalc.FormatMinutes(grandTotal))
	}

	return nil
}
