package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/export"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day, YYYY-MM-DD (default: start of this week)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day, YYYY-MM-DD (default: end of this week)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	now := a.tr.Now()
	from, to, err := timecalc.ParseRange(exportFrom, exportTo, now)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}

	entries := a.tr.EntriesInRange(from, to)
	names := displayNames{a.tr}
	out := cmd.OutOrStdout()

	switch exportFormat {
	case "json":
		return export.JSON(out, entries, names, now)
	case "md":
		return export.List(out, entries, names, now)
	case "csv":
		return export.CSV(out, entries, names, now)
	default:
		return fmt.Errorf("unknown format %q: %w", exportFormat, errUsage)
	}
}
