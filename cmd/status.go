package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current timer status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	active, ok := a.tr.ActiveEntry()
	if ok {
		if a.tr.TimerState() == model.StatePaused {
			p := active.Pauses[active.OpenPause()]
			fmt.Fprintf(out, "Paused since %s:\n", p.PauseStart.Local().Format("15:04"))
		} else {
			fmt.Fprintln(out, "Running:")
		}
		fmt.Fprintf(out, "  Project: %s\n", displayNames{a.tr}.ProjectName(active))
		if active.Note != nil {
			fmt.Fprintf(out, "  Note: %s\n", *active.Note)
		}
		fmt.Fprintf(out, "  Since: %s\n", active.StartAt.Local().Format("15:04"))
		fmt.Fprintf(out, "  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(a.tr.ElapsedSeconds()))
	} else {
		fmt.Fprintln(out, "No active timer.")
	}

	fmt.Fprintf(out, "Today: %s logged.\n", timecalc.FormatMinutes(a.tr.TodayTotalMinutes()))
	if a.rep != nil {
		fmt.Fprintf(out, "Signed in as %s (remote).\n", a.session.UserID)
	}
	return nil
}
