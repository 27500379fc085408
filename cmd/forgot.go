package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var (
	forgotMinutes      int
	forgotAction       string
	forgotStillWorking bool
	forgotNote         string
	forgotProject      string
)

var forgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Fix a forgotten pause, stop or start",
}

var forgotPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Record a pause that began --minutes ago and ends now",
	Args:  cobra.NoArgs,
	RunE:  runForgotPause,
}

var forgotStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active timer as of --minutes ago",
	Args:  cobra.NoArgs,
	RunE:  runForgotStop,
}

var forgotStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Add an entry that started --minutes ago",
	Args:  cobra.NoArgs,
	RunE:  runForgotStart,
}

func init() {
	forgotPauseCmd.Flags().IntVarP(&forgotMinutes, "minutes", "m", 0, "How many minutes ago the pause began")
	forgotPauseCmd.Flags().StringVar(&forgotAction, "action", string(tracker.FixResume), "After the pause: end or resume")
	_ = forgotPauseCmd.MarkFlagRequired("minutes")

	forgotStopCmd.Flags().IntVarP(&forgotMinutes, "minutes", "m", 0, "How many minutes ago work stopped")
	_ = forgotStopCmd.MarkFlagRequired("minutes")

	forgotStartCmd.Flags().IntVarP(&forgotMinutes, "minutes", "m", 0, "How many minutes ago work started")
	forgotStartCmd.Flags().BoolVar(&forgotStillWorking, "still-working", false, "Leave the entry running")
	forgotStartCmd.Flags().StringVar(&forgotNote, "note", "", "Optional note")
	forgotStartCmd.Flags().StringVarP(&forgotProject, "project", "p", "", "Project name or id")
	_ = forgotStartCmd.MarkFlagRequired("minutes")

	forgotCmd.AddCommand(forgotPauseCmd, forgotStopCmd, forgotStartCmd)
}

func runForgotPause(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.tr.FixForgotPause(forgotMinutes, tracker.FixAction(forgotAction))
	if err != nil {
		return fmt.Errorf("cannot fix pause: %w", err)
	}
	now := a.tr.Now()
	if e.EndAt != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %dm pause and stopped. Worked: %s\n",
			forgotMinutes, timecalc.FormatMinutes(timecalc.DurationMinutes(e, now)))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %dm pause; timer keeps running. Elapsed: %s\n",
		forgotMinutes, timecalc.FormatElapsed(timecalc.ElapsedSeconds(e, now)))
	return nil
}

func runForgotStop(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.tr.FixForgotStop(forgotMinutes)
	if err != nil {
		return fmt.Errorf("cannot fix stop: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s as of %s. Worked: %s\n",
		displayNames{a.tr}.ProjectName(e), e.EndAt.Local().Format("15:04"),
		timecalc.FormatMinutes(timecalc.DurationMinutes(e, a.tr.Now())))
	return nil
}

func runForgotStart(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if forgotMinutes <= 0 {
		return fmt.Errorf("--minutes must be positive: %w", errUsage)
	}
	projectID, err := resolveProject(a.tr, forgotProject)
	if err != nil {
		return err
	}

	now := a.tr.Now()
	start, err := tracker.MinutesBefore(now, forgotMinutes)
	if err != nil {
		return err
	}
	var end *time.Time
	if !forgotStillWorking {
		end = model.TimePtr(now)
	}
	e, err := a.tr.AddRetroEntry(projectID, start, end, forgotNote)
	if err != nil {
		return fmt.Errorf("cannot add entry: %w", err)
	}
	if e.EndAt == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Timer running since %s.\n", start.Format("15:04"))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s entry %s–%s.\n",
		displayNames{a.tr}.ProjectName(e), start.Format("15:04"), now.Format("15:04"))
	return nil
}
