package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	Args:  cobra.NoArgs,
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused timer",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active timer",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runPause(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.tr.Pause(); err != nil {
		return fmt.Errorf("cannot pause: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Paused at %s. Elapsed: %s\n",
		a.tr.Now().Format("15:04:05"), timecalc.FormatElapsed(a.tr.ElapsedSeconds()))
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.tr.Resume(); err != nil {
		return fmt.Errorf("cannot resume: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resumed at %s.\n", a.tr.Now().Format("15:04:05"))
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	elapsed := a.tr.ElapsedSeconds()
	e, err := a.tr.Stop()
	if err != nil {
		return fmt.Errorf("cannot stop: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped timer for %s. Elapsed: %s\n",
		displayNames{a.tr}.ProjectName(e), timecalc.FormatElapsed(elapsed))
	return nil
}
