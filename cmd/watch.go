package cmd

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/tui"
)

var watchProject string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live timer view (s start/stop, p pause/resume, q quit)",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "Project for timers started with s")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	projectID, err := resolveProject(a.tr, watchProject)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(a.tr, projectID), tea.WithAltScreen(), tea.WithContext(ctx))
	// Send from a goroutine: listeners also fire inside Update.
	a.tr.OnChange(func() {
		go p.Send(tui.ChangedMsg{})
	})
	a.follow(ctx)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
