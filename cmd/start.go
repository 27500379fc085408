package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startProject string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new timer",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startProject, "project", "p", "", "Project name or id")
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	projectID, err := resolveProject(a.tr, startProject)
	if err != nil {
		return err
	}
	e, err := a.tr.Start(projectID)
	if err != nil {
		return fmt.Errorf("cannot start: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started timer for %s at %s\n",
		displayNames{a.tr}.ProjectName(e), e.StartAt.Local().Format("15:04:05"))
	return nil
}
