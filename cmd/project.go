package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var (
	projectColor string
	projectRate  string
	projectAll   bool
	projectUndo  bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name|id>",
	Short: "Delete a project; its entries keep no project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <name|id>",
	Short: "Hide a project from selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectArchive,
}

func init() {
	projectAddCmd.Flags().StringVar(&projectColor, "color", "", "Color as #RRGGBB (default: next palette color)")
	projectAddCmd.Flags().StringVar(&projectRate, "rate", "", "Hourly rate")
	projectListCmd.Flags().BoolVar(&projectAll, "all", false, "Include archived projects")
	projectArchiveCmd.Flags().BoolVar(&projectUndo, "undo", false, "Unarchive instead")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectDeleteCmd, projectArchiveCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	var rate *float64
	if projectRate != "" {
		v, err := strconv.ParseFloat(projectRate, 64)
		if err != nil {
			return fmt.Errorf("invalid rate %q: %w", projectRate, errUsage)
		}
		rate = &v
	}
	color := projectColor
	if color == "" {
		color = tracker.DefaultColors[len(a.tr.Projects())%len(tracker.DefaultColors)]
	}

	p, err := a.tr.AddProject(args[0], color, rate)
	if err != nil {
		return fmt.Errorf("cannot add project: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s).\n", p.Name, shortID(p.ID))
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	projects := a.tr.ActiveProjects()
	if projectAll {
		projects = a.tr.Projects()
	}
	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects.")
		return nil
	}
	for _, p := range projects {
		line := fmt.Sprintf("%-8s  %-20s %s", shortID(p.ID), p.Name, p.Color)
		if p.Rate != nil {
			line += fmt.Sprintf("  %.2f/h", *p.Rate)
		}
		if p.Archived {
			line += "  (archived)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	p, ok := a.tr.FindProject(args[0])
	if !ok {
		return fmt.Errorf("project %q: %w", args[0], tracker.ErrProjectNotFound)
	}
	if err := a.tr.DeleteProject(p.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %q.\n", p.Name)
	return nil
}

func runProjectArchive(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	p, ok := a.tr.FindProject(args[0])
	if !ok {
		return fmt.Errorf("project %q: %w", args[0], tracker.ErrProjectNotFound)
	}
	p, err = a.tr.ArchiveProject(p.ID, !projectUndo)
	if err != nil {
		return err
	}
	state := "Archived"
	if !p.Archived {
		state = "Unarchived"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s project %q.\n", state, p.Name)
	return nil
}
