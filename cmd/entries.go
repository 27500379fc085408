package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/timecalc"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var (
	editNote    string
	editProject string
	editStart   string
	editEnd     string
)

var quickCmd = &cobra.Command{
	Use:   "quick <minutes>",
	Short: "Log a finished block of minutes ending now",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuick,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change project, note, start or end of an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	editCmd.Flags().StringVar(&editNote, "note", "", "New note (empty string clears it)")
	editCmd.Flags().StringVarP(&editProject, "project", "p", "", "New project name or id (empty string clears it)")
	editCmd.Flags().StringVar(&editStart, "start", "", "New start (HH:MM, \"YYYY-MM-DD HH:MM\" or RFC 3339)")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New end (HH:MM, \"YYYY-MM-DD HH:MM\" or RFC 3339)")
}

func runQuick(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid minutes %q: %w", args[0], errUsage)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.tr.AddQuickTime(minutes)
	if err != nil {
		return fmt.Errorf("cannot add time: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s for %s.\n",
		timecalc.FormatMinutes(float64(minutes)), displayNames{a.tr}.ProjectName(e))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	e, err := resolveEntry(a.tr, args[0])
	if err != nil {
		return err
	}

	var patch tracker.EntryPatch
	flags := cmd.Flags()
	if flags.Changed("note") {
		patch.Note = &editNote
	}
	if flags.Changed("project") {
		id, err := resolveProject(a.tr, editProject)
		if err != nil {
			return err
		}
		patch.ProjectID = &id
	}
	now := a.tr.Now()
	if flags.Changed("start") {
		t, err := parseWhen(editStart, now)
		if err != nil {
			return err
		}
		patch.StartAt = &t
	}
	if flags.Changed("end") {
		t, err := parseWhen(editEnd, now)
		if err != nil {
			return err
		}
		patch.EndAt = &t
	}
	if patch == (tracker.EntryPatch{}) {
		return fmt.Errorf("nothing to change, pass --note, --project, --start or --end: %w", errUsage)
	}

	updated, err := a.tr.UpdateEntry(e.ID, patch)
	if err != nil {
		return fmt.Errorf("cannot edit: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %s (%s).\n", shortID(updated.ID),
		timecalc.FormatMinutes(timecalc.DurationMinutes(updated, now)))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	e, err := resolveEntry(a.tr, args[0])
	if err != nil {
		return err
	}
	if err := a.tr.DeleteEntry(e.ID); err != nil {
		return fmt.Errorf("cannot delete: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s.\n", shortID(e.ID))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
