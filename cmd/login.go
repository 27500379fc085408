package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/auth"
	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/replication"
	"github.com/Tiliavir/sa3aty/internal/storage"
)

var (
	syncForce bool
	syncOnce  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and replicate local data to the remote store",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out; local data is used again",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local data to the remote store and follow remote changes",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Push local data even if it was migrated before")
	syncCmd.Flags().BoolVar(&syncOnce, "once", false, "Exit after pushing instead of following changes")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.auth.Login(cmd.Context())
	if errors.Is(err, auth.ErrNotConfigured) {
		return fmt.Errorf("set auth.client_id, device_auth_url, token_url and userinfo_url in the config: %w", errUsage)
	}
	if err != nil {
		return err
	}
	a.session = session
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", session.UserID)

	if a.cfg.Remote.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "Warning: remote.database_url is not set; data stays local.")
		return nil
	}
	return migrate(cmd, a, false)
}

// migrate pushes the local snapshot once per user, or again when forced.
func migrate(cmd *cobra.Command, a *app, force bool) error {
	if a.rep == nil {
		if err := a.connect(cmd.Context()); err != nil {
			return err
		}
	}
	projects, entries := storage.LoadSnapshot(a.kv, a.logger)
	res, err := a.rep.Migrate(cmd.Context(), a.kv, a.session.UserID, force, projects, entries)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	printMigration(cmd, res)
	return nil
}

func printMigration(cmd *cobra.Command, res replication.MigrationResult) {
	if res.Skipped {
		fmt.Fprintln(cmd.OutOrStdout(), "Local data was already migrated.")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d projects and %d entries.\n", res.Projects, res.Entries)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.connect(cmd.Context()); err != nil {
		return err
	}
	if err := migrate(cmd, a, syncForce); err != nil {
		return err
	}
	if syncOnce {
		return nil
	}

	sink := &mirrorSink{a: a, cmd: cmd}
	fmt.Fprintln(cmd.OutOrStdout(), "Following remote changes, Ctrl-C to stop.")
	return a.rep.Follow(cmd.Context(), sink)
}

// mirrorSink keeps the local snapshot files equal to the remote collections,
// so the data is still there after logout.
type mirrorSink struct {
	a   *app
	cmd *cobra.Command
}

func (s *mirrorSink) ReplaceAll(projects []model.Project, entries []model.TimeEntry) {
	if err := storage.SaveProjects(s.a.kv, projects); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := storage.SaveEntries(s.a.kv, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	fmt.Fprintf(s.cmd.OutOrStdout(), "Remote: %d projects, %d entries.\n", len(projects), len(entries))
}
