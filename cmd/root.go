package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/sa3aty/internal/tracker"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sa3aty",
	Short: "sa3aty – a personal time tracker with pauses and retroactive fixes",
	Long: `sa3aty tracks working time against optional projects.
Data is stored as JSON in ~/.sa3aty/ and, after ` + "`sa3aty login`" + `,
replicated to a Postgres document store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 1 for rejected input or an illegal timer action and 2 for
// everything else (storage, network).
func exitCode(err error) int {
	if errors.Is(err, tracker.ErrValidation) || tracker.IsPrecondition(err) || errors.Is(err, errUsage) {
		return 1
	}
	return 2
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(forgotCmd)
	rootCmd.AddCommand(quickCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}
