package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillpress/quillctl/internal/domain/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear stored credentials",
	Long: `End the current session: the stored credential slot is cleared and
the default Authorization header is dropped. Running logout when already
logged out is a no-op.`,
	RunE: withApp(runLogout),
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	wasLoggedIn := a.manager.State() == session.StateLoggedIn
	if err := a.manager.Logout(ctx); err != nil {
		return err
	}
	if wasLoggedIn {
		fmt.Println("Logged out")
	} else {
		fmt.Println("Already logged out")
	}
	return nil
}
