package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillpress/quillctl/internal/domain/token"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and expiry",
	RunE:  withApp(runStatus),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(ctx context.Context, a *app, _ []string) error {
	fmt.Printf("State:    %s\n", a.manager.State())
	fmt.Printf("Backend:  %s (%s)\n", a.cfg.Credentials.Backend, a.cfg.Credentials.Path)
	fmt.Printf("API:      %s\n", a.cfg.API.BaseURL)

	sess := a.manager.Current()
	if sess == nil {
		return nil
	}

	claims, err := token.Decode(sess.Token)
	if err != nil {
		fmt.Printf("Token:    undecodable (%v)\n", err)
		return nil
	}
	remaining := time.Until(claims.ExpiresAt).Truncate(time.Second)
	fmt.Printf("Expires:  %s (in %s)\n", claims.ExpiresAt.Format(time.RFC3339), remaining)
	fmt.Printf("Timer:    armed=%v\n", a.manager.TimerArmed())

	if name, ok := sess.Extra["displayName"].(string); ok && name != "" {
		fmt.Printf("Account:  %s\n", name)
	}
	return nil
}
