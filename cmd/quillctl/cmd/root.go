// Package cmd provides the CLI commands for quillctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillpress/quillctl/internal/config"
)

var cfgFile string
var profileFlag string

var rootCmd = &cobra.Command{
	Use:   "quillctl",
	Short: "quillctl - Quillpress admin API client",
	Long: `quillctl is a command-line client for the Quillpress web-novel
platform's admin API.

It manages the session lifecycle end to end: tokens are persisted across
invocations, the default Authorization header tracks the stored session,
and a 401/403 from any command invalidates the session with a visible
reason.

Quick start:
  1. quillctl login --email you@example.com
  2. quillctl books list

Configuration:
  Config is loaded from quillctl.yaml in the current directory,
  $HOME/.quillctl/, or /etc/quillctl/.

  Environment variables can override config values with the QUILLCTL_ prefix.
  Example: QUILLCTL_API_BASE_URL=https://api.example.com/api/v1

Commands:
  login       Authenticate and persist the session
  logout      End the session and clear stored credentials
  status      Show session state and expiry
  session     Long-running session utilities (watch)
  books       Browse the catalog
  chapters    Read chapters
  coins       Coin balance, packages, and purchases
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./quillctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "credential profile (sqlite backend only)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
