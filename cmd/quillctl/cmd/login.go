package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quillpress/quillctl/internal/domain/session"
	"github.com/quillpress/quillctl/internal/service"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist the session",
	Long: `Authenticate against the platform and persist the resulting session.

The password is prompted for when not passed via --password. On success the
session token is stored and every later quillctl invocation sends it until
it expires or you log out.`,
	RunE: withApp(runLogin),
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(ctx context.Context, a *app, _ []string) error {
	email := loginEmail
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	err := a.auth.Login(ctx, service.LoginRequest{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, service.ErrNoToken) {
			return errors.New("authentication failed: no token received")
		}
		return err
	}

	// A token that could not be decoded bounces the login synchronously; the
	// alert has already fired, so just report the outcome.
	if a.manager.State() != session.StateLoggedIn {
		return errors.New("login rejected: the issued token is unusable")
	}

	fmt.Printf("Logged in as %s\n", email)
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine("")
	}
	defer fmt.Fprintln(os.Stderr)
	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
