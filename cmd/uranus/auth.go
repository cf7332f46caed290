package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"uranus/pkg/auth"
	"uranus/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored bearer tokens",
	Long: `Manage API bearer tokens.

Tokens are stored in:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - URANUS_BEARER_TOKEN (read only)`,
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a bearer token",
	Long: `Store a bearer token under a name (default "default").
The token is read from the terminal without echo, or from stdin when piped.`,
	Example: `  uranus auth login
  echo "$BEARER" | uranus auth login work`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored bearer token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored bearer tokens",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Bearer token: ")
	token, err := readSecret(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return errors.New("bearer token is required")
	}

	if err := manager.Store(&auth.Token{Name: name, BearerToken: token}); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Token saved: %s (%s)", name, auth.Mask(token)))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess("Token removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	tokens, err := manager.List()
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		ui.PrintInfo("No stored tokens", "Use 'uranus auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Tokens")
	for _, token := range tokens {
		ui.PrintInfo(token.Name, fmt.Sprintf("%s  (modified %s)", auth.Mask(token.BearerToken), token.LastModified.Format("2006-01-02 15:04:05")))
	}
	return nil
}

// readSecret reads without echo from a terminal, otherwise one line
func readSecret(f *os.File) (string, error) {
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return readLine(f)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
