package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xid/pkg/auth"
)

var authLabel string

// authCmd groups the credential management subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Twitter API credentials",
	Long: `Store, inspect and remove the four Twitter API v2 user-context
secrets. Credentials are kept in the system keychain when available,
with an encrypted file fallback.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store API credentials",
	Long: `Prompts for the API key, API secret, access token and access token
secret and stores them securely. Secret values are read with terminal
echo disabled.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether credentials are stored",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	authCmd.PersistentFlags().StringVarP(&authLabel, "label", "l", auth.DefaultLabel, "credential set label")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	apiKey, err := promptValue("API key", false)
	if err != nil {
		return err
	}
	apiSecret, err := promptValue("API secret", true)
	if err != nil {
		return err
	}
	accessToken, err := promptValue("Access token", false)
	if err != nil {
		return err
	}
	accessTokenSecret, err := promptValue("Access token secret", true)
	if err != nil {
		return err
	}

	creds := &auth.Credentials{
		Label:             authLabel,
		APIKey:            apiKey,
		APISecret:         apiSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
	}
	if !creds.Complete() {
		return fmt.Errorf("all four values are required")
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := manager.Store(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored as %q\n", authLabel)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	if manager.Exists(authLabel) {
		fmt.Printf("Credentials %q: stored\n", authLabel)
	} else {
		fmt.Printf("Credentials %q: not found\n", authLabel)
	}

	if auth.NewEnvironmentStore().Exists(authLabel) {
		fmt.Println("Environment: TWITTER_* variables present")
	}

	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := manager.Delete(authLabel); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	fmt.Printf("Credentials %q removed\n", authLabel)
	return nil
}

// promptValue reads one value from stdin, hiding the input for secrets
// when attached to a terminal
func promptValue(label string, secret bool) (string, error) {
	fmt.Printf("%s: ", label)

	if secret && term.IsTerminal(int(syscall.Stdin)) {
		value, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", label, err)
		}
		return strings.TrimSpace(string(value)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	return strings.TrimSpace(value), nil
}
