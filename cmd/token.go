package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxreceipts/internal/credential"
	"github.com/teemow/inboxreceipts/internal/logging"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the access token stored in the OS keyring",
	}
	cmd.AddCommand(newTokenSetCmd(), newTokenClearCmd(), newTokenStatusCmd())
	return cmd
}

func newTokenSetCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store an access token in the keyring",
		Long: `Store an access token in the keyring so fetch can run without --token.

The token is read from --token, from standard input when it is piped, or
from an interactive prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := readToken(cmd, token)
			if err != nil {
				return err
			}
			if tok == "" {
				return errors.New("no token given")
			}

			store, err := openCredentials()
			if err != nil {
				return err
			}
			if err := store.Set(credential.TokenKey, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored (%s)\n", logging.SanitizeToken(tok))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token to store")
	return cmd
}

func newTokenClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCredentials()
			if err != nil {
				return err
			}
			if err := store.Delete(credential.TokenKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return nil
		},
	}
}

func newTokenStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether an access token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCredentials()
			if err != nil {
				return err
			}
			tok, err := store.Get(credential.TokenKey)
			if err != nil {
				return err
			}
			if tok == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No token stored.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored (%s)\n", logging.SanitizeToken(tok))
			return nil
		},
	}
}

// readToken returns the flag value, the first line of piped input or the
// prompt answer.
func readToken(cmd *cobra.Command, flag string) (string, error) {
	if tok := strings.TrimSpace(flag); tok != "" {
		return tok, nil
	}
	in := cmd.InOrStdin()
	if isInteractive(in) {
		return promptToken()
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}
