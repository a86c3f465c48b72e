package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/inboxreceipts/internal/logging"
)

const envPrefix = "INBOXRECEIPTS"

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(defaultToFetch(os.Args[1:]))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inboxreceipts",
		Short: "Downloads receipt and invoice attachments from Gmail",
		Long: `inboxreceipts searches a Gmail mailbox for receipts, invoices, insurance
and health documents, saves every attachment of the matching messages to a
local directory and prints the text of PDF and DOCX attachments.

The access token is taken from --token, INBOXRECEIPTS_TOKEN, the config file,
the OS keyring (see "inboxreceipts token set") or an interactive prompt.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), v.GetString("log-format"), v.GetBool("debug"))
			slog.SetDefault(logger)
			return nil
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "inboxreceipts version %s\n" .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default ~/.config/inboxreceipts/config.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.String("log-format", logging.FormatText, "log format: text or json")
	pf.String("metrics-exporter", "", "enable metrics with this exporter: prometheus, otlp or stdout")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address while fetching (e.g. :9090)")
	pf.String("tracing-exporter", "", "enable tracing with this exporter: otlp or stdout")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// defaultToFetch runs the fetch command when no subcommand is given, so
// "inboxreceipts --brand acme" behaves like "inboxreceipts fetch --brand acme".
func defaultToFetch(args []string) []string {
	if len(args) == 0 {
		return []string{"fetch"}
	}
	switch first := args[0]; {
	case first == "-h", first == "--help", first == "-v", first == "--version":
		return args
	case strings.HasPrefix(first, "-"):
		return append([]string{"fetch"}, args...)
	}
	return args
}

// loadConfig merges flags, INBOXRECEIPTS_* environment variables and the
// optional YAML config file, in that order of precedence.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, set := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
		if err := v.BindPFlags(set); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	path := v.GetString("config")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if !missing || explicit {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return v, nil
}

// defaultConfigPath returns ~/.config/inboxreceipts/config.yaml.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "inboxreceipts", "config.yaml")
}
