package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxreceipts/internal/credential"
)

// execute runs the root command with args and returns what it wrote to
// stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// isolate points HOME at an empty directory and clears INBOXRECEIPTS_*
// variables so no real config file or environment leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, envPrefix+"_") {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}

// memoryCredentials replaces the OS keyring with an in-memory one.
func memoryCredentials(t *testing.T) *credential.Store {
	t.Helper()
	store := credential.NewStore(keyring.NewArrayKeyring(nil))
	prev := openCredentials
	openCredentials = func() (*credential.Store, error) { return store, nil }
	t.Cleanup(func() { openCredentials = prev })
	return store
}

func TestDefaultToFetch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "no args", args: nil, want: []string{"fetch"}},
		{name: "leading flag", args: []string{"--brand", "acme"}, want: []string{"fetch", "--brand", "acme"}},
		{name: "short flag", args: []string{"-h"}, want: []string{"-h"}},
		{name: "help", args: []string{"--help"}, want: []string{"--help"}},
		{name: "version flag", args: []string{"--version"}, want: []string{"--version"}},
		{name: "subcommand", args: []string{"token", "status"}, want: []string{"token", "status"}},
		{name: "explicit fetch", args: []string{"fetch", "--workers", "2"}, want: []string{"fetch", "--workers", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultToFetch(tt.args))
		})
	}
}

func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("token", "", "")
	cmd.Flags().String("brand", "", "")
	cmd.Flags().Int("workers", 1, "")
	return cmd
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: from-file\nbrand: FileBrand\nworkers: 3\n"), 0o600))
	t.Setenv("INBOXRECEIPTS_BRAND", "EnvBrand")

	cmd := newConfigTestCmd()
	require.NoError(t, cmd.Flags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("workers", "5"))

	v, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-file", v.GetString("token"))
	assert.Equal(t, "EnvBrand", v.GetString("brand"), "environment overrides the config file")
	assert.Equal(t, 5, v.GetInt("workers"), "flags override everything")
}

func TestLoadConfig_MissingDefaultFileIsFine(t *testing.T) {
	isolate(t)

	v, err := loadConfig(newConfigTestCmd())
	require.NoError(t, err)
	assert.Equal(t, 1, v.GetInt("workers"))
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	isolate(t)

	cmd := newConfigTestCmd()
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml")))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestVersion(t *testing.T) {
	isolate(t)
	prev := version
	SetVersion("1.2.3")
	t.Cleanup(func() { version = prev })

	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "inboxreceipts version 1.2.3\n", out)
}
