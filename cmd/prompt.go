package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompts are variables so tests can replace them.
var (
	promptToken = func() (string, error) {
		var token string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Google OAuth2 access token").
					Description("Needs the gmail.readonly and userinfo.email scopes").
					EchoMode(huh.EchoModePassword).
					Value(&token),
			),
		).Run()
		return strings.TrimSpace(token), err
	}

	promptBrand = func() (string, error) {
		var brand string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Brand name").
					Description("Optional, narrows the search to messages mentioning it").
					Placeholder("leave empty for all receipts").
					Value(&brand),
			),
		).Run()
		return strings.TrimSpace(brand), err
	}
)

// isInteractive reports whether r is a terminal.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
