package cli

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"postpilot/internal/model"

	"github.com/spf13/cobra"
)

func newAccountsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Connected LinkedIn accounts",
	}
	cmd.AddCommand(newAccountsListCmd(app))
	cmd.AddCommand(newAccountsConnectCmd(app))
	return cmd
}

func newAccountsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := app.client().ListAccounts(cmd.Context())
			if err != nil {
				return writeErr(cmd, backendErr("list accounts", 0, err))
			}
			if accounts == nil {
				accounts = []model.Account{}
			}
			return writeOut(cmd, app, accountsView(accounts))
		},
	}
}

func newAccountsConnectCmd(app *App) *cobra.Command {
	var accountType string
	var open bool

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a LinkedIn account (opens the LinkedIn login page)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := app.client().LinkedInAuthURL(cmd.Context(), model.ParseAccountType(accountType))
			if err != nil {
				return writeErr(cmd, backendErr("linkedin login", 0, err))
			}
			u := strings.TrimSpace(auth.AuthorizationURL)
			if u == "" {
				return writeErr(cmd, errors.New("could not get LinkedIn login URL"))
			}

			msg := "Open this URL to connect your account:"
			if open {
				if err := openPath(u); err != nil {
					app.log.Warn("open browser failed", "err", err)
				} else {
					msg = "Opened LinkedIn login in your browser:"
				}
			}
			return writeOut(cmd, app, messageView{Message: msg, URL: u}, "postpilot accounts list")
		},
	}
	cmd.Flags().StringVar(&accountType, "type", string(model.AccountPersonal), "Account type (personal|company)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the login page in your default browser")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}
