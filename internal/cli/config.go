package cli

import (
	"strings"

	"postpilot/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.postpilot/config.json",
		Long: strings.TrimSpace(`
Global settings, stored in ~/.postpilot/config.json (POSTPILOT_HOME overrides the directory).

Keys: ` + strings.Join(store.ConfigKeys, ", ") + `

Flags and environment variables take precedence over the file.
A running ` + "`postpilot web`" + ` picks up apiUrl changes without a restart.
`),
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Show all settings, or one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v, err := app.cfg.Get(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, configView{args[0]: v})
			}
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, configView(app.cfg.Values()), "config file: "+path)
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change a setting (empty value restores the default)",
		Example: `postpilot config set apiUrl http://127.0.0.1:8000`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cfg.Set(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, configView(app.cfg.Values()))
		},
	}
}
