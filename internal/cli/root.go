package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"postpilot/internal/api"
	"postpilot/internal/format"
	"postpilot/internal/store"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

// Version is stamped by the release build.
var Version = "dev"

type App struct {
	APIURL     string
	Format     string
	PrettyJSON bool
	LogLevel   string
	LogFormat  string

	// HTTPClient overrides the backend client (tests).
	HTTPClient *http.Client

	cfg *store.GlobalConfig
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "postpilot",
		Short:         "Draft, review and publish LinkedIn posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		Example: strings.TrimSpace(`
  # Open the dashboard
  postpilot web

  # Generate a draft from a topic
  postpilot generate --input "We just shipped v2"

  # Review a draft (shortcut for: postpilot drafts show 12)
  postpilot 12

  # Publish, picking draft and account interactively
  postpilot publish
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", envOr("POSTPILOT_API_URL", ""), "Backend base URL (default: apiUrl from config, then "+store.DefaultAPIURL+")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("POSTPILOT_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("POSTPILOT_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFormat, "log-format", envOr("POSTPILOT_LOG_FORMAT", "text"), "Log format (text|json)")

	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newGenerateCmd(app))
	cmd.AddCommand(newDraftsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newAccountsCmd(app))
	cmd.AddCommand(newScheduledCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newAnalyticsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newMCPCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup resolves config-file defaults and the logger. Precedence for every
// setting: flag > env > config file > built-in default.
func (app *App) setup(cmd *cobra.Command) error {
	log, err := newLogger(cmd.ErrOrStderr(), app.LogLevel, app.LogFormat)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = log

	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg

	if strings.TrimSpace(app.APIURL) == "" {
		app.APIURL = firstNonEmpty(cfg.APIURL, store.DefaultAPIURL)
	}
	format.ApplyColorProfile(cmd.OutOrStdout())
	return nil
}

// apiURLPinned reports whether the backend was fixed by flag or env, which a
// config file change must not override.
func (app *App) apiURLPinned(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("api-url") || os.Getenv("POSTPILOT_API_URL") != ""
}

func (app *App) client() *api.Client {
	return api.New(app.APIURL, app.HTTPClient)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// envelope is the output shape of every command: the payload under data plus
// optional next-step hints.
type envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
}

func (e envelope) Text(width int) string {
	var b strings.Builder
	if t, ok := e.Data.(format.Texter); ok {
		b.WriteString(strings.TrimRight(t.Text(width), "\n"))
		b.WriteByte('\n')
	} else {
		var js strings.Builder
		_ = format.WriteJSON(&js, e.Data, true)
		b.WriteString(js.String())
	}
	for _, h := range e.Hints {
		b.WriteString(format.Muted("→ "+h) + "\n")
	}
	return b.String()
}

func writeOut(cmd *cobra.Command, app *App, data any, hints ...string) error {
	w := cmd.OutOrStdout()
	return format.WriteWidth(w, envelope{Data: data, Hints: hints}, app.Format, app.PrettyJSON, termWidth(w))
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reportedError{err}
}

func termWidth(w any) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return 0
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return width
}

// interactive reports whether both ends of cmd are a terminal, so prompting is possible.
func interactive(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(in.Fd()) {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(out.Fd())
}
