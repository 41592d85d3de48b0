package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"postpilot/internal/store"
	"postpilot/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the dashboard",
		Long: strings.TrimSpace(`
Serves the LinkedIn post dashboard: generate drafts, edit them, add an image,
publish or schedule, and keep an eye on scheduled posts, history and analytics.

Scheduled, history and analytics panels refresh on the configured cron schedule
(refreshSchedule, default "` + store.DefaultRefreshSchedule + `") and after every publish.
`),
		Example: strings.TrimSpace(`
postpilot web
postpilot web --addr 0.0.0.0:3340 --open=false
POSTPILOT_API_URL=http://backend:8000 postpilot web
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr = firstNonEmpty(addr, app.cfg.Addr, store.DefaultAddr)
			sessionsPath, err := store.SessionsPath()
			if err != nil {
				return writeErr(cmd, err)
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:            addr,
				APIURL:          app.APIURL,
				SessionsPath:    sessionsPath,
				DatastarURL:     app.cfg.DatastarURL,
				RefreshSchedule: firstNonEmpty(app.cfg.RefreshSchedule, store.DefaultRefreshSchedule),
				SessionTTL:      app.cfg.SessionTTLOrDefault(),
				HTTPClient:      app.HTTPClient,
				Logger:          app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = srv.Close() }()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("listen %s: %w", addr, err))
			}
			if err := srv.Start(); err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if path, err := store.ConfigPath(); err == nil {
				pinned := app.apiURLPinned(cmd)
				err := store.WatchConfig(ctx, path, app.log, func(cfg *store.GlobalConfig) {
					if pinned {
						return
					}
					srv.SetAPIURL(firstNonEmpty(cfg.APIURL, store.DefaultAPIURL))
				})
				if err != nil {
					app.log.Warn("config watch disabled", "err", err)
				}
			}

			url := "http://" + displayAddr(ln.Addr().String())
			hs := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			errCh := make(chan error, 1)
			go func() { errCh <- hs.Serve(ln) }()

			app.log.Info("dashboard listening", "url", url, "apiUrl", app.APIURL)
			if err := writeOut(cmd, app, map[string]string{"addr": ln.Addr().String(), "url": url}, "Ctrl+C to stop"); err != nil {
				return err
			}
			if open {
				if err := openPath(url); err != nil {
					app.log.Warn("open browser failed", "err", err)
				}
			}

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}

			app.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			// Request contexts derive from ctx, so open /events streams have already ended.
			if err := hs.Shutdown(shutdownCtx); err != nil {
				app.log.Warn("shutdown", "err", err)
				_ = hs.Close()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("POSTPILOT_ADDR", ""), "Listen address (default: addr from config, then "+store.DefaultAddr+")")
	cmd.Flags().BoolVar(&open, "open", false, "Open the dashboard in your default browser")
	return cmd
}

// displayAddr turns a wildcard listen address into one a browser can open.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
