package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"postpilot/internal/api"
	"postpilot/internal/model"
	"postpilot/internal/tui"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var draftID, accountID int
	var at string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a draft now, or schedule it",
		Long: strings.TrimSpace(`
Publish a draft to a connected LinkedIn account.

Without --draft or --account, and on a terminal, you pick them from a list.
--at schedules the post instead of publishing now.
`),
		Example: strings.TrimSpace(`
postpilot publish --draft 12 --account 3
postpilot publish --draft 12 --account 3 --at 2025-06-02T09:00:00+02:00
postpilot publish   # interactive
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.PublishRequest{DraftID: draftID, AccountID: accountID}
			if s := strings.TrimSpace(at); s != "" {
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --at %q: want RFC3339, e.g. 2025-06-02T09:00:00Z", s))
				}
				req.ScheduleOverride = &t
			}

			c := app.client()
			if req.DraftID <= 0 || req.AccountID <= 0 {
				if !interactive(cmd) {
					return writeErr(cmd, errors.New("missing --draft or --account (interactive selection needs a terminal)"))
				}
				var err error
				if req.DraftID <= 0 {
					if req.DraftID, err = pickDraft(cmd, c); err != nil {
						return writeErr(cmd, err)
					}
				}
				if req.AccountID <= 0 {
					if req.AccountID, err = pickAccount(cmd, c); err != nil {
						return writeErr(cmd, err)
					}
				}
			}

			res, err := c.Publish(cmd.Context(), req)
			if err != nil {
				return writeErr(cmd, backendErr("publish", req.DraftID, err))
			}
			app.log.Debug("publish", "draft", req.DraftID, "account", req.AccountID, "status", res.Status)
			if res.Status == model.PublishStatusScheduled {
				return writeOut(cmd, app, publishView(res), "postpilot scheduled")
			}
			return writeOut(cmd, app, publishView(res), "postpilot history")
		},
	}

	cmd.Flags().IntVar(&draftID, "draft", 0, "Draft id")
	cmd.Flags().IntVar(&accountID, "account", 0, "Account id")
	cmd.Flags().StringVar(&at, "at", "", "Schedule for this RFC3339 time instead of publishing now")
	return cmd
}

func pickDraft(cmd *cobra.Command, c *api.Client) (int, error) {
	drafts, err := c.ListDrafts(cmd.Context(), 20)
	if err != nil {
		return 0, backendErr("list drafts", 0, err)
	}
	choices := make([]tui.Choice, 0, len(drafts))
	for _, d := range drafts {
		choices = append(choices, tui.Choice{
			ID:     d.ID,
			Label:  fmt.Sprintf("#%d  %s", d.ID, oneLine(d.Hook)),
			Detail: oneLine(d.Body),
		})
	}
	if len(choices) == 0 {
		return 0, errors.New("no drafts yet; run: postpilot generate")
	}
	ch, err := tui.Pick("Draft to publish", choices)
	return ch.ID, err
}

func pickAccount(cmd *cobra.Command, c *api.Client) (int, error) {
	accounts, err := c.ListAccounts(cmd.Context())
	if err != nil {
		return 0, backendErr("list accounts", 0, err)
	}
	choices := make([]tui.Choice, 0, len(accounts))
	for _, a := range accounts {
		choices = append(choices, tui.Choice{ID: a.ID, Label: a.DisplayName, Detail: string(a.AccountType)})
	}
	if len(choices) == 0 {
		return 0, errors.New("no accounts connected; run: postpilot accounts connect")
	}
	ch, err := tui.Pick("Account", choices)
	return ch.ID, err
}
