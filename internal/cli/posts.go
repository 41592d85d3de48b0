package cli

import (
	"postpilot/internal/model"

	"github.com/spf13/cobra"
)

func newScheduledCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduled",
		Short: "List posts waiting to be published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := app.client().ListScheduled(cmd.Context())
			if err != nil {
				return writeErr(cmd, backendErr("list scheduled", 0, err))
			}
			if posts == nil {
				posts = []model.ScheduledPost{}
			}
			return writeOut(cmd, app, scheduledView(posts))
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"published"},
		Short:   "List published posts with impressions and engagement",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := app.client().ListPublished(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, backendErr("list published", 0, err))
			}
			if posts == nil {
				posts = []model.PublishedPost{}
			}
			return writeOut(cmd, app, historyView(posts))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of posts")
	return cmd
}

func newAnalyticsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Totals, average engagement and best days/times to post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.client().Analytics(cmd.Context())
			if err != nil {
				return writeErr(cmd, backendErr("analytics", 0, err))
			}
			return writeOut(cmd, app, analyticsView(a))
		},
	}
}
