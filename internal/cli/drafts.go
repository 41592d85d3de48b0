package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"postpilot/internal/model"
	"postpilot/internal/tui"

	"github.com/spf13/cobra"
)

func newDraftsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drafts",
		Aliases: []string{"draft"},
		Short:   "List, review and edit drafts",
	}
	cmd.AddCommand(newDraftsListCmd(app))
	cmd.AddCommand(newDraftsShowCmd(app))
	cmd.AddCommand(newDraftsEditCmd(app))
	cmd.AddCommand(newDraftsImageCmd(app))
	return cmd
}

func newDraftsListCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent drafts (newest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := app.client().ListDrafts(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, backendErr("list drafts", 0, err))
			}
			if drafts == nil {
				drafts = []model.Draft{}
			}
			return writeOut(cmd, app, draftListView(drafts))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of drafts")
	return cmd
}

func newDraftsShowCmd(app *App) *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "show <draft-id>",
		Short: "Show one draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("draft", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			d, err := app.client().GetDraft(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, backendErr("get draft", id, err))
			}
			if render {
				width := termWidth(cmd.OutOrStdout())
				if width <= 0 || width > 100 {
					width = 80
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), tui.RenderPost(d, width))
				return err
			}
			return writeOut(cmd, app, draftView(d),
				"postpilot drafts edit "+strconv.Itoa(id)+" --body ...",
				"postpilot publish --draft "+strconv.Itoa(id),
			)
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the post for the terminal instead of structured output")
	return cmd
}

func newDraftsEditCmd(app *App) *cobra.Command {
	var hook, body, cta, hashtags string
	cmd := &cobra.Command{
		Use:   "edit <draft-id>",
		Short: "Edit a draft's hook, body, call to action or hashtags",
		Example: strings.TrimSpace(`
postpilot drafts edit 12 --hook "Three things we got wrong"
postpilot drafts edit 12 --cta "" --hashtags "#golang #devops"
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("draft", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			// Only flags given on the command line are sent; an explicit "" clears the field.
			var patch model.DraftPatch
			if cmd.Flags().Changed("hook") {
				patch.Hook = &hook
			}
			if cmd.Flags().Changed("body") {
				patch.Body = &body
			}
			if cmd.Flags().Changed("cta") {
				patch.CTA = &cta
			}
			if cmd.Flags().Changed("hashtags") {
				patch.Hashtags = &hashtags
			}
			if patch.Empty() {
				return writeErr(cmd, errors.New("nothing to update: pass --hook, --body, --cta or --hashtags"))
			}

			c := app.client()
			d, err := c.UpdateDraft(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, backendErr("update draft", id, err))
			}
			if d.ID == 0 {
				if d, err = c.GetDraft(cmd.Context(), id); err != nil {
					return writeErr(cmd, backendErr("get draft", id, err))
				}
			}
			return writeOut(cmd, app, draftView(d))
		},
	}
	cmd.Flags().StringVar(&hook, "hook", "", "Opening line")
	cmd.Flags().StringVar(&body, "body", "", "Main text")
	cmd.Flags().StringVar(&cta, "cta", "", "Call to action")
	cmd.Flags().StringVar(&hashtags, "hashtags", "", "Hashtags")
	return cmd
}

func newDraftsImageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "image <draft-id>",
		Short: "Generate an image for a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("draft", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := app.client().GenerateImage(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, backendErr("generate image", id, err))
			}
			return writeOut(cmd, app, imageView(res))
		},
	}
}
