package cli

import (
	"strconv"
	"strings"

	"postpilot/internal/model"

	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var input string
	var regenerate int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post draft (or a fresh variant of one)",
		Example: strings.TrimSpace(`
postpilot generate --input "Lessons from our first year of on-call"
postpilot generate                  # let the backend pick a trending topic
postpilot generate --regenerate 12  # new variant of draft 12
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.client()
			var (
				res model.GenerateResult
				err error
			)
			if regenerate > 0 {
				res, err = c.Regenerate(cmd.Context(), regenerate)
			} else {
				res, err = c.Generate(cmd.Context(), input)
			}
			if err != nil {
				return writeErr(cmd, backendErr("generate", regenerate, err))
			}
			id := strconv.Itoa(res.DraftID)
			return writeOut(cmd, app, generateView(res),
				"postpilot drafts edit "+id+" --hook ...",
				"postpilot drafts image "+id,
				"postpilot publish --draft "+id,
			)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Topic, notes or a rough draft (empty: backend picks a topic)")
	cmd.Flags().IntVar(&regenerate, "regenerate", 0, "Regenerate this draft id instead of starting from input")
	cmd.MarkFlagsMutuallyExclusive("input", "regenerate")
	return cmd
}
