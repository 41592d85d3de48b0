package cli

import (
	"fmt"
	"strings"

	"postpilot/internal/docs"
	"postpilot/internal/tui"

	"github.com/spf13/cobra"
)

type docView struct {
	Topic    string `json:"topic"`
	Markdown string `json:"markdown"`
}

func (v docView) Text(width int) string {
	if width <= 0 || width > 100 {
		width = 80
	}
	return tui.RenderMarkdown(v.Markdown, width)
}

func newDocsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "docs [topic]",
		Short:     "Longer help: " + strings.Join(docs.Topics(), ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docs.Topics(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, docs.Topics(), "postpilot docs <topic>")
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic %q (expected one of %s)", args[0], strings.Join(docs.Topics(), ", ")))
			}
			return writeOut(cmd, app, docView{Topic: strings.ToLower(strings.TrimSpace(args[0])), Markdown: md})
		},
	}
}
