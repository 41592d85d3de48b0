package format

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
)

// ApplyColorProfile picks the lipgloss color profile for non-interactive output on w.
// termenv's env profile honors NO_COLOR and CLICOLOR/CLICOLOR_FORCE; a non-terminal w
// gets plain text.
func ApplyColorProfile(w io.Writer) {
	if f, ok := w.(*os.File); ok {
		lipgloss.SetColorProfile(termenv.NewOutput(f).EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

func Heading(s string) string { return headingStyle.Render(s) }
func Muted(s string) string   { return mutedStyle.Render(s) }
func OK(s string) string      { return okStyle.Render(s) }
func Failed(s string) string  { return errStyle.Render(s) }

// Truncate cuts s to width display cells, marking the cut with an ellipsis.
// width <= 0 disables truncation.
func Truncate(s string, width int) string {
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}

// Table lays rows out in columns separated by two spaces. The last column is
// truncated so each line fits width (when width > 0).
func Table(header []string, rows [][]string, width int) string {
	all := rows
	if len(header) > 0 {
		all = append([][]string{header}, rows...)
	}
	cols := 0
	for _, r := range all {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	for _, r := range all {
		for i, c := range r {
			if w := xansi.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for ri, r := range all {
		var line strings.Builder
		for i, c := range r {
			if i == len(r)-1 {
				line.WriteString(c)
				break
			}
			line.WriteString(c)
			line.WriteString(strings.Repeat(" ", widths[i]-xansi.StringWidth(c)+2))
		}
		out := Truncate(line.String(), width)
		if ri == 0 && len(header) > 0 {
			out = Heading(out)
		}
		b.WriteString(out)
		b.WriteByte('\n')
	}
	return b.String()
}
