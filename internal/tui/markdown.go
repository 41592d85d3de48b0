package tui

import (
	"strconv"
	"strings"
	"sync"

	"postpilot/internal/model"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style + wrap width. WithAutoStyle is avoided: it can block on
	// terminal background queries.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// PostMarkdown lays a draft out the way it reads on LinkedIn: the hook as a
// heading, then body, call to action and hashtags as separate paragraphs.
func PostMarkdown(d model.Draft) string {
	var b strings.Builder
	if s := strings.TrimSpace(d.Hook); s != "" {
		b.WriteString("## " + s + "\n\n")
	}
	if s := strings.TrimSpace(d.Body); s != "" {
		b.WriteString(s + "\n\n")
	}
	if s := strings.TrimSpace(d.CTA); s != "" {
		b.WriteString("**" + s + "**\n\n")
	}
	if s := strings.TrimSpace(d.Hashtags); s != "" {
		b.WriteString("_" + s + "_\n")
	}
	return strings.TrimSpace(b.String())
}

// RenderPost renders a draft for the terminal. Rendering errors fall back to
// the plain markdown.
func RenderPost(d model.Draft, width int) string {
	return RenderMarkdown(PostMarkdown(d), width)
}

// RenderMarkdown renders arbitrary markdown (help topics) with the same renderer cache.
func RenderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	style := themeName()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(markdownStyleConfig(style)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	}
	text := mdColor(colorSurfaceFg, style)
	cfg.Text.Color = text
	cfg.Heading.Color = text
	cfg.H2.Color = text
	// Hashtags are emphasised; give them the accent.
	cfg.Emph.Color = mdColor(colorAccent, style)
	cfg.Strong.Color = nil
	return cfg
}

func mdColor(c lipgloss.AdaptiveColor, style string) *string {
	s := c.Dark
	if style == "light" {
		s = c.Light
	}
	return &s
}
