package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Texter is implemented by CLI payloads that have a human-readable rendering.
// width is the terminal width (0 when unknown).
type Texter interface {
	Text(width int) string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - text (Texter payloads; anything else falls back to indented JSON)
func Write(w io.Writer, v any, format string, pretty bool) error {
	return WriteWidth(w, v, format, pretty, 0)
}

func WriteWidth(w io.Writer, v any, format string, pretty bool, width int) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "text":
		return WriteText(w, v, width)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func WriteText(w io.Writer, v any, width int) error {
	t, ok := v.(Texter)
	if !ok {
		return WriteJSON(w, v, true)
	}
	s := strings.TrimRight(t.Text(width), "\n")
	_, err := fmt.Fprintln(w, s)
	return err
}
