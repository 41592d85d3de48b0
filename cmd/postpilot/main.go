package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"postpilot/internal/cli"
)

func isDraftID(s string) bool {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	return err == nil && n > 0
}

// rewriteDraftShortcutArgs turns `postpilot 12` into `postpilot drafts show 12`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first, so this finds the first
// positional token rather than looking at argv[1].
func rewriteDraftShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value, so a draft id is never eaten.
	valueFlags := map[string]bool{
		"--api-url":    true,
		"--format":     true,
		"--log-level":  true,
		"--log-format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "drafts", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Cobra reads everything after "--" as positional, so the
			// separator has to go for `drafts show` to be a command.
			if i+1 < len(argv) && isDraftID(argv[i+1]) {
				out := make([]string, 0, len(argv)+1)
				out = append(out, argv[:i]...)
				out = append(out, "drafts", "show")
				return append(out, argv[i+1:]...)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isDraftID(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDraftShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
