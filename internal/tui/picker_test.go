package tui

import (
	"strings"
	"testing"

	"postpilot/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

func testChoices() []Choice {
	return []Choice{
		{ID: 3, Label: "Ada Lovelace", Detail: "personal"},
		{ID: 4, Label: "Acme", Detail: "company"},
	}
}

func TestPicker_EnterPicksSelected(t *testing.T) {
	m := newPickerModel("Account", testChoices())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := next.(pickerModel)
	if pm.picked == nil || pm.picked.ID != 4 {
		t.Fatalf("expected Acme to be picked, got %+v", pm.picked)
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestPicker_EscCancels(t *testing.T) {
	m := newPickerModel("Account", testChoices())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	pm := next.(pickerModel)
	if !pm.canceled || pm.picked != nil || cmd == nil {
		t.Fatalf("expected cancel, got %+v", pm)
	}
}

func TestPick_SingleChoiceSkipsPrompt(t *testing.T) {
	got, err := Pick("Draft", []Choice{{ID: 9, Label: "Draft #9"}})
	if err != nil || got.ID != 9 {
		t.Fatalf("expected draft 9, got %+v %v", got, err)
	}
	if _, err := Pick("Draft", nil); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestPicker_ViewListsChoices(t *testing.T) {
	v := xansi.Strip(newPickerModel("Account", testChoices()).View())
	if !strings.Contains(v, "Ada Lovelace") || !strings.Contains(v, "Acme") {
		t.Fatalf("expected choices in view, got:\n%s", v)
	}
}

func TestPostMarkdown(t *testing.T) {
	d := model.Draft{Hook: "Big news", Body: "We shipped.", CTA: "Try it", Hashtags: "#go"}
	want := "## Big news\n\nWe shipped.\n\n**Try it**\n\n_#go_"
	if got := PostMarkdown(d); got != want {
		t.Fatalf("unexpected markdown:\n%q\nwant\n%q", got, want)
	}
	if got := PostMarkdown(model.Draft{Body: "only body"}); got != "only body" {
		t.Fatalf("expected empty parts to be skipped, got %q", got)
	}
}

func TestRenderPost(t *testing.T) {
	t.Setenv("POSTPILOT_TUI_THEME", "light")
	out := xansi.Strip(RenderPost(model.Draft{Hook: "Launch", Body: "Hello world"}, 60))
	if !strings.Contains(out, "Launch") || !strings.Contains(out, "Hello world") {
		t.Fatalf("expected rendered post text, got:\n%s", out)
	}
}

func TestThemeName(t *testing.T) {
	t.Setenv("POSTPILOT_TUI_THEME", "")
	t.Setenv("COLORFGBG", "0;15")
	if got := themeName(); got != "light" {
		t.Fatalf("expected light for bg 15, got %q", got)
	}
	t.Setenv("COLORFGBG", "15;0")
	if got := themeName(); got != "dark" {
		t.Fatalf("expected dark for bg 0, got %q", got)
	}
	t.Setenv("POSTPILOT_TUI_THEME", "light")
	if got := themeName(); got != "light" {
		t.Fatalf("expected explicit theme to win, got %q", got)
	}
}
