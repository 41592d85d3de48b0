package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrPickCanceled = errors.New("selection canceled")

// Choice is one selectable row: a draft, an account.
type Choice struct {
	ID     int
	Label  string
	Detail string
}

type choiceItem struct {
	c Choice
}

func (i choiceItem) Title() string       { return strings.TrimSpace(i.c.Label) }
func (i choiceItem) Description() string { return strings.TrimSpace(i.c.Detail) }
func (i choiceItem) FilterValue() string {
	return strings.ToLower(strings.TrimSpace(i.c.Label + " " + i.c.Detail))
}

var (
	pickKey   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	cancelKey = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))
)

type pickerModel struct {
	list     list.Model
	picked   *Choice
	canceled bool
}

func newPickerModel(title string, choices []Choice) pickerModel {
	items := make([]list.Item, 0, len(choices))
	for _, c := range choices {
		items = append(items, choiceItem{c: c})
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorSelectedFg).Background(colorSelectedBg).BorderForeground(colorAccent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(colorMuted).Background(colorSelectedBg).BorderForeground(colorAccent)
	d.Styles.NormalDesc = styleMuted()

	h := len(choices)*3 + 6
	if h > 24 {
		h = 24
	}
	l := list.New(items, d, 72, h)
	l.Title = strings.TrimSpace(title)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{pickKey, cancelKey} }
	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		// While the filter input is open, enter and esc belong to it.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, pickKey):
			if it, ok := m.list.SelectedItem().(choiceItem); ok {
				c := it.c
				m.picked = &c
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, cancelKey):
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			m.canceled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// Pick runs an inline list picker and returns the chosen row. A single choice
// is returned without prompting.
func Pick(title string, choices []Choice) (Choice, error) {
	switch len(choices) {
	case 0:
		return Choice{}, errors.New("nothing to choose from")
	case 1:
		return choices[0], nil
	}

	applyThemePreference()
	applyColorProfilePreference()

	out, err := tea.NewProgram(newPickerModel(title, choices)).Run()
	if err != nil {
		return Choice{}, err
	}
	m := out.(pickerModel)
	if m.canceled || m.picked == nil {
		return Choice{}, ErrPickCanceled
	}
	return *m.picked, nil
}
