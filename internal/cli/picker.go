package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pickerModel is the Bubble Tea model for the post-generation preference
// prompt: a single radio-style list of providers that produced audio.
type pickerModel struct {
	providers []string
	cursor    int
	chosen    string
	cancelled bool
}

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4")).
				MarginBottom(1)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#04B575")).
				Bold(true).
				PaddingLeft(2)

	pickerOptionStyle = lipgloss.NewStyle().
				PaddingLeft(4)

	pickerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)
)

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.providers)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.providers[m.cursor]
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Which provider sounded best?"))
	b.WriteString("\n")
	for i, name := range m.providers {
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render(fmt.Sprintf("> %s", name)))
		} else {
			b.WriteString(pickerOptionStyle.Render(name))
		}
		b.WriteString("\n")
	}
	b.WriteString(pickerHelpStyle.Render("↑/↓ move · enter select · q skip"))
	b.WriteString("\n")
	return b.String()
}

// runPreferencePicker shows the picker and returns the chosen provider.
// ok is false when the user skipped or the terminal refused the program.
func runPreferencePicker(providers []string) (string, bool) {
	out, err := tea.NewProgram(pickerModel{providers: providers}).Run()
	if err != nil {
		return "", false
	}
	final, ok := out.(pickerModel)
	if !ok || final.cancelled || final.chosen == "" {
		return "", false
	}
	return final.chosen, true
}
