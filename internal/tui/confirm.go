package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	prompt     string
	defaultYes bool
	answer     bool
	done       bool
	canceled   bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "y", "Y":
			m.answer = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.answer = false
			m.done = true
			return m, tea.Quit
		case "enter":
			m.answer = m.defaultYes
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	hint := "y/N"
	if m.defaultYes {
		hint = "Y/n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.prompt))
	b.WriteString(" ")
	b.WriteString(helpStyle.Render("(" + hint + ", enter for default)"))
	b.WriteString("\n")
	return b.String()
}

// Confirm asks a yes/no question; enter accepts the default.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	final, err := tea.NewProgram(confirmModel{prompt: prompt, defaultYes: defaultYes}).Run()
	if err != nil {
		return false, fmt.Errorf("run prompt: %w", err)
	}
	m := final.(confirmModel)
	if m.canceled {
		return false, ErrCanceled
	}
	return m.answer, nil
}
