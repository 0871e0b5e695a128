// Package tui holds the small interactive pickers used by the wizard. Every
// picker returns plain data; nothing below the command layer ever reads the
// terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled reports that the user backed out of a picker.
var ErrCanceled = errors.New("tui: canceled")

type selectModel struct {
	title    string
	items    []string
	cursor   int
	width    int
	done     bool
	canceled bool
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(truncate(selectedStyle.Render("> "+item), m.width))
		} else {
			b.WriteString(truncate("  "+item, m.width))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("up/down move, enter select, esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// Select shows a single-choice picker and returns the chosen index.
func Select(title string, items []string, initial int) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("tui: nothing to select from")
	}
	if initial < 0 || initial >= len(items) {
		initial = 0
	}

	final, err := tea.NewProgram(selectModel{title: title, items: items, cursor: initial}).Run()
	if err != nil {
		return 0, fmt.Errorf("run picker: %w", err)
	}
	m := final.(selectModel)
	if m.canceled {
		return 0, ErrCanceled
	}
	return m.cursor, nil
}

func truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
