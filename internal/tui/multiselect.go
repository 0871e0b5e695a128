package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type multiSelectModel struct {
	title    string
	rows     []string
	cursor   int
	selected map[int]bool
	width    int
	done     bool
	canceled bool
}

func (m multiSelectModel) Init() tea.Cmd { return nil }

func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			m.toggleAll()
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// toggleAll selects every row, or clears the selection when every row is
// already selected.
func (m *multiSelectModel) toggleAll() {
	all := true
	for i := range m.rows {
		if !m.selected[i] {
			all = false
			break
		}
	}
	for i := range m.rows {
		m.selected[i] = !all
	}
}

func (m multiSelectModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for i, row := range m.rows {
		mark := "[ ]"
		if m.selected[i] {
			mark = checkedStyle.Render("[x]")
		}
		line := mark + " " + row
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(truncate(line, m.width))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space toggle, a all/none, enter accept, esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// MultiSelect shows a checkbox picker over rows, starting from the given
// preselected indices, and returns the accepted indices in ascending order.
func MultiSelect(title string, rows []string, preselected []int) ([]int, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("tui: nothing to select from")
	}

	m := multiSelectModel{
		title:    title,
		rows:     rows,
		selected: make(map[int]bool, len(preselected)),
	}
	for _, i := range preselected {
		if i >= 0 && i < len(rows) {
			m.selected[i] = true
		}
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	result := final.(multiSelectModel)
	if result.canceled {
		return nil, ErrCanceled
	}

	var indices []int
	for i, on := range result.selected {
		if on {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices, nil
}
