package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSelectModel_Navigation(t *testing.T) {
	m := selectModel{title: "pick", items: []string{"one", "two", "three"}}

	next, _ := m.Update(keyMsg("j"))
	m = next.(selectModel)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(keyMsg("j"))
	m = next.(selectModel)
	next, _ = m.Update(keyMsg("j"))
	m = next.(selectModel)
	assert.Equal(t, 2, m.cursor, "cursor stops at the last item")

	next, _ = m.Update(keyMsg("k"))
	m = next.(selectModel)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(keyMsg("enter"))
	m = next.(selectModel)
	assert.True(t, m.done)
	assert.False(t, m.canceled)
}

func TestSelectModel_Cancel(t *testing.T) {
	m := selectModel{items: []string{"one"}}

	next, _ := m.Update(keyMsg("esc"))
	m = next.(selectModel)
	assert.True(t, m.canceled)
}

func TestSelectModel_ViewMarksCursor(t *testing.T) {
	m := selectModel{title: "pick", items: []string{"one", "two"}, cursor: 1}

	view := m.View()
	assert.Contains(t, view, "pick")
	assert.Contains(t, view, "> two")
}

func TestMultiSelectModel_Toggle(t *testing.T) {
	m := multiSelectModel{
		rows:     []string{"a", "b", "c"},
		selected: map[int]bool{0: true},
	}

	next, _ := m.Update(keyMsg(" "))
	m = next.(multiSelectModel)
	assert.False(t, m.selected[0], "space toggles the cursor row off")

	next, _ = m.Update(keyMsg("j"))
	m = next.(multiSelectModel)
	next, _ = m.Update(keyMsg(" "))
	m = next.(multiSelectModel)
	assert.True(t, m.selected[1])
}

func TestMultiSelectModel_ToggleAll(t *testing.T) {
	m := multiSelectModel{
		rows:     []string{"a", "b"},
		selected: map[int]bool{},
	}

	next, _ := m.Update(keyMsg("a"))
	m = next.(multiSelectModel)
	assert.True(t, m.selected[0])
	assert.True(t, m.selected[1])

	next, _ = m.Update(keyMsg("a"))
	m = next.(multiSelectModel)
	assert.False(t, m.selected[0])
	assert.False(t, m.selected[1])
}

func TestMultiSelectModel_AcceptAndCancel(t *testing.T) {
	m := multiSelectModel{rows: []string{"a"}, selected: map[int]bool{}}

	next, _ := m.Update(keyMsg("enter"))
	accepted := next.(multiSelectModel)
	assert.True(t, accepted.done)

	next, _ = m.Update(keyMsg("esc"))
	canceled := next.(multiSelectModel)
	assert.True(t, canceled.canceled)
}

func TestMultiSelectModel_ViewShowsMarks(t *testing.T) {
	m := multiSelectModel{
		rows:     []string{"keep", "skip"},
		selected: map[int]bool{0: true},
	}

	view := m.View()
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "[ ]")
	assert.Contains(t, view, "keep")
}

func TestConfirmModel(t *testing.T) {
	m := confirmModel{prompt: "sure?", defaultYes: false}

	next, _ := m.Update(keyMsg("y"))
	yes := next.(confirmModel)
	require.True(t, yes.done)
	assert.True(t, yes.answer)

	next, _ = m.Update(keyMsg("n"))
	no := next.(confirmModel)
	require.True(t, no.done)
	assert.False(t, no.answer)

	next, _ = m.Update(keyMsg("enter"))
	def := next.(confirmModel)
	require.True(t, def.done)
	assert.False(t, def.answer, "enter takes the default")

	next, _ = m.Update(keyMsg("esc"))
	canceled := next.(confirmModel)
	assert.True(t, canceled.canceled)
}

func TestConfirmModel_DefaultYes(t *testing.T) {
	m := confirmModel{prompt: "sure?", defaultYes: true}

	next, _ := m.Update(keyMsg("enter"))
	def := next.(confirmModel)
	require.True(t, def.done)
	assert.True(t, def.answer)

	assert.Contains(t, m.View(), "Y/n")
}

func TestInputModel(t *testing.T) {
	m := newInputModel("path?", "/tmp")

	next, _ := m.Update(keyMsg("x"))
	m = next.(inputModel)
	assert.Equal(t, "x", m.input.Value())

	next, _ = m.Update(keyMsg("enter"))
	m = next.(inputModel)
	assert.True(t, m.done)

	canceledModel := newInputModel("path?", "")
	next, _ = canceledModel.Update(keyMsg("esc"))
	canceled := next.(inputModel)
	assert.True(t, canceled.canceled)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abcdef", truncate("abcdef", 0), "zero width leaves the line alone")
	assert.Equal(t, "abcdef", truncate("abcdef", 10))
	assert.Equal(t, "abc...", truncate("abcdefgh", 6))
}
