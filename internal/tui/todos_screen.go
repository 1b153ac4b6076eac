package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

// addedLayout is how dateAdded is shown, in local time.
const addedLayout = "2006/01/02 15:04:05"

type todosFocus int

const (
	focusTitle todosFocus = iota
	focusDescription
	focusList
)

type todosView struct {
	title       textinput.Model
	description textinput.Model
	focused     todosFocus

	items  []models.Todo
	cursor int

	userName      string
	toast         string
	toastSeq      int
	err           string
	confirmLogout bool
}

func newTodosView() todosView {
	v := todosView{
		title:       newInput("Title", false),
		description: newInput("Description", false),
	}
	v.title.Focus()
	return v
}

func (v *todosView) setItems(items []models.Todo) {
	v.items = items
	if v.cursor >= len(items) {
		v.cursor = max(len(items)-1, 0)
	}
}

func (v *todosView) focus(f todosFocus) tea.Cmd {
	v.focused = f
	v.title.Blur()
	v.description.Blur()
	switch f {
	case focusTitle:
		return v.title.Focus()
	case focusDescription:
		return v.description.Focus()
	}
	return nil
}

func (v *todosView) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch v.focused {
	case focusTitle:
		v.title, cmd = v.title.Update(msg)
	case focusDescription:
		v.description, cmd = v.description.Update(msg)
	}
	return cmd
}

// loadBuffers copies the editor's buffers into the inputs.
func (v *todosView) loadBuffers(editor *todolist.Editor) {
	title, description := editor.Buffers()
	v.title.SetValue(title)
	v.description.SetValue(description)
}

func (m model) updateTodos(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.todos.confirmLogout {
		return m.updateLogoutConfirm(msg)
	}

	switch msg.String() {
	case "ctrl+o":
		m.todos.confirmLogout = true
		return m, nil
	case "tab":
		return m, m.todos.focus((m.todos.focused + 1) % 3)
	case "shift+tab":
		return m, m.todos.focus((m.todos.focused + 2) % 3)
	case "esc", "ctrl+r":
		m.todos.err = ""
		out := m.deps.editor.Cancel()
		m.todos.loadBuffers(m.deps.editor)
		if out.FocusTitle {
			return m, m.todos.focus(focusTitle)
		}
		return m, nil
	}

	if m.todos.focused == focusList {
		return m.updateList(msg)
	}

	if msg.String() == "enter" {
		return m.submit()
	}
	return m, m.todos.updateInputs(msg)
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.todos.cursor > 0 {
			m.todos.cursor--
		}
	case "down", "j":
		if m.todos.cursor < len(m.todos.items)-1 {
			m.todos.cursor++
		}
	case "e", "enter":
		if err := m.deps.editor.BeginEditAt(m.todos.items, m.todos.cursor); err != nil {
			m.todos.err = err.Error()
			return m, nil
		}
		m.todos.err = ""
		m.todos.loadBuffers(m.deps.editor)
		return m, m.todos.focus(focusTitle)
	case "d", "delete":
		// Resolve the row now; the live list may change before the
		// command runs.
		id, ok := todolist.ResolveIndex(m.todos.items, m.todos.cursor)
		if !ok {
			m.todos.err = todolist.ErrIndexOutOfView.Error()
			return m, nil
		}
		user := m.deps.binder.User()
		editor := m.deps.editor
		ctx := m.deps.ctx
		return m, func() tea.Msg {
			out, err := editor.Delete(ctx, user, id)
			return editResultMsg{out: out, err: err}
		}
	}
	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	editor := m.deps.editor
	editor.SetTitle(m.todos.title.Value())
	editor.SetDescription(m.todos.description.Value())

	user := m.deps.binder.User()
	ctx := m.deps.ctx
	return m, func() tea.Msg {
		out, err := editor.Submit(ctx, user)
		return editResultMsg{out: out, err: err}
	}
}

func (m model) handleEditResult(msg editResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// A blank title is ignored without feedback.
		if !errors.Is(msg.err, todolist.ErrEmptyTitle) {
			m.todos.err = msg.err.Error()
		}
		return m, nil
	}

	m.todos.err = ""
	var cmds []tea.Cmd
	if msg.out.Toast != "" {
		m.todos.toast = msg.out.Toast
		m.todos.toastSeq++
		seq := m.todos.toastSeq
		cmds = append(cmds, tea.Tick(m.deps.toastDuration, func(time.Time) tea.Msg {
			return clearToastMsg{seq: seq}
		}))
	}
	if msg.out.FocusTitle {
		m.todos.loadBuffers(m.deps.editor)
		cmds = append(cmds, m.todos.focus(focusTitle))
	}
	return m, tea.Batch(cmds...)
}

func (m model) updateLogoutConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.todos.confirmLogout = false
		gateway := m.deps.gateway
		// Sign-out notifies listeners synchronously, which send back
		// into the program, so it cannot run on the event loop.
		return m, func() tea.Msg {
			gateway.SignOut()
			return nil
		}
	case "n", "esc":
		m.todos.confirmLogout = false
	}
	return m, nil
}

func (v todosView) view(editor *todolist.Editor) string {
	var b strings.Builder

	header := "Todos"
	if v.userName != "" {
		header = fmt.Sprintf("Todos of %s", v.userName)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Title"), v.title.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Description"), v.description.View()))
	b.WriteString("\n\n")

	submit, cancel := "Add", "Clear"
	if editor.Mode() == todolist.Editing {
		submit, cancel = "Update", "Cancel"
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		activeButtonStyle.Render("["+submit+"] enter"),
		buttonStyle.Render("["+cancel+"] esc"),
	))
	b.WriteString("\n\n")

	if len(v.items) == 0 {
		b.WriteString(mutedStyle.Render("No todos yet."))
		b.WriteString("\n")
	}
	for i, todo := range v.items {
		line := fmt.Sprintf("%2d. %s", i+1, todo.Title)
		if todo.Description != "" {
			line += "  " + mutedStyle.Render(todo.Description)
		}
		if added := todo.AddedAt(); !added.IsZero() {
			line += "  " + mutedStyle.Render(added.Local().Format(addedLayout))
		}
		if v.focused == focusList && i == v.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if v.toast != "" {
		b.WriteString("\n")
		b.WriteString(toastStyle.Render(v.toast))
		b.WriteString("\n")
	}
	if v.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab: switch focus   e: edit   d: delete   ctrl+o: logout   ctrl+c: quit"))

	if v.confirmLogout {
		b.WriteString("\n\n")
		b.WriteString(modalStyle.Render(fmt.Sprintf("Are you sure you want to logout, %s?", v.userName) +
			"\n\n" + mutedStyle.Render("y: yes   n: no")))
	}
	return b.String()
}
