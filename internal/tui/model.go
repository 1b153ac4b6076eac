package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

type screen int

const (
	screenLogin screen = iota
	screenSignUp
	screenTodos
)

type (
	eventMsg      struct{ msg tea.Msg }
	todosMsg      []models.Todo
	signedOutMsg  struct{}
	navigateMsg   struct{}
	clearToastMsg struct{ seq int }
	profileMsg    struct{ name string }
	signedUpMsg   struct{ out todolist.SignUpOutcome }
	editResultMsg struct {
		out todolist.Outcome
		err error
	}
	loginResultMsg struct {
		out todolist.LoginOutcome
		err error
	}
)

type model struct {
	deps *deps

	width  int
	height int

	screen screen
	busy   bool

	// alert is a modal message dismissed with enter. navigateOnDismiss
	// moves to the todo list when it is dismissed.
	alert             string
	navigateOnDismiss bool

	login  loginForm
	signUp signUpForm
	todos  todosView
}

func newModel(d *deps) model {
	return model{
		deps:   d,
		screen: screenLogin,
		login:  newLoginForm(),
		signUp: newSignUpForm(),
		todos:  newTodosView(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.deps.start, m.deps.waitForEvent)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		next, cmd := m.Update(msg.msg)
		return next, tea.Batch(cmd, m.deps.waitForEvent)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case todosMsg:
		m.todos.setItems(msg)
		return m, nil

	case signedOutMsg:
		return m.showLogin(), nil

	case navigateMsg:
		if m.deps.binder.User() == nil {
			return m, nil
		}
		return m.showTodos()

	case profileMsg:
		m.todos.userName = msg.name
		return m, nil

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case signedUpMsg:
		return m.handleSignedUp(msg)

	case editResultMsg:
		return m.handleEditResult(msg)

	case clearToastMsg:
		if msg.seq == m.todos.toastSeq {
			m.todos.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.alert != "" {
			return m.updateAlert(msg)
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenSignUp:
			return m.updateSignUp(msg)
		case screenTodos:
			return m.updateTodos(msg)
		}
	}

	return m.forwardToInputs(msg)
}

func (m model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.alert = ""
		if m.navigateOnDismiss {
			m.navigateOnDismiss = false
			next, cmd := m.showTodos()
			return next, tea.Batch(cmd, m.refreshProfile)
		}
	}
	return m, nil
}

// forwardToInputs passes non-key messages such as cursor blinks to the
// inputs of the visible screen.
func (m model) forwardToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		cmd = m.login.update(msg)
	case screenSignUp:
		cmd = m.signUp.update(msg)
	case screenTodos:
		cmd = m.todos.updateInputs(msg)
	}
	return m, cmd
}

func (m model) showLogin() model {
	m.screen = screenLogin
	m.busy = false
	m.alert = ""
	m.navigateOnDismiss = false
	m.deps.editor.Reset()
	m.todos = newTodosView()
	m.login.reset()
	return m
}

func (m model) showTodos() (tea.Model, tea.Cmd) {
	m.screen = screenTodos
	m.todos.userName = m.deps.binder.UserName()
	m.todos.setItems(m.deps.sync.Display())
	return m, m.todos.focus(focusTitle)
}

func (m model) refreshProfile() tea.Msg {
	m.deps.binder.RefreshProfile(m.deps.ctx)
	return profileMsg{name: m.deps.binder.UserName()}
}

func (m model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.login.view()
	case screenSignUp:
		body = m.signUp.view()
	case screenTodos:
		body = m.todos.view(m.deps.editor)
	}

	if m.alert != "" {
		body = lipgloss.JoinVertical(lipgloss.Left,
			body,
			"",
			modalStyle.Render(m.alert+"\n\n"+mutedStyle.Render("enter: OK")),
		)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
