package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a column of text inputs with one focused at a time.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
}

func newInput(placeholder string, password bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 40
	if password {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return f.inputs[i].Value()
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
	f.err = ""
}

func (f *form) view(title, help string) string {
	rows := []string{titleStyle.Render(title)}
	for i, in := range f.inputs {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(f.labels[i]), in.View()))
	}
	if f.err != "" {
		rows = append(rows, "", errorStyle.Render(f.err))
	}
	rows = append(rows, "", mutedStyle.Render(help))
	return strings.Join(rows, "\n")
}

const (
	loginEmail = iota
	loginPassword
)

type loginForm struct{ form }

func newLoginForm() loginForm {
	f := loginForm{form{
		labels: []string{"Email", "Password"},
		inputs: []textinput.Model{
			newInput("you@example.com", false),
			newInput("password", true),
		},
	}}
	f.inputs[loginEmail].Focus()
	return f
}

func (f loginForm) view() string {
	return f.form.view("Login", "tab: next field   enter: login   ctrl+n: sign up   ctrl+c: quit")
}

const (
	signUpName = iota
	signUpEmail
	signUpPassword
)

type signUpForm struct{ form }

func newSignUpForm() signUpForm {
	f := signUpForm{form{
		labels: []string{"Name", "Email", "Password"},
		inputs: []textinput.Model{
			newInput("Your name", false),
			newInput("you@example.com", false),
			newInput("password", true),
		},
	}}
	f.inputs[signUpName].Focus()
	return f
}

func (f signUpForm) view() string {
	return f.form.view("Sign up", "tab: next field   enter: sign up   ctrl+l: back to login   ctrl+c: quit")
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.login.move(1)
	case "shift+tab", "up":
		return m, m.login.move(-1)
	case "ctrl+n":
		m.screen = screenSignUp
		m.signUp.reset()
		return m, textinput.Blink
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.login.err = ""
		email, password := m.login.value(loginEmail), m.login.value(loginPassword)
		return m, func() tea.Msg {
			out, err := m.deps.flow.Login(m.deps.ctx, email, password)
			return loginResultMsg{out: out, err: err}
		}
	}
	return m, m.login.update(msg)
}

func (m model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.login.err = msg.err.Error()
		return m, nil
	}

	m.alert = msg.out.Alert
	if !msg.out.Navigate {
		return m, nil
	}
	return m, tea.Tick(msg.out.NavigateAfter, func(time.Time) tea.Msg {
		return navigateMsg{}
	})
}

func (m model) updateSignUp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.signUp.move(1)
	case "shift+tab", "up":
		return m, m.signUp.move(-1)
	case "ctrl+l", "esc":
		m.screen = screenLogin
		m.login.reset()
		return m, textinput.Blink
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.signUp.err = ""
		name := m.signUp.value(signUpName)
		email := m.signUp.value(signUpEmail)
		password := m.signUp.value(signUpPassword)
		return m, func() tea.Msg {
			return signedUpMsg{out: m.deps.flow.SignUp(m.deps.ctx, name, email, password)}
		}
	}
	return m, m.signUp.update(msg)
}

func (m model) handleSignedUp(msg signedUpMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.alert = msg.out.Alert
	m.navigateOnDismiss = msg.out.NavigateOnDismiss
	if msg.out.Err != nil {
		m.signUp.err = msg.out.Err.Error()
	}
	return m, nil
}
