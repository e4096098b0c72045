package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angelmondragon/spesa/internal/account"
)

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focused  int
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 32
	return in
}

func newLoginForm() loginForm {
	password := newInput("Password", 64)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	return loginForm{username: newInput("Username", 50), password: password}
}

func (f *loginForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.username, &f.password}
}

func (f *loginForm) focus() tea.Cmd {
	return focusAt(f.inputs(), f.focused)
}

func (f *loginForm) reset() {
	f.username.SetValue("")
	f.password.SetValue("")
	f.focused = 0
}

type registerForm struct {
	username  textinput.Model
	email     textinput.Model
	firstName textinput.Model
	lastName  textinput.Model
	password  textinput.Model
	focused   int
}

func newRegisterForm() registerForm {
	password := newInput("Password (min 6)", 64)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	return registerForm{
		username:  newInput("Username", 50),
		email:     newInput("Email", 120),
		firstName: newInput("First name", 60),
		lastName:  newInput("Last name", 60),
		password:  password,
	}
}

func (f *registerForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.username, &f.email, &f.firstName, &f.lastName, &f.password}
}

func (f *registerForm) focus() tea.Cmd {
	return focusAt(f.inputs(), f.focused)
}

func (f *registerForm) reset() {
	for _, in := range f.inputs() {
		in.SetValue("")
	}
	f.focused = 0
}

func (f *registerForm) request() account.RegisterRequest {
	return account.RegisterRequest{
		Username:  f.username.Value(),
		Email:     f.email.Value(),
		FirstName: f.firstName.Value(),
		LastName:  f.lastName.Value(),
		Password:  f.password.Value(),
	}
}

func focusAt(inputs []*textinput.Model, i int) tea.Cmd {
	for j, in := range inputs {
		if j != i {
			in.Blur()
		}
	}
	return inputs[i].Focus()
}

// moveFocus cycles through inputs and reports the new index.
func moveFocus(inputs []*textinput.Model, current, delta int) (int, tea.Cmd) {
	next := (current + delta + len(inputs)) % len(inputs)
	return next, focusAt(inputs, next)
}

func updateFocused(inputs []*textinput.Model, i int, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	*inputs[i], cmd = inputs[i].Update(msg)
	return cmd
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	f := &m.login
	inputs := f.inputs()
	switch msg.String() {
	case "esc":
		return tea.Quit
	case "ctrl+n":
		m.switchTo(screenRegister)
		return m.register.focus()
	case "tab", "down":
		var cmd tea.Cmd
		f.focused, cmd = moveFocus(inputs, f.focused, 1)
		return cmd
	case "shift+tab", "up":
		var cmd tea.Cmd
		f.focused, cmd = moveFocus(inputs, f.focused, -1)
		return cmd
	case "enter":
		if f.focused < len(inputs)-1 {
			var cmd tea.Cmd
			f.focused, cmd = moveFocus(inputs, f.focused, 1)
			return cmd
		}
		return m.submitLogin()
	}
	return updateFocused(inputs, f.focused, msg)
}

func (m *Model) submitLogin() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	m.flash = ""
	ctx := m.ctx
	acct := m.deps.Account
	username := m.login.username.Value()
	password := m.login.password.Value()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		claims, err := acct.Login(ctx, username, password)
		return loggedInMsg{claims: claims, err: err}
	})
}

func (m *Model) updateRegister(msg tea.KeyMsg) tea.Cmd {
	f := &m.register
	inputs := f.inputs()
	switch msg.String() {
	case "esc":
		m.switchTo(screenLogin)
		return m.login.focus()
	case "tab", "down":
		var cmd tea.Cmd
		f.focused, cmd = moveFocus(inputs, f.focused, 1)
		return cmd
	case "shift+tab", "up":
		var cmd tea.Cmd
		f.focused, cmd = moveFocus(inputs, f.focused, -1)
		return cmd
	case "enter":
		if f.focused < len(inputs)-1 {
			var cmd tea.Cmd
			f.focused, cmd = moveFocus(inputs, f.focused, 1)
			return cmd
		}
		return m.submitRegister()
	}
	return updateFocused(inputs, f.focused, msg)
}

func (m *Model) submitRegister() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	m.flash = ""
	ctx := m.ctx
	acct := m.deps.Account
	req := m.register.request()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		err := acct.Register(ctx, req)
		return registeredMsg{username: strings.TrimSpace(req.Username), err: err}
	})
}

func (m *Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("spesa"))
	b.WriteString(m.styles.Muted.Render("  sign in to your shopping list"))
	b.WriteString("\n\n")
	for _, in := range m.login.inputs() {
		b.WriteString(m.styles.Input.Render(in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter sign in • tab next field • ctrl+n create account • esc quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *Model) viewRegister() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Create account"))
	b.WriteString("\n\n")
	for _, in := range m.register.inputs() {
		b.WriteString(m.styles.Input.Render(in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter submit • tab next field • esc back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
