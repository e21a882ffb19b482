// Package auth holds the login and registration forms.
package auth

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/ui/components"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
)

// Authenticator is the part of the platform client the forms need.
type Authenticator interface {
	Login(ctx context.Context, req gateway.LoginRequest) (*gateway.User, error)
	Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.User, error)
}

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
)

const inputWidth = 32

type authDoneMsg struct {
	User *gateway.User
	Err  error
}

// AuthScreen is a login or registration form.
type AuthScreen struct {
	client Authenticator
	mode   mode
	inputs []components.TextInput
	role   gateway.Role
	focus  int // inputs, then the role toggle (register only), then submit
	busy   bool
	errMsg string
}

var _ screen.Screen = (*AuthScreen)(nil)
var _ screen.KeyHintProvider = (*AuthScreen)(nil)

// NewLogin returns the login form.
func NewLogin(client Authenticator) *AuthScreen {
	return &AuthScreen{
		client: client,
		mode:   modeLogin,
		inputs: []components.TextInput{
			components.NewTextInput("Email", "you@example.com", false, inputWidth),
			components.NewTextInput("Password", "", true, inputWidth),
		},
	}
}

// NewRegister returns the account creation form.
func NewRegister(client Authenticator) *AuthScreen {
	return &AuthScreen{
		client: client,
		mode:   modeRegister,
		role:   gateway.RoleStudent,
		inputs: []components.TextInput{
			components.NewTextInput("Email", "you@example.com", false, inputWidth),
			components.NewTextInput("Password", "at least 6 characters", true, inputWidth),
			components.NewTextInput("Confirm password", "", true, inputWidth),
		},
	}
}

func (s *AuthScreen) Init() tea.Cmd {
	return s.setFocus(0)
}

func (s *AuthScreen) Title() string {
	if s.mode == modeRegister {
		return "Create Account"
	}
	return "Log In"
}

func (s *AuthScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Back"},
	}
	if s.mode == modeRegister && s.focus == s.roleIndex() {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Role"})
	}
	return hints
}

// roleIndex is the focus position of the role toggle, or -1 on login.
func (s *AuthScreen) roleIndex() int {
	if s.mode != modeRegister {
		return -1
	}
	return len(s.inputs)
}

func (s *AuthScreen) submitIndex() int {
	if s.mode == modeRegister {
		return len(s.inputs) + 1
	}
	return len(s.inputs)
}

func (s *AuthScreen) setFocus(i int) tea.Cmd {
	n := s.submitIndex() + 1
	s.focus = (i%n + n) % n
	var cmd tea.Cmd
	for j := range s.inputs {
		if j == s.focus {
			cmd = s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
	return cmd
}

func (s *AuthScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = screen.ErrorText(msg.Err)
			return s, nil
		}
		user := msg.User
		return s, tea.Sequence(
			func() tea.Msg { return router.PopScreenMsg{} },
			func() tea.Msg { return screen.UserMsg{User: user} },
		)

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab", "up":
			return s, s.setFocus(s.focus - 1)
		case "enter":
			if s.focus < s.submitIndex() {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		case "left", "right", "space":
			if s.focus == s.roleIndex() {
				s.toggleRole()
				return s, nil
			}
		}
		if s.focus < len(s.inputs) {
			var cmd tea.Cmd
			s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
			return s, cmd
		}
	}
	return s, nil
}

func (s *AuthScreen) toggleRole() {
	if s.role == gateway.RoleTeacher {
		s.role = gateway.RoleStudent
	} else {
		s.role = gateway.RoleTeacher
	}
}

func (s *AuthScreen) submit() tea.Cmd {
	client := s.client
	if s.mode == modeLogin {
		req := gateway.LoginRequest{
			Email:    s.inputs[fieldEmail].Value(),
			Password: s.inputs[fieldPassword].Value(),
		}
		if err := gateway.ValidateLogin(req); err != nil {
			s.errMsg = err.Error()
			return nil
		}
		s.busy = true
		s.errMsg = ""
		return func() tea.Msg {
			user, err := client.Login(context.Background(), req)
			return authDoneMsg{User: user, Err: err}
		}
	}

	req := gateway.RegisterRequest{
		Email:           s.inputs[fieldEmail].Value(),
		Password:        s.inputs[fieldPassword].Value(),
		ConfirmPassword: s.inputs[fieldConfirm].Value(),
		Role:            s.role,
	}
	if err := gateway.ValidateRegistration(req); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.busy = true
	s.errMsg = ""
	return func() tea.Msg {
		user, err := client.Register(context.Background(), req)
		return authDoneMsg{User: user, Err: err}
	}
}

func (s *AuthScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(s.Title()))
	b.WriteString("\n")
	sub := "Sign in to take adaptive tests and save your learning style."
	if s.mode == modeRegister {
		sub = "Create an account to track your progress."
	}
	b.WriteString(theme.Subtitle.Width(width).Render(sub))
	b.WriteString("\n\n")

	var form strings.Builder
	for _, in := range s.inputs {
		form.WriteString(in.View())
		form.WriteString("\n\n")
	}
	if s.mode == modeRegister {
		form.WriteString(s.renderRole())
		form.WriteString("\n\n")
	}
	btn := components.NewButton(s.Title())
	btn.Focused = s.focus == s.submitIndex()
	form.WriteString(btn.View())

	card := theme.Card.Width(min(width-4, 60)).Render(form.String())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
	b.WriteString("\n\n")

	switch {
	case s.busy:
		b.WriteString(theme.Centered(width, theme.TextDim, "Contacting the platform..."))
	case s.errMsg != "":
		b.WriteString(theme.Centered(width, theme.Error, s.errMsg))
	}
	return b.String()
}

func (s *AuthScreen) renderRole() string {
	focused := s.focus == s.roleIndex()
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(18)
	if focused {
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Width(18)
	}
	opt := func(r gateway.Role, label string) string {
		if s.role == r {
			return theme.Selected.Render("(•) " + label)
		}
		return theme.Unselected.Render("( ) " + label)
	}
	return labelStyle.Render("I am a") + opt(gateway.RoleStudent, "Student") + "   " + opt(gateway.RoleTeacher, "Teacher")
}
