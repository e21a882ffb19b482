package auth

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/gateway"
)

type fakeAuth struct {
	logins    []gateway.LoginRequest
	registers []gateway.RegisterRequest
	err       error
}

func (f *fakeAuth) Login(_ context.Context, req gateway.LoginRequest) (*gateway.User, error) {
	f.logins = append(f.logins, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.User{Email: req.Email, Role: gateway.RoleStudent}, nil
}

func (f *fakeAuth) Register(_ context.Context, req gateway.RegisterRequest) (*gateway.User, error) {
	f.registers = append(f.registers, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.User{Email: req.Email, Role: req.Role}, nil
}

func pressEnterOnSubmit(t *testing.T, s *AuthScreen) tea.Cmd {
	t.Helper()
	s.setFocus(s.submitIndex())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestLogin_Success(t *testing.T) {
	fa := &fakeAuth{}
	s := NewLogin(fa)
	s.Init()
	s.inputs[fieldEmail].SetValue("ada@example.com")
	s.inputs[fieldPassword].SetValue("secret1")

	cmd := pressEnterOnSubmit(t, s)
	if cmd == nil || !s.busy {
		t.Fatal("submit should start a request")
	}
	_, done := s.Update(cmd())
	if done == nil {
		t.Fatal("success should pop and announce the user")
	}
	if len(fa.logins) != 1 || fa.logins[0].Email != "ada@example.com" {
		t.Errorf("logins = %+v", fa.logins)
	}
	if s.busy {
		t.Error("busy should clear after the response")
	}
}

func TestLogin_ValidationStaysLocal(t *testing.T) {
	fa := &fakeAuth{}
	s := NewLogin(fa)
	s.inputs[fieldEmail].SetValue("not-an-email")

	if cmd := pressEnterOnSubmit(t, s); cmd != nil {
		t.Fatal("invalid form should not hit the platform")
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "is not a valid address") || !strings.Contains(view, "is required") {
		t.Errorf("expected both field errors:\n%s", view)
	}
	if len(fa.logins) != 0 {
		t.Error("no request expected")
	}
}

func TestLogin_PlatformErrorShown(t *testing.T) {
	fa := &fakeAuth{err: &assessment.GatewayError{Op: "log in", Status: 401, Message: "Invalid credentials"}}
	s := NewLogin(fa)
	s.inputs[fieldEmail].SetValue("ada@example.com")
	s.inputs[fieldPassword].SetValue("wrong")

	cmd := pressEnterOnSubmit(t, s)
	s.Update(cmd())
	if !strings.Contains(s.View(100, 30), "Invalid credentials") {
		t.Error("expected the platform message")
	}
}

func TestRegister_RoleToggleAndSubmit(t *testing.T) {
	fa := &fakeAuth{}
	s := NewRegister(fa)
	s.inputs[fieldEmail].SetValue("grace@example.com")
	s.inputs[fieldPassword].SetValue("hunter22")
	s.inputs[fieldConfirm].SetValue("hunter22")

	s.setFocus(s.roleIndex())
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if s.role != gateway.RoleTeacher {
		t.Fatalf("role = %q, want teacher", s.role)
	}

	cmd := pressEnterOnSubmit(t, s)
	if cmd == nil {
		t.Fatal("expected a register request")
	}
	s.Update(cmd())
	if len(fa.registers) != 1 || fa.registers[0].Role != gateway.RoleTeacher {
		t.Errorf("registers = %+v", fa.registers)
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	s := NewRegister(&fakeAuth{})
	s.inputs[fieldEmail].SetValue("grace@example.com")
	s.inputs[fieldPassword].SetValue("hunter22")
	s.inputs[fieldConfirm].SetValue("hunter23")

	if cmd := pressEnterOnSubmit(t, s); cmd != nil {
		t.Fatal("mismatch should be caught locally")
	}
	if !strings.Contains(s.View(100, 30), "passwords do not match") {
		t.Error("expected mismatch message")
	}
}

func TestFocusWraps(t *testing.T) {
	s := NewLogin(&fakeAuth{})
	s.Init()
	for i := 0; i < 3; i++ {
		s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	}
	if s.focus != 0 {
		t.Errorf("focus = %d after a full cycle, want 0", s.focus)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.focus != s.submitIndex() {
		t.Errorf("focus = %d, want submit", s.focus)
	}
}

func TestSuccessPopsForm(t *testing.T) {
	s := NewLogin(&fakeAuth{})
	s.busy = true
	_, cmd := s.Update(authDoneMsg{User: &gateway.User{Email: "ada@example.com"}})
	if cmd == nil {
		t.Fatal("expected follow-up commands")
	}
	if s.busy || s.errMsg != "" {
		t.Errorf("busy=%v err=%q after success", s.busy, s.errMsg)
	}
}
