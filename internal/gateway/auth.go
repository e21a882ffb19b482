package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/vark"
)

// Role is the account type on the platform.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// MinPasswordLength is the shortest password the platform accepts.
const MinPasswordLength = 6

// User is a platform account.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	VarkType  vark.Style // empty until the questionnaire is done
	CreatedAt string
}

type wireUser struct {
	ID        flexID `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	VarkType  string `json:"vark_type"`
	CreatedAt string `json:"created_at"`
}

func (w wireUser) toUser() *User {
	return &User{
		ID:        string(w.ID),
		Email:     w.Email,
		Name:      w.Name,
		Role:      Role(w.Role),
		VarkType:  vark.Style(w.VarkType),
		CreatedAt: w.CreatedAt,
	}
}

type wireAuth struct {
	User  wireUser `json:"user"`
	Token string   `json:"token"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration form. ConfirmPassword is checked
// locally and never sent.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Role            Role   `json:"role"`
}

// ValidateLogin checks the login form before any request is made.
func ValidateLogin(req LoginRequest) error {
	var errs []error
	if err := validateEmail(req.Email); err != nil {
		errs = append(errs, err)
	}
	if req.Password == "" {
		errs = append(errs, &assessment.ValidationError{Field: "password", Message: "is required"})
	}
	return errors.Join(errs...)
}

// ValidateRegistration checks the registration form.
func ValidateRegistration(req RegisterRequest) error {
	var errs []error
	if err := validateEmail(req.Email); err != nil {
		errs = append(errs, err)
	}
	switch {
	case req.Password == "" || req.ConfirmPassword == "":
		errs = append(errs, &assessment.ValidationError{Field: "password", Message: "password and confirmation are required"})
	case req.Password != req.ConfirmPassword:
		errs = append(errs, &assessment.ValidationError{Field: "password", Message: "passwords do not match"})
	case len(req.Password) < MinPasswordLength:
		errs = append(errs, &assessment.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		})
	}
	if req.Role != RoleStudent && req.Role != RoleTeacher {
		errs = append(errs, &assessment.ValidationError{Field: "role", Message: "must be student or teacher"})
	}
	return errors.Join(errs...)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &assessment.ValidationError{Field: "email", Message: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &assessment.ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	if err := ValidateLogin(req); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)
	return c.authenticate(ctx, "log in", "/auth/login", req)
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)
	return c.authenticate(ctx, "register", "/auth/register", req)
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any) (*User, error) {
	var wire wireAuth
	err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: body}, &wire)
	if err != nil {
		return nil, err
	}
	if wire.Token == "" {
		return nil, &assessment.GatewayError{Op: op, Err: fmt.Errorf("%w: no token issued", ErrMalformed)}
	}
	if err := c.creds.SetToken(ctx, wire.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	c.purgeSubjects()
	return wire.User.toUser(), nil
}

// Profile returns the account behind the stored token.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var wire wireUser
	err := c.do(ctx, call{
		op:     "load profile",
		method: http.MethodGet,
		path:   "/profile",
		retry:  true,
	}, &wire)
	if err != nil {
		return nil, err
	}
	if wire.Email == "" && wire.ID == "" {
		return nil, &assessment.GatewayError{Op: "load profile", Err: fmt.Errorf("%w: empty profile", ErrMalformed)}
	}
	return wire.toUser(), nil
}

// Logout forgets the stored token. The platform keeps no session state to
// revoke.
func (c *Client) Logout(ctx context.Context) error {
	c.purgeSubjects()
	if err := c.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
