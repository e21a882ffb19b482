package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/credential"
	"github.com/abhisek/stylequiz/internal/gateway"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the learning platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email, err = ask(p, email, "Email: "); err != nil {
			return err
		}
		if password, err = ask(p, password, "Password: "); err != nil {
			return err
		}

		user, err := e.client.Login(cmd.Context(), gateway.LoginRequest{Email: email, Password: password})
		if err != nil {
			return friendly(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", displayName(user), user.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a platform account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		if email, err = ask(p, email, "Email: "); err != nil {
			return err
		}
		confirm := password
		if password == "" {
			if password, err = p.line("Password: "); err != nil {
				return err
			}
			if confirm, err = p.line("Confirm password: "); err != nil {
				return err
			}
		}

		user, err := e.client.Register(cmd.Context(), gateway.RegisterRequest{
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
			Role:            gateway.Role(strings.ToLower(role)),
		})
		if err != nil {
			return friendly(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account created. Logged in as %s.\n", displayName(user))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.client.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		claims, err := credential.Current(cmd.Context(), e.store.Credentials())
		if errors.Is(err, credential.ErrNoToken) {
			fmt.Fprintln(out, "Not logged in. Run: stylequiz login")
			return nil
		}
		if err != nil {
			return err
		}
		if claims.Expired(time.Now()) {
			fmt.Fprintln(out, "Your login has expired. Run: stylequiz login")
			return nil
		}

		user, err := e.client.Profile(cmd.Context())
		if err != nil {
			// The token decodes even when the platform is unreachable.
			e.log.Warn("profile unavailable", "error", err)
			fmt.Fprintf(out, "%s (%s), offline\n", claims.Email, claims.Role)
			return nil
		}
		fmt.Fprintf(out, "Name:   %s\n", displayName(user))
		fmt.Fprintf(out, "Email:  %s\n", user.Email)
		fmt.Fprintf(out, "Role:   %s\n", user.Role)
		if user.VarkType.Valid() {
			fmt.Fprintf(out, "Style:  %s\n", user.VarkType.Label())
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "Account email (prompted if empty)")
		c.Flags().String("password", "", "Account password (prompted if empty)")
	}
	registerCmd.Flags().String("role", string(gateway.RoleStudent), "Account role: student or teacher")
}

// ask returns val, or prompts for it when empty.
func ask(p *prompter, val, label string) (string, error) {
	if val != "" {
		return val, nil
	}
	return p.line(label)
}

// friendly replaces platform errors with the message meant for the learner.
func friendly(err error) error {
	var gwErr *assessment.GatewayError
	if errors.As(err, &gwErr) {
		return errors.New(gwErr.UserMessage())
	}
	return err
}

func displayName(u *gateway.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
