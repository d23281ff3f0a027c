package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/MailerAdmin/internal/client/forms"
	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// ---------- login ----------

func newLoginCmd(st *state) *cobra.Command {
	var f forms.Login
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session token",
		Example: `  maileradmin login --email admin@example.com
  maileradmin login   # prompts for email and password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.LoginPath) {
				return nil
			}
			if err := ask(&f.Email, app.prompt.Line, "Email: "); err != nil {
				return err
			}
			if err := ask(&f.Password, app.prompt.Secret, "Password: "); err != nil {
				return err
			}
			if err := app.check(f.Validate()); err != nil {
				return err
			}
			if err := app.Session.Login(cmd.Context(), f.Email, f.Password); err != nil {
				return err
			}
			if u := app.Session.State().User; u != nil {
				fmt.Fprintf(app.out, "Signed in as %s (%s)\n", u.Username, u.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Email, "email", "", "account email")
	cmd.Flags().StringVar(&f.Password, "password", "", "account password (prompted if omitted)")
	return cmd
}

// ---------- register ----------

func newRegisterCmd(st *state) *cobra.Command {
	var f forms.Register
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.RegisterPath) {
				return nil
			}
			if err := ask(&f.Username, app.prompt.Line, "Username: "); err != nil {
				return err
			}
			if err := ask(&f.Email, app.prompt.Line, "Email: "); err != nil {
				return err
			}
			if f.Password == "" {
				if err := ask(&f.Password, app.prompt.Secret, "Password: "); err != nil {
					return err
				}
				if err := ask(&f.ConfirmPassword, app.prompt.Secret, "Confirm password: "); err != nil {
					return err
				}
			} else if f.ConfirmPassword == "" {
				f.ConfirmPassword = f.Password
			}
			if err := app.check(f.Validate()); err != nil {
				return err
			}
			req := models.RegisterRequest{Username: f.Username, Email: f.Email, Password: f.Password}
			return app.Session.Register(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&f.Username, "username", "", "display name")
	cmd.Flags().StringVar(&f.Email, "email", "", "account email")
	cmd.Flags().StringVar(&f.Password, "password", "", "password (prompted if omitted)")
	return cmd
}

// ---------- logout ----------

func newLogoutCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			st.app.Session.Logout()
			return nil
		},
	}
}

// ---------- whoami ----------

func newWhoamiCmd(st *state) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.DashboardPath) {
				return nil
			}
			u := app.Session.State().User
			if jsonOutput {
				return printJSON(app.out, u)
			}
			fmt.Fprintf(app.out, "%s <%s>\nrole: %s\nstatus: %s\nplan: %s\n",
				u.Username, u.Email, u.Role, u.Status(), u.PlanName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// ---------- forgot-password ----------

func newForgotPasswordCmd(st *state) *cobra.Command {
	var f forms.ForgotPassword
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request password reset instructions by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.ForgotPasswordPath) {
				return nil
			}
			if err := ask(&f.Email, app.prompt.Line, "Email: "); err != nil {
				return err
			}
			if err := app.check(f.Validate()); err != nil {
				return err
			}
			return app.Session.ForgotPassword(cmd.Context(), f.Email)
		},
	}
	cmd.Flags().StringVar(&f.Email, "email", "", "account email")
	return cmd
}

// ---------- reset-password ----------

func newResetPasswordCmd(st *state) *cobra.Command {
	var f forms.ResetPassword
	cmd := &cobra.Command{
		Use:     "reset-password",
		Short:   "Set a new password with a reset token",
		Example: `  maileradmin reset-password --token 3f1c...   # prompts for the new password`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.ResetPasswordPath+"?token="+f.Token) {
				return nil
			}
			if f.Password == "" {
				if err := ask(&f.Password, app.prompt.Secret, "New password: "); err != nil {
					return err
				}
				if err := ask(&f.ConfirmPassword, app.prompt.Secret, "Confirm password: "); err != nil {
					return err
				}
			} else if f.ConfirmPassword == "" {
				f.ConfirmPassword = f.Password
			}
			if err := app.check(f.Validate()); err != nil {
				return err
			}
			return app.Session.ResetPassword(cmd.Context(), f.Token, f.Password)
		},
	}
	cmd.Flags().StringVar(&f.Token, "token", "", "reset token from the email")
	cmd.Flags().StringVar(&f.Password, "password", "", "new password (prompted if omitted)")
	return cmd
}
