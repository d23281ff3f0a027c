package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atinyakov/MailerAdmin/internal/client/forms"
	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/screens"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

func newUsersCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "List and manage accounts",
	}
	cmd.AddCommand(newUsersListCmd(st))
	cmd.AddCommand(newUsersShowCmd(st))
	cmd.AddCommand(newUserActionCmd(st, "restrict", "Restrict an account's sending", (*screens.Users).Restrict))
	cmd.AddCommand(newUserActionCmd(st, "suspend", "Suspend an account", (*screens.Users).Suspend))
	cmd.AddCommand(newUserActionCmd(st, "activate", "Lift a restriction or suspension", (*screens.Users).Activate))
	cmd.AddCommand(newUserActionCmd(st, "delete", "Delete an account", (*screens.Users).Delete))
	cmd.AddCommand(newUsersRoleCmd(st))
	cmd.AddCommand(newUsersSaveRoleCmd(st))
	cmd.AddCommand(newUsersResetPasswordCmd(st))
	return cmd
}

// loadUser refreshes the users screen and checks that id is on it.
func loadUser(ctx context.Context, app *App, id string) (*screens.Users, error) {
	users := app.Users()
	if err := users.Load(ctx); err != nil {
		return nil, err
	}
	if _, ok := users.Get(id); !ok {
		notify.Error(app.Notifier, "User not found")
		return nil, shown(fmt.Errorf("user %s not found", id))
	}
	return users, nil
}

func newUsersListCmd(st *state) *cobra.Command {
	var (
		jsonOutput bool
		search     string
		status     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Example: `  maileradmin users list --status restricted
  maileradmin users list --search alice --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.UsersPath) {
				return nil
			}
			filter, err := parseStatus(status)
			if err != nil {
				return err
			}
			users := app.Users()
			if err := users.Load(cmd.Context()); err != nil {
				return err
			}
			matched := users.Filter(search, filter)
			if jsonOutput {
				return printJSON(app.out, matched)
			}
			if len(matched) == 0 {
				fmt.Fprintln(app.out, "No users found.")
				return nil
			}
			staged := map[string]screens.UserRow{}
			for _, r := range users.View() {
				if r.Edited {
					staged[r.ID] = r
				}
			}
			t := newTable(app.out, "ID", "USERNAME", "EMAIL", "ROLE", "STATUS", "PLAN", "CREATED")
			for _, u := range matched {
				role := string(u.Role)
				if r, ok := staged[u.ID]; ok {
					role = string(r.Role) + " (unsaved)"
				}
				t.row(u.ID, u.Username, u.Email, role, u.Status(), u.PlanName(), formatTime(u.CreatedAt))
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&search, "search", "", "match username or email")
	cmd.Flags().StringVar(&status, "status", "", "active, restricted or suspended")
	return cmd
}

func parseStatus(s string) (models.UserStatus, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "active":
		return models.StatusActive, nil
	case "restricted":
		return models.StatusRestricted, nil
	case "suspended":
		return models.StatusSuspended, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

func newUsersShowCmd(st *state) *cobra.Command {
	var (
		jsonOutput bool
		period     string
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an account and its activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), "/user/"+args[0]) {
				return nil
			}
			detail, err := screens.LoadUserDetail(cmd.Context(), app.Env(), args[0], models.Period(period))
			if err != nil {
				return shown(err)
			}
			if jsonOutput {
				return printJSON(app.out, detail)
			}
			u := detail.User
			fmt.Fprintf(app.out, "%s <%s>\nid: %s\nrole: %s\nstatus: %s\nplan: %s\ncreated: %s\n\n",
				u.Username, u.Email, u.ID, u.Role, u.Status(), u.PlanName(), formatTime(u.CreatedAt))
			s := detail.Stats
			fmt.Fprintf(app.out, "Last %s: %d sent, %d replies across %d campaigns\n", s.Period, s.EmailsSent, s.Replies, s.Campaigns)
			if len(s.Activity) == 0 {
				return nil
			}
			t := newTable(app.out, "DAY", "SENT", "OPENS", "REPLIES")
			for _, p := range s.Activity {
				t.row(p.Day, p.Sent, p.Opens, p.Replies)
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&period, "period", string(models.PeriodWeek), "day, week or month")
	return cmd
}

func newUserActionCmd(st *state, use, short string, action func(*screens.Users, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.RestrictionsPath) {
				return nil
			}
			users, err := loadUser(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return action(users, cmd.Context(), args[0])
		},
	}
}

func newUsersRoleCmd(st *state) *cobra.Command {
	var stage bool
	cmd := &cobra.Command{
		Use:   "role <id> <role>",
		Short: "Change an account's role",
		Long: `Change an account's role to admin, active, restricted or user.

With --stage the change is only recorded; "users save-role" sends it.
Staged roles are kept for the life of an interactive shell.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.UsersPath) {
				return nil
			}
			users, err := loadUser(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			role := models.Role(strings.ToLower(args[1]))
			if stage {
				users.StageRole(args[0], role)
				fmt.Fprintf(app.out, "Role %s staged for %s\n", role, args[0])
				return nil
			}
			return users.SetRole(cmd.Context(), args[0], role)
		},
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "record the change without sending it")
	return cmd
}

func newUsersSaveRoleCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "save-role <id>",
		Short: "Send a staged role change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.UsersPath) {
				return nil
			}
			users, err := loadUser(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return users.SaveRole(cmd.Context(), args[0])
		},
	}
}

func newUsersResetPasswordCmd(st *state) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.UsersPath) {
				return nil
			}
			if err := ask(&password, app.prompt.Secret, "New password: "); err != nil {
				return err
			}
			if err := app.check(forms.AdminReset{UserID: args[0], NewPassword: password}.Validate()); err != nil {
				return err
			}
			users, err := loadUser(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return users.ResetPassword(cmd.Context(), args[0], password)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "new password (prompted if omitted)")
	return cmd
}
