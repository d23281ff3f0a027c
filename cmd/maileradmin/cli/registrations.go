package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/screens"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

func newRegistrationsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "registrations",
		Aliases: []string{"pending"},
		Short:   "Review signups waiting for approval",
	}
	cmd.AddCommand(newRegistrationsListCmd(st))
	cmd.AddCommand(newRegistrationsApproveCmd(st))
	cmd.AddCommand(newRegistrationsExportCmd(st))
	cmd.AddCommand(newRegistrationsWatchCmd(st))
	return cmd
}

type registrationFilter struct {
	search      string
	hideExpired bool
}

func (f *registrationFilter) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "match username or email")
	cmd.Flags().BoolVar(&f.hideExpired, "hide-expired", false, "leave out expired codes")
}

func printRegistrations(app *App, regs *screens.Registrations, rows []models.PendingRegistration) error {
	if len(rows) == 0 {
		fmt.Fprintln(app.out, "No pending registrations.")
		return nil
	}
	now := time.Now()
	t := newTable(app.out, "ID", "USERNAME", "EMAIL", "REGISTERED", "CODE", "EXPIRES", "STATUS")
	for _, p := range rows {
		status := "Pending"
		if p.Expired(now) {
			status = "Expired"
		}
		t.row(p.ID, p.Username, p.Email, formatTime(p.CreatedAt), p.VerificationCode, formatTime(p.CodeExpires), status)
	}
	if err := t.flush(); err != nil {
		return err
	}
	if n := regs.ExpiredCount(); n > 0 {
		fmt.Fprintf(app.out, "%d expired\n", n)
	}
	return nil
}

func newRegistrationsListCmd(st *state) *cobra.Command {
	var (
		jsonOutput bool
		filter     registrationFilter
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.PendingRegistrationsPath) {
				return nil
			}
			regs := app.Registrations()
			if err := regs.Load(cmd.Context()); err != nil {
				return err
			}
			rows := regs.Filter(filter.search, filter.hideExpired)
			if jsonOutput {
				if rows == nil {
					rows = []models.PendingRegistration{}
				}
				return printJSON(app.out, rows)
			}
			return printRegistrations(app, regs, rows)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	filter.bind(cmd)
	return cmd
}

func newRegistrationsApproveCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id|email>",
		Short: "Verify a signup with its own code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.PendingRegistrationsPath) {
				return nil
			}
			regs := app.Registrations()
			if err := regs.Load(cmd.Context()); err != nil {
				return err
			}
			for _, p := range regs.Pending() {
				if p.ID == args[0] || strings.EqualFold(p.Email, args[0]) {
					return regs.Approve(cmd.Context(), p.ID)
				}
			}
			notify.Error(app.Notifier, "Registration not found")
			return shown(fmt.Errorf("registration %s not found", args[0]))
		},
	}
}

func newRegistrationsExportCmd(st *state) *cobra.Command {
	var (
		output string
		filter registrationFilter
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the listed registrations to a CSV file",
		Example: `  maileradmin registrations export --hide-expired
  maileradmin registrations export --output - > pending.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.PendingRegistrationsPath) {
				return nil
			}
			regs := app.Registrations()
			if err := regs.Load(cmd.Context()); err != nil {
				return err
			}
			rows := regs.Filter(filter.search, filter.hideExpired)
			if output == "-" {
				return regs.ExportCSV(app.out, rows)
			}
			if output == "" {
				output = screens.ExportFilename(time.Now())
			}
			if len(rows) == 0 {
				// no file for an empty export
				return regs.ExportCSV(io.Discard, rows)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := regs.ExportCSV(f, rows); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintf(app.out, "Wrote %d registrations to %s\n", len(rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `file to write, "-" for stdout (default pending-registrations-<date>.csv)`)
	filter.bind(cmd)
	return cmd
}

// notifyFunc adapts a function to notify.Notifier.
type notifyFunc func(notify.Notification)

func (f notifyFunc) Notify(n notify.Notification) { f(n) }

func newRegistrationsWatchCmd(st *state) *cobra.Command {
	var (
		interval time.Duration
		duration time.Duration
		filter   registrationFilter
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the pending list on screen, refreshing it periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := st.app
			if !app.Navigate(cmd.Context(), gate.PendingRegistrationsPath) {
				return nil
			}
			if interval <= 0 {
				interval = app.Opts.RefreshInterval
			}

			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			env := app.Env()
			var regs *screens.Registrations
			env.Notifier = notify.Multi{app.Notifier, notifyFunc(func(n notify.Notification) {
				if n.Message == screens.RefreshNotice {
					fmt.Fprintf(app.out, "\n%s\n", time.Now().Format(timeLayout))
					_ = printRegistrations(app, regs, regs.Filter(filter.search, filter.hideExpired))
				}
			})}
			regs = screens.NewRegistrations(env)
			if err := regs.Load(ctx); err != nil {
				return err
			}
			if err := printRegistrations(app, regs, regs.Filter(filter.search, filter.hideExpired)); err != nil {
				return err
			}

			regs.StartAutoRefresh(ctx, interval)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh period (default from refresh_interval)")
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (default until interrupted)")
	filter.bind(cmd)
	return cmd
}
