// Package cli implements the maileradmin command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/client/reconcile"
	"github.com/atinyakov/MailerAdmin/internal/client/session"
	"github.com/atinyakov/MailerAdmin/internal/config"
)

// state is shared by every command of one process. The shell reuses it
// across lines so the App, and with it staged edits, survives.
type state struct {
	v          *viper.Viper
	configFile string
	app        *App

	version   string
	buildDate string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	inShell bool
}

// Execute builds the command tree and runs it with os.Args.
func Execute(ctx context.Context, version, buildDate string) error {
	st := &state{
		v:         viper.New(),
		version:   version,
		buildDate: buildDate,
		in:        os.Stdin,
		out:       os.Stdout,
		errOut:    os.Stderr,
	}
	defer st.close()
	return st.run(ctx, os.Args[1:])
}

func (st *state) run(ctx context.Context, args []string) error {
	cmd := newRootCmd(st)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !reported(err) {
		fmt.Fprintln(st.errOut, "Error:", err)
	}
	return err
}

func (st *state) close() {
	if st.app != nil {
		st.app.Close()
	}
}

// reported tells whether err was already shown to the operator as a
// notification.
func reported(err error) bool {
	var sessErr *session.Error
	var recErr *reconcile.Error
	var local *apierr.LocalError
	var quiet *shownError
	return errors.As(err, &sessErr) ||
		errors.As(err, &recErr) ||
		errors.As(err, &local) ||
		errors.As(err, &quiet)
}

// shownError marks an error whose notification was already printed.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }

func (e *shownError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return &shownError{err: err}
}

func newRootCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maileradmin",
		Short: "Administer the email campaign platform",
		Long: `maileradmin manages users, plans, pending registrations and campaigns
of the email campaign platform through its admin API.

Run "maileradmin login" first; the session token is kept in the data
directory until "maileradmin logout".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if st.app != nil {
				return nil
			}
			opts, err := config.Load(st.v, st.configFile)
			if err != nil {
				return err
			}
			app, err := NewApp(opts, st.in, st.out, st.errOut)
			if err != nil {
				return err
			}
			st.app = app
			return nil
		},
	}
	cmd.SetIn(st.in)
	cmd.SetOut(st.out)
	cmd.SetErr(st.errOut)

	if !st.inShell {
		flags := cmd.PersistentFlags()
		flags.StringVar(&st.configFile, "config", "", "config file (default is ./maileradmin.yaml)")
		flags.String("api-url", "", "admin API base URL")
		flags.String("data-dir", "", "directory holding the session token (default ~/.maileradmin)")
		flags.String("log-level", "", "log level (debug, info, warn, error)")
		_ = st.v.BindPFlag(config.KeyAPIURL, flags.Lookup("api-url"))
		_ = st.v.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
		_ = st.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	}

	cmd.AddCommand(newLoginCmd(st))
	cmd.AddCommand(newRegisterCmd(st))
	cmd.AddCommand(newLogoutCmd(st))
	cmd.AddCommand(newWhoamiCmd(st))
	cmd.AddCommand(newForgotPasswordCmd(st))
	cmd.AddCommand(newResetPasswordCmd(st))
	cmd.AddCommand(newDashboardCmd(st))
	cmd.AddCommand(newBillingCmd(st))
	cmd.AddCommand(newUsersCmd(st))
	cmd.AddCommand(newPlansCmd(st))
	cmd.AddCommand(newRegistrationsCmd(st))
	cmd.AddCommand(newCampaignsCmd(st))
	cmd.AddCommand(newVersionCmd(st))
	if !st.inShell {
		cmd.AddCommand(newShellCmd(st))
	}
	return cmd
}
