package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/client/api"
	"github.com/atinyakov/MailerAdmin/internal/client/forms"
	"github.com/atinyakov/MailerAdmin/internal/client/gate"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/screens"
	"github.com/atinyakov/MailerAdmin/internal/client/session"
	"github.com/atinyakov/MailerAdmin/internal/client/storage"
	"github.com/atinyakov/MailerAdmin/internal/config"
	"github.com/atinyakov/MailerAdmin/internal/logger"
)

// App is one console run: the session, the notification sink and the
// screens opened so far.
type App struct {
	Opts     *config.Options
	Log      *zap.Logger
	Session  *session.Store
	Notifier notify.Notifier

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	prompt *prompter

	initialized bool

	plans         *screens.Plans
	users         *screens.Users
	registrations *screens.Registrations
	campaigns     *screens.Campaigns
}

// NewApp wires the session and notifications for opts. Notifications are
// printed to errOut.
func NewApp(opts *config.Options, in io.Reader, out, errOut io.Writer) (*App, error) {
	log := logger.NewWithWriter(errOut)
	if err := log.Init(opts.LogLevel); err != nil {
		return nil, err
	}

	base, err := api.New(opts.APIURL,
		api.WithTimeout(opts.Timeout),
		api.WithLogger(log.Log.Named("api")),
	)
	if err != nil {
		return nil, err
	}

	notifier := notify.Multi{notify.NewWriter(errOut), notify.NewCenter(log.Log.Named("notify"))}
	tokens := storage.NewFileStore(opts.DataDir)
	return &App{
		Opts:     opts,
		Log:      log.Log,
		Session:  session.New(base, tokens, notifier, log.Log.Named("session")),
		Notifier: notifier,
		in:       in,
		out:      out,
		errOut:   errOut,
		prompt:   newPrompter(in, errOut),
	}, nil
}

// Close releases the session.
func (a *App) Close() {
	a.Session.Dispose()
	_ = a.Log.Sync()
}

// Navigate restores the session on first use and runs the route gate for
// target. It reports false, after printing where the gate sends the
// operator, when the command must not run.
func (a *App) Navigate(ctx context.Context, target string) bool {
	if !a.initialized {
		a.Session.Init(ctx)
		a.initialized = true
	}
	d := gate.Decide(a.Session.State(), target)
	switch d.Action {
	case gate.Allow:
		return true
	case gate.Redirect:
		fmt.Fprintf(a.errOut, "%s requires a different session state; redirecting to %s\n", target, d.To)
		if d.To == gate.LoginPath {
			fmt.Fprintln(a.errOut, `Run "maileradmin login" to sign in.`)
		}
		return false
	default:
		fmt.Fprintln(a.errOut, "Session is still loading, try again.")
		return false
	}
}

// check shows the first form error, if any, and returns it.
func (a *App) check(errs forms.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	notify.Error(a.Notifier, errs.First())
	return errs.Err()
}

// Env is the environment screens run in.
func (a *App) Env() screens.Env {
	return screens.Env{Clients: a.Session, Notifier: a.Notifier, Log: a.Log}
}

// Plans returns the plans screen, creating it on first use.
func (a *App) Plans() *screens.Plans {
	if a.plans == nil {
		a.plans = screens.NewPlans(a.Env())
	}
	return a.plans
}

// Users returns the users screen, creating it on first use.
func (a *App) Users() *screens.Users {
	if a.users == nil {
		a.users = screens.NewUsers(a.Env())
	}
	return a.users
}

// Registrations returns the pending registrations screen, creating it on
// first use.
func (a *App) Registrations() *screens.Registrations {
	if a.registrations == nil {
		a.registrations = screens.NewRegistrations(a.Env())
	}
	return a.registrations
}

// Campaigns returns the campaigns screen, creating it on first use.
func (a *App) Campaigns() *screens.Campaigns {
	if a.campaigns == nil {
		a.campaigns = screens.NewCampaigns(a.Env())
	}
	return a.campaigns
}
