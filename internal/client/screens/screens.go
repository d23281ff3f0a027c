// Package screens holds the console's views over the admin API. Each
// screen owns one reconciled collection and the actions that change it.
// Screens are discarded when the operator navigates away.
package screens

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/client/api"
	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/reconcile"
)

// ClientSource yields the API client for the current session.
// *session.Store implements it.
type ClientSource interface {
	Client() *api.Client
}

// StaticClient is a ClientSource that always returns the same client.
type StaticClient struct{ C *api.Client }

func (s StaticClient) Client() *api.Client { return s.C }

// Env is what every screen needs.
type Env struct {
	Clients  ClientSource
	Notifier notify.Notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func (e Env) withDefaults() Env {
	if e.Notifier == nil {
		e.Notifier = notify.Nop{}
	}
	if e.Log == nil {
		e.Log = zap.NewNop()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

func (e Env) client() *api.Client { return e.Clients.Client() }

func (e Env) options(name, loadFailure string, extra ...reconcile.Option) []reconcile.Option {
	opts := []reconcile.Option{
		reconcile.WithNotifier(e.Notifier),
		reconcile.WithLogger(e.Log.With(zap.String("screen", name))),
		reconcile.WithLoadFailure(loadFailure),
	}
	return append(opts, extra...)
}

// fail reports a failure that happened before any request was made.
func (e Env) fail(msg string) error {
	notify.Error(e.Notifier, msg)
	return apierr.Invalid(msg)
}

// fixedMessage describes a failure with msg unless it is a local
// validation error.
func fixedMessage(msg string) func(error) string {
	return func(err error) string {
		var local *apierr.LocalError
		if errors.As(err, &local) {
			return local.Msg
		}
		return msg
	}
}

// serverMessage prefers the server's own text, then fallback.
func serverMessage(fallback string) func(error) string {
	return func(err error) string {
		var local *apierr.LocalError
		if errors.As(err, &local) {
			return local.Msg
		}
		var httpErr *apierr.HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return httpErr.Message
		}
		return fallback
	}
}
