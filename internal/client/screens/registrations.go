package screens

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/reconcile"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// RefreshNotice is sent after every automatic refresh of the pending
// registrations list.
const RefreshNotice = "List refreshed"

// csvTimeLayout matches the short en-US date the list shows.
const csvTimeLayout = "Jan 2, 2006, 03:04 PM"

var csvHeader = []string{"Username", "Email", "Registration Date", "Verification Code", "Code Expires", "Status"}

// Registrations lists signups waiting for approval.
type Registrations struct {
	env   Env
	items *reconcile.Collection[string, models.PendingRegistration, struct{}]
}

// NewRegistrations returns an empty pending registrations screen.
func NewRegistrations(env Env) *Registrations {
	env = env.withDefaults()
	r := &Registrations{env: env}
	r.items = reconcile.New[string, models.PendingRegistration, struct{}](
		func(p models.PendingRegistration) string { return p.ID },
		func(ctx context.Context) ([]models.PendingRegistration, error) {
			return env.client().PendingRegistrations(ctx)
		},
		env.options("registrations", "Failed to load pending registrations",
			reconcile.WithQuietLoad(apierr.IsUnauthenticated),
			reconcile.WithRefreshNotice(RefreshNotice),
		)...,
	)
	return r
}

// Load replaces the list with the server's pending registrations.
func (r *Registrations) Load(ctx context.Context) error { return r.items.Load(ctx) }

// Pending returns the loaded registrations.
func (r *Registrations) Pending() []models.PendingRegistration { return r.items.Rows() }

// Busy reports whether an approval of id is in flight.
func (r *Registrations) Busy(id string) bool { return r.items.Busy(id) }

// StartAutoRefresh reloads the list every interval until ctx is done.
func (r *Registrations) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	r.items.StartAutoRefresh(ctx, interval)
}

// Approve verifies a pending signup with its own code and drops it from
// the list.
func (r *Registrations) Approve(ctx context.Context, id string) error {
	reg, ok := r.items.Get(id)
	if !ok {
		return nil
	}
	return r.items.Commit(ctx, id, reconcile.Op[models.PendingRegistration, struct{}]{
		Name:     "approve",
		Success:  fmt.Sprintf("%s approved successfully!", reg.Username),
		Describe: serverMessage("Failed to approve registration"),
		Do: func(ctx context.Context, _ struct{}, _ bool) (reconcile.Patch[models.PendingRegistration], error) {
			if err := r.env.client().VerifyRegistration(ctx, reg.Email, reg.VerificationCode); err != nil {
				return reconcile.Patch[models.PendingRegistration]{}, err
			}
			return reconcile.Remove[models.PendingRegistration](), nil
		},
	})
}

// Filter narrows the list by a case-insensitive username or email search
// and optionally hides expired codes.
func (r *Registrations) Filter(search string, hideExpired bool) []models.PendingRegistration {
	q := strings.ToLower(search)
	now := r.env.Now()
	var out []models.PendingRegistration
	for _, p := range r.items.Rows() {
		if q != "" && !strings.Contains(strings.ToLower(p.Username), q) && !strings.Contains(strings.ToLower(p.Email), q) {
			continue
		}
		if hideExpired && p.Expired(now) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ExpiredCount counts loaded registrations whose code has expired.
func (r *Registrations) ExpiredCount() int {
	now := r.env.Now()
	n := 0
	for _, p := range r.items.Rows() {
		if p.Expired(now) {
			n++
		}
	}
	return n
}

// ExportFilename is the suggested name for an export made at t.
func ExportFilename(t time.Time) string {
	return "pending-registrations-" + t.Format("2006-01-02") + ".csv"
}

// ExportCSV writes rows as CSV. An empty selection is an error.
func (r *Registrations) ExportCSV(w io.Writer, rows []models.PendingRegistration) error {
	if len(rows) == 0 {
		return r.env.fail("No data to export")
	}

	now := r.env.Now()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range rows {
		status := "Pending"
		if p.Expired(now) {
			status = "Expired"
		}
		rec := []string{
			p.Username,
			p.Email,
			p.CreatedAt.Local().Format(csvTimeLayout),
			p.VerificationCode,
			p.CodeExpires.Local().Format(csvTimeLayout),
			status,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	notify.Success(r.env.Notifier, "Exported to CSV")
	return nil
}
