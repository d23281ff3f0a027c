package screens

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

const defaultSystemHealth = "Healthy"

// DashboardData is everything the dashboard shows.
type DashboardData struct {
	Stats     models.Stats
	Weekly    []models.EngagementPoint
	Breakdown models.EngagementBreakdown
}

// Dashboard reads the headline metrics.
type Dashboard struct {
	env Env
}

// NewDashboard returns a dashboard reading through env.
func NewDashboard(env Env) *Dashboard { return &Dashboard{env: env.withDefaults()} }

// Load fetches stats, the weekly chart and its breakdown.
func (d *Dashboard) Load(ctx context.Context) (*DashboardData, error) {
	client := d.env.client()
	var data DashboardData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := client.Stats(gctx)
		if err != nil {
			return err
		}
		data.Stats = *stats
		return nil
	})
	g.Go(func() error {
		weekly, err := client.WeeklyEngagement(gctx)
		if err != nil {
			return err
		}
		data.Weekly = weekly
		return nil
	})
	g.Go(func() error {
		b, err := client.WeeklyEngagementBreakdown(gctx)
		if err != nil {
			return err
		}
		data.Breakdown = *b
		return nil
	})
	if err := g.Wait(); err != nil {
		notify.Error(d.env.Notifier, "Failed to fetch dashboard data")
		return nil, fmt.Errorf("fetch dashboard: %w", err)
	}

	if data.Stats.SystemHealth == "" {
		data.Stats.SystemHealth = defaultSystemHealth
	}
	if data.Weekly == nil {
		data.Weekly = []models.EngagementPoint{}
	}
	if data.Breakdown.ByCampaign == nil {
		data.Breakdown.ByCampaign = []models.EngagementRow{}
	}
	if data.Breakdown.ByUser == nil {
		data.Breakdown.ByUser = []models.EngagementRow{}
	}
	return &data, nil
}

// UserDetail is one account with its activity for a period.
type UserDetail struct {
	User  models.User
	Stats models.UserStats
}

// LoadUserDetail fetches a user and their stats for period.
func LoadUserDetail(ctx context.Context, env Env, id string, period models.Period) (*UserDetail, error) {
	env = env.withDefaults()
	if !period.Valid() {
		return nil, env.fail(fmt.Sprintf("Unknown period %q", period))
	}
	client := env.client()

	var detail UserDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := client.User(gctx, id)
		if err != nil {
			return err
		}
		detail.User = *u
		return nil
	})
	g.Go(func() error {
		s, err := client.UserStats(gctx, id, period)
		if err != nil {
			return err
		}
		detail.Stats = *s
		return nil
	})
	if err := g.Wait(); err != nil {
		notify.Error(env.Notifier, "Failed to fetch user details")
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	if detail.Stats.Period == "" {
		detail.Stats.Period = period
	}
	return &detail, nil
}

// LoadBilling fetches the per-user billing snapshot.
func LoadBilling(ctx context.Context, env Env) ([]models.BillingRow, error) {
	env = env.withDefaults()
	rows, err := env.client().Billing(ctx)
	if err != nil {
		notify.Error(env.Notifier, "Failed to fetch billing data")
		return nil, fmt.Errorf("fetch billing: %w", err)
	}
	if rows == nil {
		rows = []models.BillingRow{}
	}
	return rows, nil
}
