package screens

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/MailerAdmin/internal/client/reconcile"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Campaigns lists campaigns and drives their lifecycle.
type Campaigns struct {
	env   Env
	items *reconcile.Collection[string, models.Campaign, struct{}]
}

// CampaignDetail is one campaign with its delivery counters.
type CampaignDetail struct {
	Campaign models.Campaign
	Stats    models.CampaignStats
}

// NewCampaigns returns an empty campaigns screen.
func NewCampaigns(env Env) *Campaigns {
	env = env.withDefaults()
	c := &Campaigns{env: env}
	c.items = reconcile.New[string, models.Campaign, struct{}](
		func(cp models.Campaign) string { return cp.ID },
		func(ctx context.Context) ([]models.Campaign, error) { return env.client().Campaigns(ctx) },
		env.options("campaigns", "Failed to fetch campaigns")...,
	)
	return c
}

// Load replaces the list with the server's campaigns.
func (c *Campaigns) Load(ctx context.Context) error { return c.items.Load(ctx) }

// Campaigns returns the loaded campaigns.
func (c *Campaigns) Campaigns() []models.Campaign { return c.items.Rows() }

// Busy reports whether a transition of id is in flight.
func (c *Campaigns) Busy(id string) bool { return c.items.Busy(id) }

// Detail fetches a campaign and its stats concurrently.
func (c *Campaigns) Detail(ctx context.Context, id string) (*CampaignDetail, error) {
	var (
		campaign *models.Campaign
		stats    *models.CampaignStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		campaign, err = c.env.client().Campaign(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = c.env.client().CampaignStats(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		c.env.Log.Warn("failed to fetch campaign details", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("fetch campaign %s: %w", id, err)
	}
	return &CampaignDetail{Campaign: *campaign, Stats: *stats}, nil
}

// Overview returns the totals across all campaigns.
func (c *Campaigns) Overview(ctx context.Context) (*models.CampaignOverview, error) {
	return c.env.client().CampaignOverview(ctx)
}

// Pause stops sending for an active campaign.
func (c *Campaigns) Pause(ctx context.Context, id string) error {
	return c.transition(ctx, id, models.ActionPause, "Campaign paused")
}

// Resume restarts a paused campaign.
func (c *Campaigns) Resume(ctx context.Context, id string) error {
	return c.transition(ctx, id, models.ActionResume, "Campaign resumed")
}

// Stop ends a campaign for good.
func (c *Campaigns) Stop(ctx context.Context, id string) error {
	return c.transition(ctx, id, models.ActionStop, "Campaign stopped")
}

// transition applies action and then re-reads the campaign so the row
// shows the status the server settled on. It works whether or not the
// list has been loaded.
func (c *Campaigns) transition(ctx context.Context, id string, action models.CampaignAction, success string) error {
	return c.items.Create(ctx, id, reconcile.Op[models.Campaign, struct{}]{
		Name:    string(action),
		Success: success,
		Failure: fmt.Sprintf("Failed to %s campaign", action),
		Do: func(ctx context.Context, _ struct{}, _ bool) (reconcile.Patch[models.Campaign], error) {
			client := c.env.client()
			if err := client.CampaignTransition(ctx, id, action); err != nil {
				return reconcile.Patch[models.Campaign]{}, err
			}
			fresh, err := client.Campaign(ctx, id)
			if err != nil {
				return reconcile.Patch[models.Campaign]{}, err
			}
			return reconcile.Upsert(*fresh), nil
		},
	})
}
