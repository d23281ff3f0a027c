package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Campaigns lists campaigns.
func (c *Client) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Campaign fetches one campaign.
func (c *Client) Campaign(ctx context.Context, id string) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CampaignStats fetches delivery counters for one campaign.
func (c *Client) CampaignStats(ctx context.Context, id string) (*models.CampaignStats, error) {
	var out models.CampaignStats
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+escape(id)+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CampaignOverview aggregates all campaigns.
func (c *Client) CampaignOverview(ctx context.Context) (*models.CampaignOverview, error) {
	var out models.CampaignOverview
	if err := c.do(ctx, http.MethodGet, "/campaigns/stats/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CampaignTransition applies a lifecycle action (pause, resume, stop).
func (c *Client) CampaignTransition(ctx context.Context, id string, action models.CampaignAction) error {
	return c.do(ctx, http.MethodPatch, "/campaigns/"+escape(id)+"/"+string(action), nil, nil)
}
