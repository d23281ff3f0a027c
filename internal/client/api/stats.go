package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Stats returns the dashboard headline numbers.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var out models.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeeklyEngagement returns the daily points of the engagement chart.
func (c *Client) WeeklyEngagement(ctx context.Context) ([]models.EngagementPoint, error) {
	var out []models.EngagementPoint
	if err := c.do(ctx, http.MethodGet, "/stats/weekly-engagement", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WeeklyEngagementBreakdown returns engagement split by campaign and user.
func (c *Client) WeeklyEngagementBreakdown(ctx context.Context) (*models.EngagementBreakdown, error) {
	var out models.EngagementBreakdown
	if err := c.do(ctx, http.MethodGet, "/stats/weekly-engagement-breakdown", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserStats returns one user's activity for period.
func (c *Client) UserStats(ctx context.Context, userID string, period models.Period) (*models.UserStats, error) {
	var out models.UserStats
	q := url.Values{"period": {string(period)}}
	if err := c.do(ctx, http.MethodGet, "/stats/user/"+escape(userID)+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
