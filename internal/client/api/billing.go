package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Billing returns the per-user billing snapshot.
func (c *Client) Billing(ctx context.Context) ([]models.BillingRow, error) {
	var out []models.BillingRow
	if err := c.do(ctx, http.MethodGet, "/billing", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Plans lists subscription plans.
func (c *Client) Plans(ctx context.Context) ([]models.Plan, error) {
	var out []models.Plan
	if err := c.do(ctx, http.MethodGet, "/billing/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePlan adds a plan. The returned plan is nil when the API replies
// without a body.
func (c *Client) CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	var out models.Plan
	if err := c.do(ctx, http.MethodPost, "/billing/plan", p, &out); err != nil {
		return nil, err
	}
	if out.Name == "" {
		return nil, nil
	}
	return &out, nil
}

// UpdatePlanLimit changes a plan's monthly email limit. The returned plan
// is nil when the API replies without one.
func (c *Client) UpdatePlanLimit(ctx context.Context, name string, limit int) (*models.Plan, error) {
	var out models.Plan
	err := c.do(ctx, http.MethodPatch, "/billing/plan/"+escape(name), models.PlanLimitUpdate{EmailLimit: limit}, &out)
	if err != nil {
		return nil, err
	}
	if out.Name == "" {
		return nil, nil
	}
	return &out, nil
}

// DeletePlan removes a plan.
func (c *Client) DeletePlan(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/billing/plan/"+escape(name), nil, nil)
}
