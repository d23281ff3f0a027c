package screens

import (
	"context"
	"fmt"
	"strconv"

	"github.com/atinyakov/MailerAdmin/internal/client/forms"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/client/reconcile"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Plans manages subscription plans. Limits are staged as raw text and
// coerced when saved.
type Plans struct {
	env   Env
	items *reconcile.Collection[string, models.Plan, string]
}

// PlanRow is a plan as displayed: Limit is the staged text when there is
// one, else the server value.
type PlanRow struct {
	models.Plan
	Limit  string
	Edited bool
	Busy   bool
	Err    string
}

// NewPlans returns an empty plans screen.
func NewPlans(env Env) *Plans {
	env = env.withDefaults()
	p := &Plans{env: env}
	p.items = reconcile.New[string, models.Plan, string](
		func(pl models.Plan) string { return pl.Name },
		func(ctx context.Context) ([]models.Plan, error) { return env.client().Plans(ctx) },
		env.options("plans", "Failed to load plans")...,
	)
	return p
}

// Load replaces the plans with the server's. Staged limits survive.
func (p *Plans) Load(ctx context.Context) error { return p.items.Load(ctx) }

// Plans returns the server rows.
func (p *Plans) Plans() []models.Plan { return p.items.Rows() }

// View returns the plans with their staged limits, busy flags and errors.
func (p *Plans) View() []PlanRow {
	rows := p.items.View()
	out := make([]PlanRow, 0, len(rows))
	for _, r := range rows {
		limit := strconv.Itoa(r.Item.EmailLimit)
		if r.HasStaged {
			limit = r.Staged
		}
		out = append(out, PlanRow{Plan: r.Item, Limit: limit, Edited: r.HasStaged, Busy: r.Busy, Err: r.Err})
	}
	return out
}

// StageLimit records the limit text typed for a plan.
func (p *Plans) StageLimit(name, text string) { p.items.Stage(name, text) }

// Busy reports whether a save or removal of name is in flight.
func (p *Plans) Busy(name string) bool { return p.items.Busy(name) }

// Reset drops all staged limits.
func (p *Plans) Reset() { p.items.Reset() }

// SaveLimit sends the staged limit for name, or the current one when
// nothing is staged.
func (p *Plans) SaveLimit(ctx context.Context, name string) error {
	return p.items.Commit(ctx, name, reconcile.Op[models.Plan, string]{
		Name:     "save-limit",
		Success:  fmt.Sprintf("Plan %q updated successfully!", name),
		Describe: fixedMessage("Failed to update plan"),
		Consumes: true,
		Do: func(ctx context.Context, staged string, has bool) (reconcile.Patch[models.Plan], error) {
			current, _ := p.items.Get(name)
			text := strconv.Itoa(current.EmailLimit)
			if has {
				text = staged
			}
			limit, err := forms.ParseEmailLimit(text)
			if err != nil {
				return reconcile.Patch[models.Plan]{}, err
			}
			updated, err := p.env.client().UpdatePlanLimit(ctx, name, limit)
			if err != nil {
				return reconcile.Patch[models.Plan]{}, err
			}
			if updated == nil {
				// re-read: a reload may have replaced the row meanwhile
				current, _ = p.items.Get(name)
				current.EmailLimit = limit
				updated = &current
			}
			return reconcile.Upsert(*updated), nil
		},
	})
}

// Add validates and creates a plan. Invalid input is reported without a
// request.
func (p *Plans) Add(ctx context.Context, form forms.Plan) error {
	form = form.Format()
	if errs := form.Validate(); errs != nil {
		return p.env.fail(errs.First())
	}
	plan, err := form.Model()
	if err != nil {
		notify.Error(p.env.Notifier, err.Error())
		return err
	}

	return p.items.Create(ctx, plan.Name, reconcile.Op[models.Plan, string]{
		Name:     "create-plan",
		Success:  fmt.Sprintf("Plan %q created successfully!", plan.Name),
		Describe: fixedMessage("Sorry, failed to add plan. Please check your input and try again."),
		Do: func(ctx context.Context, _ string, _ bool) (reconcile.Patch[models.Plan], error) {
			created, err := p.env.client().CreatePlan(ctx, plan)
			if err != nil {
				return reconcile.Patch[models.Plan]{}, err
			}
			if created == nil {
				created = &plan
			}
			return reconcile.Upsert(*created), nil
		},
	})
}

// Remove deletes a plan. Removing a plan that is no longer listed does
// nothing.
func (p *Plans) Remove(ctx context.Context, name string) error {
	return p.items.Commit(ctx, name, reconcile.Op[models.Plan, string]{
		Name:     "remove-plan",
		Success:  fmt.Sprintf("Plan %q removed successfully.", name),
		Describe: fixedMessage("Sorry, failed to remove plan."),
		Do: func(ctx context.Context, _ string, _ bool) (reconcile.Patch[models.Plan], error) {
			if err := p.env.client().DeletePlan(ctx, name); err != nil {
				return reconcile.Patch[models.Plan]{}, err
			}
			return reconcile.Remove[models.Plan](), nil
		},
	})
}
