package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

const billingPeriod = 30 * 24 * time.Hour

func (r *MemoryRepository) planIndexLocked(name string) int {
	for i, p := range r.plans {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// ListPlans returns the plans in creation order.
func (r *MemoryRepository) ListPlans(_ context.Context) ([]models.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Plan, len(r.plans))
	copy(out, r.plans)
	return out, nil
}

// CreatePlan stores p. Plan names are unique.
func (r *MemoryRepository) CreatePlan(_ context.Context, p models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.planIndexLocked(p.Name) >= 0 {
		return fmt.Errorf("plan %s: %w", p.Name, ErrConflict)
	}
	r.plans = append(r.plans, p)
	return nil
}

// UpdatePlanLimit sets the monthly email limit of the named plan.
func (r *MemoryRepository) UpdatePlanLimit(_ context.Context, name string, limit int) (models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.planIndexLocked(name)
	if i < 0 {
		return models.Plan{}, fmt.Errorf("plan %s: %w", name, ErrNotFound)
	}
	r.plans[i].EmailLimit = limit
	return r.plans[i], nil
}

// DeletePlan removes the named plan.
func (r *MemoryRepository) DeletePlan(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.planIndexLocked(name)
	if i < 0 {
		return fmt.Errorf("plan %s: %w", name, ErrNotFound)
	}
	r.plans = append(r.plans[:i:i], r.plans[i+1:]...)
	return nil
}

// Billing builds one billing row per non-admin account. Users on a plan
// that no longer exists show zero limit and price.
func (r *MemoryRepository) Billing(_ context.Context) ([]models.BillingRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.BillingRow, 0, len(r.users))
	for _, u := range r.users {
		if u.Role == models.RoleAdmin {
			continue
		}
		row := models.BillingRow{
			Name:   u.Username,
			Email:  u.Email,
			Plan:   u.PlanName(),
			Role:   u.Role,
			Status: string(u.Status()),
			Expiry: u.CreatedAt.Add(billingPeriod).Format(time.DateOnly),
		}
		if i := r.planIndexLocked(row.Plan); i >= 0 {
			row.EmailLimit = r.plans[i].EmailLimit
			row.Price = r.plans[i].Price
		}
		out = append(out, row)
	}
	return out, nil
}
