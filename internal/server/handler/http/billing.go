package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// BillingService defines the plan and billing operations required by
// BillingHandler.
type BillingService interface {
	Plans(ctx context.Context) ([]models.Plan, error)
	CreatePlan(ctx context.Context, p models.Plan) (models.Plan, error)
	UpdatePlanLimit(ctx context.Context, name string, limit int) (models.Plan, error)
	DeletePlan(ctx context.Context, name string) error
	Billing(ctx context.Context) ([]models.BillingRow, error)
}

// BillingHandler handles the /billing endpoints.
type BillingHandler struct {
	Billing BillingService
	Log     *zap.Logger
}

const planNotFound = "Plan not found"

// Snapshot returns the per-user billing rows.
func (h *BillingHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Billing.Billing(r.Context())
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Plans lists subscription plans.
func (h *BillingHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Billing.Plans(r.Context())
	if err != nil {
		fail(w, h.Log, err, planNotFound)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// CreatePlan adds a plan.
func (h *BillingHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var p models.Plan
	if !decode(w, r, &p) {
		return
	}
	created, err := h.Billing.CreatePlan(r.Context(), p)
	if err != nil {
		fail(w, h.Log, err, planNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateLimit changes a plan's email limit.
func (h *BillingHandler) UpdateLimit(w http.ResponseWriter, r *http.Request) {
	var req models.PlanLimitUpdate
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Billing.UpdatePlanLimit(r.Context(), chi.URLParam(r, "name"), req.EmailLimit)
	if err != nil {
		fail(w, h.Log, err, planNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePlan removes a plan.
func (h *BillingHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.Billing.DeletePlan(r.Context(), chi.URLParam(r, "name")); err != nil {
		fail(w, h.Log, err, planNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Plan deleted"})
}
