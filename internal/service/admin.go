package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/models"
	"github.com/atinyakov/MailerAdmin/internal/repository"
)

// AdminRepository defines the persistence operations behind the admin
// endpoints.
type AdminRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UserByID(ctx context.Context, id string) (repository.UserRecord, error)
	UpdateUser(ctx context.Context, id string, mutate func(*repository.UserRecord)) (models.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListPlans(ctx context.Context) ([]models.Plan, error)
	CreatePlan(ctx context.Context, p models.Plan) error
	UpdatePlanLimit(ctx context.Context, name string, limit int) (models.Plan, error)
	DeletePlan(ctx context.Context, name string) error
	Billing(ctx context.Context) ([]models.BillingRow, error)

	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	Campaign(ctx context.Context, id string) (models.Campaign, error)
	CampaignStats(ctx context.Context, id string) (models.CampaignStats, error)
	SetCampaignStatus(ctx context.Context, id string, status models.CampaignStatus) (models.Campaign, error)
	Overview(ctx context.Context) (models.CampaignOverview, error)

	Stats(ctx context.Context) (models.Stats, error)
	WeeklyEngagement(ctx context.Context) ([]models.EngagementPoint, error)
	Breakdown(ctx context.Context) (models.EngagementBreakdown, error)
	UserStats(ctx context.Context, userID string, period models.Period) (models.UserStats, error)
}

// AdminService implements user, billing, campaign and stats management.
type AdminService struct {
	repo AdminRepository
	log  *zap.Logger
}

// NewAdminService constructs an AdminService. A nil logger disables
// logging.
func NewAdminService(repo AdminRepository, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{repo: repo, log: log}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Users lists every account.
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

// User returns one account.
func (s *AdminService) User(ctx context.Context, id string) (models.User, error) {
	rec, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return rec.User, nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.Info("user deleted", zap.String("id", id))
	return nil
}

var knownRoles = map[models.Role]bool{
	models.RoleAdmin:      true,
	models.RoleActive:     true,
	models.RoleRestricted: true,
	models.RoleUser:       true,
}

// SetRole changes an account's role.
func (s *AdminService) SetRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	if !knownRoles[role] {
		return models.User{}, invalid(fmt.Sprintf("Unknown role %q", role))
	}
	return s.update(ctx, id, func(rec *repository.UserRecord) { rec.Role = role })
}

// Restrict moves an account to the restricted role.
func (s *AdminService) Restrict(ctx context.Context, id string) (models.User, error) {
	return s.update(ctx, id, func(rec *repository.UserRecord) { rec.Role = models.RoleRestricted })
}

// Suspend marks an account unverified.
func (s *AdminService) Suspend(ctx context.Context, id string) (models.User, error) {
	return s.update(ctx, id, func(rec *repository.UserRecord) { rec.IsVerified = false })
}

// Activate verifies an account and lifts a restriction.
func (s *AdminService) Activate(ctx context.Context, id string) (models.User, error) {
	return s.update(ctx, id, func(rec *repository.UserRecord) {
		rec.IsVerified = true
		if rec.Role == models.RoleRestricted {
			rec.Role = models.RoleActive
		}
	})
}

func (s *AdminService) update(ctx context.Context, id string, mutate func(*repository.UserRecord)) (models.User, error) {
	u, err := s.repo.UpdateUser(ctx, id, mutate)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// Plans lists subscription plans.
func (s *AdminService) Plans(ctx context.Context) ([]models.Plan, error) {
	return s.repo.ListPlans(ctx)
}

// CreatePlan validates and stores p.
func (s *AdminService) CreatePlan(ctx context.Context, p models.Plan) (models.Plan, error) {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return models.Plan{}, invalid("Plan name is required")
	case p.EmailLimit < 0:
		return models.Plan{}, invalid("Email limit must be a positive number.")
	case p.Price < 0:
		return models.Plan{}, invalid("Price must be a positive number.")
	case p.StripePriceID != "" && !strings.HasPrefix(p.StripePriceID, "price_"):
		return models.Plan{}, invalid(`Stripe Price ID must start with "price_".`)
	}
	err := s.repo.CreatePlan(ctx, p)
	if errors.Is(err, repository.ErrConflict) {
		return models.Plan{}, ErrPlanExists
	}
	if err != nil {
		return models.Plan{}, err
	}
	return p, nil
}

// UpdatePlanLimit sets a plan's monthly email limit.
func (s *AdminService) UpdatePlanLimit(ctx context.Context, name string, limit int) (models.Plan, error) {
	if limit < 0 {
		return models.Plan{}, invalid("Email limit must be a positive number.")
	}
	p, err := s.repo.UpdatePlanLimit(ctx, name, limit)
	if err != nil {
		return models.Plan{}, notFound(err)
	}
	return p, nil
}

// DeletePlan removes a plan.
func (s *AdminService) DeletePlan(ctx context.Context, name string) error {
	return notFound(s.repo.DeletePlan(ctx, name))
}

// Billing returns the per-user billing snapshot.
func (s *AdminService) Billing(ctx context.Context) ([]models.BillingRow, error) {
	return s.repo.Billing(ctx)
}

// Campaigns lists campaigns.
func (s *AdminService) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.repo.ListCampaigns(ctx)
}

// Campaign returns one campaign.
func (s *AdminService) Campaign(ctx context.Context, id string) (models.Campaign, error) {
	c, err := s.repo.Campaign(ctx, id)
	return c, notFound(err)
}

// CampaignStats returns one campaign's counters.
func (s *AdminService) CampaignStats(ctx context.Context, id string) (models.CampaignStats, error) {
	st, err := s.repo.CampaignStats(ctx, id)
	return st, notFound(err)
}

// Overview aggregates every campaign.
func (s *AdminService) Overview(ctx context.Context) (models.CampaignOverview, error) {
	return s.repo.Overview(ctx)
}

// transitions lists, per action, the states it may start from and the
// state it leads to.
var transitions = map[models.CampaignAction]struct {
	from []models.CampaignStatus
	to   models.CampaignStatus
}{
	models.ActionPause:  {[]models.CampaignStatus{models.CampaignActive}, models.CampaignPaused},
	models.ActionResume: {[]models.CampaignStatus{models.CampaignPaused}, models.CampaignActive},
	models.ActionStop:   {[]models.CampaignStatus{models.CampaignActive, models.CampaignPaused}, models.CampaignStopped},
}

// Transition applies a lifecycle action to a campaign.
func (s *AdminService) Transition(ctx context.Context, id string, action models.CampaignAction) (models.Campaign, error) {
	t, ok := transitions[action]
	if !ok {
		return models.Campaign{}, invalid(fmt.Sprintf("Unknown action %q", action))
	}
	c, err := s.repo.Campaign(ctx, id)
	if err != nil {
		return models.Campaign{}, notFound(err)
	}
	allowed := false
	for _, from := range t.from {
		allowed = allowed || c.Status == from
	}
	if !allowed {
		return models.Campaign{}, invalid(fmt.Sprintf("Cannot %s a %s campaign", action, c.Status))
	}
	c, err = s.repo.SetCampaignStatus(ctx, id, t.to)
	if err != nil {
		return models.Campaign{}, notFound(err)
	}
	s.log.Info("campaign transition", zap.String("id", id), zap.String("action", string(action)))
	return c, nil
}

// Stats returns the dashboard headline.
func (s *AdminService) Stats(ctx context.Context) (models.Stats, error) {
	return s.repo.Stats(ctx)
}

// WeeklyEngagement returns the engagement chart points.
func (s *AdminService) WeeklyEngagement(ctx context.Context) ([]models.EngagementPoint, error) {
	return s.repo.WeeklyEngagement(ctx)
}

// Breakdown splits engagement by campaign and by user.
func (s *AdminService) Breakdown(ctx context.Context) (models.EngagementBreakdown, error) {
	return s.repo.Breakdown(ctx)
}

// UserStats returns one user's activity over period.
func (s *AdminService) UserStats(ctx context.Context, userID string, period models.Period) (models.UserStats, error) {
	if !period.Valid() {
		return models.UserStats{}, invalid(fmt.Sprintf("Unknown period %q", period))
	}
	st, err := s.repo.UserStats(ctx, userID, period)
	return st, notFound(err)
}
