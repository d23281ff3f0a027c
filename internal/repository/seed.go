package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// Seed accounts. Every seeded account shares SeedPassword except the
// admin.
const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin123"
	SeedPassword      = "password123"
)

// Seed fills r with a demo data set: an admin, a handful of users in each
// status, the three standard plans, campaigns with counters, a week of
// engagement points and pending registrations (one already expired).
// hash turns a plain password into its stored form.
func Seed(ctx context.Context, r *MemoryRepository, hash func(string) ([]byte, error), now time.Time) error {
	plans := []models.Plan{
		{Name: "basic", EmailLimit: 1000, Price: 900, StripePriceID: "price_basic", Description: "For getting started"},
		{Name: "premium", EmailLimit: 10000, Price: 2900, StripePriceID: "price_premium", Description: "For growing teams"},
		{Name: "premiumplus", EmailLimit: 50000, Price: 7900, StripePriceID: "price_premiumplus", Description: "For high volume senders"},
	}
	for _, p := range plans {
		if err := r.CreatePlan(ctx, p); err != nil {
			return fmt.Errorf("seed plan: %w", err)
		}
	}

	users := []struct {
		models.User
		password string
	}{
		{models.User{Username: "admin", Email: SeedAdminEmail, Role: models.RoleAdmin, IsVerified: true, Plan: 3}, SeedAdminPassword},
		{models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleActive, IsVerified: true, Plan: 2}, SeedPassword},
		{models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleRestricted, IsVerified: true, Plan: 1}, SeedPassword},
		{models.User{Username: "carol", Email: "carol@example.com", Role: models.RoleActive, IsVerified: false, Plan: 1}, SeedPassword},
		{models.User{Username: "dave", Email: "dave@example.com", Role: models.RoleUser, IsVerified: true, Plan: 0}, SeedPassword},
	}
	ids := make(map[string]string, len(users))
	for i, u := range users {
		h, err := hash(u.password)
		if err != nil {
			return fmt.Errorf("seed hash: %w", err)
		}
		u.ID = uuid.NewString()
		u.CreatedAt = now.Add(-time.Duration(len(users)-i) * 24 * time.Hour)
		if err := r.CreateUser(ctx, UserRecord{User: u.User, PasswordHash: h}); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		ids[u.Username] = u.ID
	}

	campaigns := []struct {
		owner  string
		name   string
		status models.CampaignStatus
		stats  models.CampaignStats
	}{
		{"alice", "Spring Launch", models.CampaignActive, models.CampaignStats{TotalSent: 4200, TotalOpens: 1900, TotalReplies: 310, Bounces: 42}},
		{"alice", "Webinar Invite", models.CampaignPaused, models.CampaignStats{TotalSent: 1500, TotalOpens: 640, TotalReplies: 75, Bounces: 12}},
		{"bob", "Cold Outreach", models.CampaignActive, models.CampaignStats{TotalSent: 800, TotalOpens: 210, TotalReplies: 18, Bounces: 30}},
		{"dave", "Newsletter #1", models.CampaignCompleted, models.CampaignStats{TotalSent: 2500, TotalOpens: 1300, TotalReplies: 120, Bounces: 9}},
		{"dave", "Product Update", models.CampaignDraft, models.CampaignStats{}},
	}
	for i, c := range campaigns {
		camp := models.Campaign{
			ID:        uuid.NewString(),
			Name:      c.name,
			Subject:   c.name,
			Status:    c.status,
			UserID:    ids[c.owner],
			CreatedAt: now.Add(-time.Duration(len(campaigns)-i) * time.Hour),
		}
		if err := r.AddCampaign(ctx, camp, c.stats); err != nil {
			return fmt.Errorf("seed campaign: %w", err)
		}
	}

	points := make([]models.EngagementPoint, 0, 7)
	for d := 6; d >= 0; d-- {
		day := now.AddDate(0, 0, -d)
		points = append(points, models.EngagementPoint{
			Day:     day.Format("Mon"),
			Sent:    300 + 40*d,
			Opens:   120 + 15*d,
			Replies: 10 + 2*d,
		})
	}
	r.SetWeeklyEngagement(points)

	pending := []models.PendingRegistration{
		{Username: "erin", Email: "erin@example.com", VerificationCode: "482913", CodeExpires: now.Add(20 * time.Minute)},
		{Username: "frank", Email: "frank@example.com", VerificationCode: "105577", CodeExpires: now.Add(45 * time.Minute)},
		{Username: "grace", Email: "grace@example.com", VerificationCode: "730021", CodeExpires: now.Add(-10 * time.Minute)},
	}
	pendingHash, err := hash(SeedPassword)
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}
	for _, p := range pending {
		p.ID = uuid.NewString()
		p.CreatedAt = p.CodeExpires.Add(-time.Hour)
		if err := r.AddPending(ctx, PendingRecord{PendingRegistration: p, PasswordHash: pendingHash}); err != nil {
			return fmt.Errorf("seed pending: %w", err)
		}
	}
	return nil
}
