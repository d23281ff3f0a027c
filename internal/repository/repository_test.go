package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

var seedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func plainHash(p string) ([]byte, error) { return []byte("h:" + p), nil }

func seeded(t *testing.T) *MemoryRepository {
	t.Helper()
	r := NewMemoryRepository()
	r.now = func() time.Time { return seedNow }
	require.NoError(t, Seed(context.Background(), r, plainHash, seedNow))
	return r
}

func TestSeed(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	admin, err := r.UserByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, []byte("h:admin123"), admin.PasswordHash)

	plans, err := r.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "basic", plans[0].Name)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestCreateUser_Conflict(t *testing.T) {
	r := seeded(t)
	err := r.CreateUser(context.Background(), UserRecord{User: models.User{ID: "x", Username: "new", Email: "alice@EXAMPLE.com"}})
	assert.ErrorIs(t, err, ErrConflict)

	err = r.CreateUser(context.Background(), UserRecord{User: models.User{ID: "y", Username: "Alice", Email: "other@example.com"}})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	bob, err := r.UserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)

	u, err := r.UpdateUser(ctx, bob.ID, func(rec *UserRecord) { rec.Role = models.RoleActive })
	require.NoError(t, err)
	assert.Equal(t, models.RoleActive, u.Role)

	require.NoError(t, r.DeleteUser(ctx, bob.ID))
	_, err = r.UserByID(ctx, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteUser(ctx, bob.ID), ErrNotFound)

	_, err = r.UpdateUser(ctx, "missing", func(*UserRecord) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPending(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	p, err := r.PendingByEmail(ctx, "erin@example.com")
	require.NoError(t, err)

	_, err = r.TakePending(ctx, "erin@example.com", "000000")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.TakePending(ctx, "erin@example.com", p.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, "erin", got.Username)

	_, err = r.PendingByEmail(ctx, "erin@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExpiredPending(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	removed, err := r.DeleteExpiredPending(ctx, seedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	for _, p := range pending {
		assert.False(t, p.Expired(seedNow), p.Email)
	}
}

func TestResetTokens(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	require.NoError(t, r.SaveResetToken(ctx, "good", "u1", seedNow.Add(time.Hour)))
	require.NoError(t, r.SaveResetToken(ctx, "old", "u1", seedNow.Add(-time.Second)))

	id, err := r.TakeResetToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = r.TakeResetToken(ctx, "good")
	assert.ErrorIs(t, err, ErrNotFound, "tokens are single use")

	_, err = r.TakeResetToken(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlans(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.CreatePlan(ctx, models.Plan{Name: "Basic"}), ErrConflict)

	p, err := r.UpdatePlanLimit(ctx, "premium", 12345)
	require.NoError(t, err)
	assert.Equal(t, 12345, p.EmailLimit)

	_, err = r.UpdatePlanLimit(ctx, "gold", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.DeletePlan(ctx, "basic"))
	plans, err := r.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "premium", plans[0].Name)
}

func TestBilling(t *testing.T) {
	r := seeded(t)
	rows, err := r.Billing(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4, "admin is excluded")

	byName := make(map[string]models.BillingRow)
	for _, row := range rows {
		byName[row.Name] = row
	}
	assert.Equal(t, "premium", byName["alice"].Plan)
	assert.Equal(t, 10000, byName["alice"].EmailLimit)
	assert.Equal(t, "Restricted", byName["bob"].Status)
	assert.Equal(t, "Suspended", byName["carol"].Status)
	assert.Equal(t, "Free", byName["dave"].Plan)
	assert.Zero(t, byName["dave"].Price)
}

func TestCampaignAggregates(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	o, err := r.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignOverview{Total: 5, Active: 2, Paused: 1, Completed: 1, TotalSent: 9000}, o)

	s, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9000, s.EmailsSent)
	assert.Equal(t, 2, s.ActiveCampaigns)
	assert.Equal(t, 523, s.EngagedLeads)

	b, err := r.Breakdown(ctx)
	require.NoError(t, err)
	assert.Len(t, b.ByCampaign, 5)
	require.Len(t, b.ByUser, 3)
	assert.Equal(t, "alice", b.ByUser[0].Name)
	assert.Equal(t, 5700, b.ByUser[0].Sent)
}

func TestSetCampaignStatus(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	list, err := r.ListCampaigns(ctx)
	require.NoError(t, err)

	c, err := r.SetCampaignStatus(ctx, list[0].ID, models.CampaignPaused)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignPaused, c.Status)

	_, err = r.SetCampaignStatus(ctx, "nope", models.CampaignPaused)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.CampaignStats(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStats(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	alice, err := r.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	week, err := r.UserStats(ctx, alice.ID, models.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, week.Campaigns)
	assert.Equal(t, 385, week.Replies)
	assert.Len(t, week.Activity, 7)

	day, err := r.UserStats(ctx, alice.ID, models.PeriodDay)
	require.NoError(t, err)
	assert.Len(t, day.Activity, 1)

	_, err = r.UserStats(ctx, "ghost", models.PeriodDay)
	assert.ErrorIs(t, err, ErrNotFound)
}
