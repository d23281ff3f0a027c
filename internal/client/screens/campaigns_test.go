package screens

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

func TestCampaigns_DetailFetchesBoth(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Campaign{ID: r.PathValue("id"), Name: "Launch", Status: models.CampaignActive})
	})
	f.handle("GET /campaigns/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.CampaignStats{TotalSent: 200, TotalReplies: 15})
	})

	d, err := NewCampaigns(f.env).Detail(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Launch", d.Campaign.Name)
	assert.Equal(t, 8, d.Stats.EngagementRate())
}

func TestCampaigns_DetailFailure(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Campaign{ID: "c1"})
	})
	f.handle("GET /campaigns/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Campaign not found"})
	})

	_, err := NewCampaigns(f.env).Detail(context.Background(), "c1")
	assert.Error(t, err)
}

func TestCampaigns_PauseRefetchesAndPatches(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	status := models.CampaignActive

	f.handle("GET /campaigns", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Campaign{{ID: "c1", Name: "Launch", Status: models.CampaignActive}, {ID: "c2", Status: models.CampaignDraft}})
	})
	f.handle("PATCH /campaigns/{id}/pause", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		status = models.CampaignPaused
		mu.Unlock()
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "paused"})
	})
	f.handle("GET /campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, models.Campaign{ID: "c1", Name: "Launch", Status: status})
	})

	c := NewCampaigns(f.env)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Pause(context.Background(), "c1"))

	list := c.Campaigns()
	require.Len(t, list, 2)
	assert.Equal(t, models.CampaignPaused, list[0].Status)
	assert.Equal(t, []string{"Campaign paused"}, f.rec.Messages(notify.LevelSuccess))
	assert.Equal(t, 1, f.calls.count("GET /campaigns/{id}"))
}

func TestCampaigns_StopFailure(t *testing.T) {
	f := newFixture(t)
	f.handle("PATCH /campaigns/{id}/stop", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTeapot, map[string]string{})
	})

	err := NewCampaigns(f.env).Stop(context.Background(), "c9")
	assert.EqualError(t, err, "Failed to stop campaign")
}

func TestDashboard_Defaults(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"emailsSent": 42})
	})
	f.handle("GET /stats/weekly-engagement", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, nil)
	})
	f.handle("GET /stats/weekly-engagement-breakdown", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	data, err := NewDashboard(f.env).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{EmailsSent: 42, SystemHealth: "Healthy"}, data.Stats)
	assert.NotNil(t, data.Weekly)
	assert.NotNil(t, data.Breakdown.ByUser)
}

func TestDashboard_Failure(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, nil)
	})
	f.handle("GET /stats/weekly-engagement", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.EngagementPoint{})
	})
	f.handle("GET /stats/weekly-engagement-breakdown", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.EngagementBreakdown{})
	})

	_, err := NewDashboard(f.env).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to fetch dashboard data"}, f.rec.Messages(notify.LevelError))
}

func TestLoadUserDetail(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: r.PathValue("id"), Username: "alice"})
	})
	f.handle("GET /stats/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "month", r.URL.Query().Get("period"))
		writeJSON(w, http.StatusOK, models.UserStats{EmailsSent: 7})
	})

	d, err := LoadUserDetail(context.Background(), f.env, "u1", models.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, "alice", d.User.Username)
	assert.Equal(t, models.PeriodMonth, d.Stats.Period)
	assert.Equal(t, 7, d.Stats.EmailsSent)

	_, err = LoadUserDetail(context.Background(), f.env, "u1", "year")
	assert.EqualError(t, err, `Unknown period "year"`)
}

func TestLoadBilling(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /billing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.BillingRow{{Name: "alice", Plan: "basic", EmailLimit: 1000, Price: 999}})
	})

	rows, err := LoadBilling(context.Background(), f.env)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "$9.99", models.FormatCents(rows[0].Price))
}
