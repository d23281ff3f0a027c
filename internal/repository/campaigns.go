package repository

import (
	"context"
	"fmt"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

func (r *MemoryRepository) campaignIndexLocked(id string) int {
	for i, c := range r.campaigns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ListCampaigns returns every campaign.
func (r *MemoryRepository) ListCampaigns(_ context.Context) ([]models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Campaign, len(r.campaigns))
	copy(out, r.campaigns)
	return out, nil
}

// Campaign returns one campaign.
func (r *MemoryRepository) Campaign(_ context.Context, id string) (models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.campaignIndexLocked(id); i >= 0 {
		return r.campaigns[i], nil
	}
	return models.Campaign{}, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
}

// CampaignStats returns the counters of one campaign.
func (r *MemoryRepository) CampaignStats(_ context.Context, id string) (models.CampaignStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.campaignIndexLocked(id) < 0 {
		return models.CampaignStats{}, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return r.stats[id], nil
}

// SetCampaignStatus moves a campaign to status.
func (r *MemoryRepository) SetCampaignStatus(_ context.Context, id string, status models.CampaignStatus) (models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.campaignIndexLocked(id)
	if i < 0 {
		return models.Campaign{}, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	r.campaigns[i].Status = status
	return r.campaigns[i], nil
}

// AddCampaign stores a campaign with its counters.
func (r *MemoryRepository) AddCampaign(_ context.Context, c models.Campaign, stats models.CampaignStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.campaignIndexLocked(c.ID) >= 0 {
		return fmt.Errorf("campaign %s: %w", c.ID, ErrConflict)
	}
	r.campaigns = append(r.campaigns, c)
	r.stats[c.ID] = stats
	return nil
}

// Overview aggregates every campaign.
func (r *MemoryRepository) Overview(_ context.Context) (models.CampaignOverview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var o models.CampaignOverview
	for _, c := range r.campaigns {
		o.Total++
		switch c.Status {
		case models.CampaignActive:
			o.Active++
		case models.CampaignPaused:
			o.Paused++
		case models.CampaignCompleted:
			o.Completed++
		}
		o.TotalSent += r.stats[c.ID].TotalSent
	}
	return o, nil
}

// Stats returns the dashboard headline.
func (r *MemoryRepository) Stats(_ context.Context) (models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := models.Stats{SystemHealth: "Healthy"}
	for _, c := range r.campaigns {
		st := r.stats[c.ID]
		s.EmailsSent += st.TotalSent
		s.EngagedLeads += st.TotalReplies
		if c.Status == models.CampaignActive {
			s.ActiveCampaigns++
		}
	}
	return s, nil
}

// WeeklyEngagement returns the chart points, oldest day first.
func (r *MemoryRepository) WeeklyEngagement(_ context.Context) ([]models.EngagementPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.EngagementPoint, len(r.weekly))
	copy(out, r.weekly)
	return out, nil
}

// SetWeeklyEngagement replaces the chart points.
func (r *MemoryRepository) SetWeeklyEngagement(points []models.EngagementPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weekly = append([]models.EngagementPoint(nil), points...)
}

// Breakdown splits campaign counters by campaign and by owner.
func (r *MemoryRepository) Breakdown(_ context.Context) (models.EngagementBreakdown, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b := models.EngagementBreakdown{
		ByCampaign: []models.EngagementRow{},
		ByUser:     []models.EngagementRow{},
	}
	byUser := make(map[string]int)
	for _, c := range r.campaigns {
		st := r.stats[c.ID]
		b.ByCampaign = append(b.ByCampaign, models.EngagementRow{
			ID: c.ID, Name: c.Name, Sent: st.TotalSent, Replies: st.TotalReplies,
		})
		i, ok := byUser[c.UserID]
		if !ok {
			name := c.UserID
			if u := r.userIndexLocked(c.UserID); u >= 0 {
				name = r.users[u].Username
			}
			i = len(b.ByUser)
			byUser[c.UserID] = i
			b.ByUser = append(b.ByUser, models.EngagementRow{ID: c.UserID, Name: name})
		}
		b.ByUser[i].Sent += st.TotalSent
		b.ByUser[i].Replies += st.TotalReplies
	}
	return b, nil
}

var periodDays = map[models.Period]int{
	models.PeriodDay:   1,
	models.PeriodWeek:  7,
	models.PeriodMonth: 30,
}

// UserStats summarises one user's campaigns over period. Campaign totals
// are lifetime counters; the activity series is the tail of the weekly
// chart covering the period.
func (r *MemoryRepository) UserStats(_ context.Context, userID string, period models.Period) (models.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.userIndexLocked(userID) < 0 {
		return models.UserStats{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	s := models.UserStats{Period: period, Activity: []models.EngagementPoint{}}
	for _, c := range r.campaigns {
		if c.UserID != userID {
			continue
		}
		st := r.stats[c.ID]
		s.Campaigns++
		s.EmailsSent += st.TotalSent
		s.Replies += st.TotalReplies
	}
	n := min(periodDays[period], len(r.weekly))
	s.Activity = append(s.Activity, r.weekly[len(r.weekly)-n:]...)
	return s, nil
}
