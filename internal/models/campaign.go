package models

import (
	"math"
	"time"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignDraft     CampaignStatus = "draft"
	CampaignStopped   CampaignStatus = "stopped"
)

// CampaignAction is a lifecycle transition accepted by the API.
type CampaignAction string

const (
	ActionPause  CampaignAction = "pause"
	ActionResume CampaignAction = "resume"
	ActionStop   CampaignAction = "stop"
)

// Campaign is an email campaign owned by a user.
type Campaign struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject,omitempty"`
	Status    CampaignStatus `json:"status"`
	UserID    string         `json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CampaignStats holds delivery counters for one campaign.
type CampaignStats struct {
	TotalSent    int `json:"totalSent"`
	TotalOpens   int `json:"totalOpens"`
	TotalReplies int `json:"totalReplies"`
	Bounces      int `json:"bounces"`
}

// EngagementRate is replies over sent as a rounded percentage.
func (s CampaignStats) EngagementRate() int {
	if s.TotalSent == 0 {
		return 0
	}
	return int(math.Round(float64(s.TotalReplies) / float64(s.TotalSent) * 100))
}

// CampaignOverview aggregates all campaigns.
type CampaignOverview struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Paused    int `json:"paused"`
	Completed int `json:"completed"`
	TotalSent int `json:"totalSent"`
}
