package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

// CampaignService defines the campaign operations required by
// CampaignHandler.
type CampaignService interface {
	Campaigns(ctx context.Context) ([]models.Campaign, error)
	Campaign(ctx context.Context, id string) (models.Campaign, error)
	CampaignStats(ctx context.Context, id string) (models.CampaignStats, error)
	Overview(ctx context.Context) (models.CampaignOverview, error)
	Transition(ctx context.Context, id string, action models.CampaignAction) (models.Campaign, error)
}

// CampaignHandler handles the /campaigns endpoints.
type CampaignHandler struct {
	Campaigns CampaignService
	Log       *zap.Logger
}

const campaignNotFound = "Campaign not found"

// List returns every campaign.
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Campaigns.Campaigns(r.Context())
	if err != nil {
		fail(w, h.Log, err, campaignNotFound)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get returns one campaign.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Campaigns.Campaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.Log, err, campaignNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Stats returns one campaign's counters.
func (h *CampaignHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Campaigns.CampaignStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.Log, err, campaignNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Overview aggregates every campaign.
func (h *CampaignHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.Campaigns.Overview(r.Context())
	if err != nil {
		fail(w, h.Log, err, campaignNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Transition returns a handler applying action to the campaign in the
// path.
func (h *CampaignHandler) Transition(action models.CampaignAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.Campaigns.Transition(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			fail(w, h.Log, err, campaignNotFound)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}
